package middleware

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// IdentityResolver maps a token subject onto an internal user ID. The empty
// ID means the subject is unknown.
type IdentityResolver interface {
	Resolve(ctx context.Context, subject string) (string, error)
}

// JWTAuth validates the bearer token, resolves its subject to a local user
// and stamps X-User-ID / X-Auth-Subject for downstream handlers. A subject
// without a local user still passes through with only the subject header set,
// so the sync endpoint can create the account.
func JWTAuth(secret string, resolver IdentityResolver, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}
			subject, _ := claims["sub"].(string)
			if subject == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.Request.Header.Set("X-Auth-Subject", subject)
			ctx.Request.Header.Del("X-User-ID")

			if resolver != nil {
				userID, err := resolver.Resolve(ctx, subject)
				if err != nil {
					logger.Error("identity resolution failed",
						zap.String("subject", subject), zap.Error(err))
					ctx.SetStatusCode(fasthttp.StatusInternalServerError)
					return
				}
				if userID != "" {
					ctx.Request.Header.Set("X-User-ID", userID)
				}
			}

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
