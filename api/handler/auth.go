package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/momentumhq/backend/api/transport"
	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/pkg/httpcontext"
	authUC "github.com/momentumhq/backend/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Sync the authenticated subject into a local account
// @Tags auth
// @Router /api/v1/auth/sync [post]
func (h *AuthHandler) Sync(ctx *fasthttp.RequestCtx) {
	subject := string(ctx.Request.Header.Peek("X-Auth-Subject"))
	if subject == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing auth subject", nil))
		return
	}

	var req transport.SyncUserRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
			return
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.SyncUser(stdCtx, subject, req.Username, req.Email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}
