package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/momentumhq/backend/domain"
	"github.com/momentumhq/backend/repository"
)

type identityCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewIdentityCache creates a Redis-backed identity cache. Entries expire so a
// deleted user eventually stops resolving.
func NewIdentityCache(client *redislib.Client, ttl time.Duration) repository.IdentityCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &identityCache{
		client: client,
		prefix: "identity:",
		ttl:    ttl,
	}
}

func (c *identityCache) Get(ctx context.Context, subject string) (*domain.Identity, error) {
	result, err := c.client.Get(ctx, c.key(subject)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, domain.ErrIdentityNotCached
		}
		return nil, err
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(result), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *identityCache) Save(ctx context.Context, identity *domain.Identity) error {
	if identity == nil || identity.Subject == "" || identity.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if identity.ResolvedAt.IsZero() {
		identity.ResolvedAt = time.Now()
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(identity.Subject), payload, c.ttl).Err()
}

func (c *identityCache) Delete(ctx context.Context, subject string) error {
	return c.client.Del(ctx, c.key(subject)).Err()
}

func (c *identityCache) key(subject string) string {
	return fmt.Sprintf("%s%s", c.prefix, subject)
}
