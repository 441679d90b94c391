package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker tracks tokens invalidated before their natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedKeyPrefix = "revoked_token:"

type redisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker stores revoked token ids in Redis with a TTL
// matching the token's remaining lifetime.
func NewRedisRevoker(client *redis.Client) TokenRevoker {
	return &redisRevoker{client: client}
}

func (r *redisRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (r *redisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
