package services

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevoker stores revoked token ids with a TTL matching the token's
// remaining lifetime, so the blacklist cleans itself up.
type RedisRevoker struct{ rdb *redis.Client }

func NewRedisRevoker(rdb *redis.Client) *RedisRevoker { return &RedisRevoker{rdb: rdb} }

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.rdb.Set(ctx, "revoked:"+jti, "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) bool {
	n, err := r.rdb.Exists(ctx, "revoked:"+jti).Result()
	if err != nil {
		// Fail open: an unreachable blacklist must not lock everyone out.
		log.Printf("[auth] revocation check: %v", err)
		return false
	}
	return n > 0
}
