package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stwalsh4118/homefinder/api/internal/config"
)

const (
	denylistPrefix = "token:revoked:"
	dialTimeout    = 5 * time.Second
)

// RedisDenylist caches revoked jtis in Redis with a TTL matching the token's
// remaining lifetime.
type RedisDenylist struct {
	client *redis.Client
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(dialCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisDenylist wraps an existing client.
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

// Add stores jti until ttl elapses. A non-positive ttl means the token has
// already expired and nothing is stored.
func (d *RedisDenylist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, denylistPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache revoked jti %s: %w", jti, err)
	}
	return nil
}

// Contains reports whether jti is cached as revoked.
func (d *RedisDenylist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up jti %s: %w", jti, err)
	}
	return n > 0, nil
}

// NopDenylist never caches anything; every lookup goes to the store.
type NopDenylist struct{}

func (NopDenylist) Add(context.Context, string, time.Duration) error { return nil }
func (NopDenylist) Contains(context.Context, string) (bool, error)   { return false, nil }
