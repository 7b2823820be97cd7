package tokens

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/homefinder/api/internal/config"
)

func TestNopDenylist(t *testing.T) {
	var d NopDenylist
	require.NoError(t, d.Add(context.Background(), "j", time.Minute))

	hit, err := d.Contains(context.Background(), "j")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisDenylist(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if testing.Short() || addr == "" {
		t.Skip("Skipping integration test, REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	d := NewRedisDenylist(client)
	jti := uuid.NewString()

	hit, err := d.Contains(ctx, jti)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, d.Add(ctx, jti, time.Minute))
	hit, err = d.Contains(ctx, jti)
	require.NoError(t, err)
	assert.True(t, hit)

	ttl, err := client.TTL(ctx, denylistPrefix+jti).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	expired := uuid.NewString()
	require.NoError(t, d.Add(ctx, expired, 0))
	hit, err = d.Contains(ctx, expired)
	require.NoError(t, err)
	assert.False(t, hit)
}
