package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("NG_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	c, err := NewClient(config.RedisConfig{Addr: addr, PoolSize: 2})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestIsNilError(t *testing.T) {
	require.True(t, IsNilError(ErrNil))
	require.True(t, IsNilError(fmt.Errorf("wrapped: %w", ErrNil)))
	require.False(t, IsNilError(context.Canceled))
}

func TestSetGetFlush(t *testing.T) {
	assert := require.New(t)
	c := testClient(t)
	ctx := context.Background()
	prefix := fmt.Sprintf("ngtest:%d:", time.Now().UnixNano())

	for i := 0; i < 3; i++ {
		assert.NoError(c.Set(ctx, fmt.Sprintf("%s%d", prefix, i), []byte{byte(i)}, time.Minute))
	}
	got, err := c.Get(ctx, prefix+"2")
	assert.NoError(err)
	assert.Equal([]byte{2}, got)

	_, err = c.Get(ctx, prefix+"missing")
	assert.True(IsNilError(err))

	deleted, err := c.FlushByPattern(ctx, prefix+"*")
	assert.NoError(err)
	assert.Equal(int64(3), deleted)
	assert.NoError(c.Ping(ctx))
}
