package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	c, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	return redis.NewClient(&redis.Options{Addr: endpoint})
}

func TestGuard_ClaimRelease(t *testing.T) {
	rdb := setupRedis(t)
	g := NewGuard(rdb, time.Minute)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "cs_1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Claim(ctx, "cs_1")
	require.NoError(t, err)
	assert.False(t, ok, "second claim on a held session must lose")

	ok, err = g.Claim(ctx, "cs_other")
	require.NoError(t, err)
	assert.True(t, ok, "sessions are claimed independently")

	require.NoError(t, g.Release(ctx, "cs_1"))
	ok, err = g.Claim(ctx, "cs_1")
	require.NoError(t, err)
	assert.True(t, ok, "released session can be claimed again")
}

func TestGuard_SingleWinnerUnderContention(t *testing.T) {
	rdb := setupRedis(t)
	g := NewGuard(rdb, time.Minute)

	var wins atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := g.Claim(context.Background(), "cs_contended")
			if !assert.NoError(t, err) {
				return
			}
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), wins.Load())
}

func TestGuard_ClaimExpires(t *testing.T) {
	rdb := setupRedis(t)
	g := NewGuard(rdb, 100*time.Millisecond)
	ctx := context.Background()

	ok, err := g.Claim(ctx, "cs_crash")
	require.NoError(t, err)
	require.True(t, ok)

	// A holder that never releases must not block the session past the TTL.
	assert.Eventually(t, func() bool {
		ok, err := g.Claim(ctx, "cs_crash")
		return err == nil && ok
	}, 2*time.Second, 50*time.Millisecond)
}

func TestGuard_ReleaseUnclaimedIsNoop(t *testing.T) {
	rdb := setupRedis(t)
	g := NewGuard(rdb, time.Minute)
	assert.NoError(t, g.Release(context.Background(), "cs_never_claimed"))
}
