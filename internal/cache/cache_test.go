package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestFakeCache(t *testing.T) {
	c := &FakeCache{}
	require.Panics(t, func() { c.Get(context.Background(), "k") })
	require.Panics(t, func() { c.Set(context.Background(), "k", 1, 0) })
	require.NoError(t, c.Close())

	c.CloseFn = func() error { return errors.New("close") }
	require.EqualError(t, c.Close(), "close")
}

func TestProbe(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		require.NoError(t, Probe(ctx, NewMemoryFake()))
	})

	t.Run("set fails", func(t *testing.T) {
		c := &FakeCache{SetFn: func(context.Context, string, any, time.Duration) *redis.StatusCmd {
			return redis.NewStatusResult("", errors.New("set"))
		}}
		require.ErrorContains(t, Probe(ctx, c), "cache probe set")
	})

	t.Run("get fails", func(t *testing.T) {
		c := NewMemoryFake()
		c.GetFn = func(context.Context, string) *redis.StringCmd {
			return redis.NewStringResult("", redis.Nil)
		}
		err := Probe(ctx, c)
		require.ErrorIs(t, err, redis.Nil)
	})

	t.Run("stale value", func(t *testing.T) {
		c := NewMemoryFake()
		c.GetFn = func(context.Context, string) *redis.StringCmd {
			return redis.NewStringResult("old", nil)
		}
		require.ErrorContains(t, Probe(ctx, c), "read \"old\"")
	})

	t.Run("ttl is bounded", func(t *testing.T) {
		var gotTTL time.Duration
		c := NewMemoryFake()
		set := c.SetFn
		c.SetFn = func(ctx context.Context, k string, v any, ttl time.Duration) *redis.StatusCmd {
			gotTTL = ttl
			return set(ctx, k, v, ttl)
		}
		require.NoError(t, Probe(ctx, c))
		require.Equal(t, probeTTL, gotTTL)
	})

	t.Run("interleaved probes", func(t *testing.T) {
		c := NewMemoryFake()
		get := c.GetFn
		nested := false
		c.GetFn = func(ctx context.Context, k string) *redis.StringCmd {
			// 第一次讀回前，讓另一個 probe 完整跑完
			if !nested {
				nested = true
				require.NoError(t, Probe(ctx, c))
			}
			return get(ctx, k)
		}
		require.NoError(t, Probe(ctx, c))
		require.True(t, nested)
	})

	t.Run("concurrent probes", func(t *testing.T) {
		c := NewMemoryFake()
		var wg sync.WaitGroup
		errs := make(chan error, 50)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- Probe(ctx, c)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
	})

	t.Run("key is unique per call", func(t *testing.T) {
		var keys []string
		c := NewMemoryFake()
		set := c.SetFn
		c.SetFn = func(ctx context.Context, k string, v any, ttl time.Duration) *redis.StatusCmd {
			keys = append(keys, k)
			return set(ctx, k, v, ttl)
		}
		require.NoError(t, Probe(ctx, c))
		require.NoError(t, Probe(ctx, c))
		require.Len(t, keys, 2)
		require.NotEqual(t, keys[0], keys[1])
		require.True(t, strings.HasPrefix(keys[0], probeKeyPrefix))
	})
}
