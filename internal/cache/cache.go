package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache 是服務用到的 Redis 指令子集，*redis.Client 直接滿足
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Close() error
}

const (
	probeKeyPrefix = "uixlabs-accounts:healthcheck:"
	probeTTL       = 10 * time.Second
)

// Probe 寫入再讀回一個短 TTL 的鍵，確認快取可讀寫；每次呼叫使用不同的鍵
func Probe(ctx context.Context, c Cache) error {
	key := probeKeyPrefix + uuid.NewString()
	want := time.Now().UTC().Format(time.RFC3339Nano)
	if err := c.Set(ctx, key, want, probeTTL).Err(); err != nil {
		return fmt.Errorf("cache probe set: %w", err)
	}
	got, err := c.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("cache probe get: %w", err)
	}
	if got != want {
		return fmt.Errorf("cache probe: read %q, wrote %q", got, want)
	}
	return nil
}

type FakeCache struct {
	GetFn   func(ctx context.Context, key string) *redis.StringCmd
	SetFn   func(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	CloseFn func() error
}

func (f *FakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.GetFn != nil {
		return f.GetFn(ctx, key)
	}
	panic("unexpected Get")
}

func (f *FakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if f.SetFn != nil {
		return f.SetFn(ctx, key, value, ttl)
	}
	panic("unexpected Set")
}

func (f *FakeCache) Close() error {
	if f.CloseFn != nil {
		return f.CloseFn()
	}
	return nil
}

// NewMemoryFake 回傳一個以 map 保存值的 FakeCache，供健康檢查測試使用
func NewMemoryFake() *FakeCache {
	var mu sync.Mutex
	data := map[string]string{}
	return &FakeCache{
		GetFn: func(_ context.Context, key string) *redis.StringCmd {
			mu.Lock()
			defer mu.Unlock()
			v, ok := data[key]
			if !ok {
				return redis.NewStringResult("", redis.Nil)
			}
			return redis.NewStringResult(v, nil)
		},
		SetFn: func(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
			mu.Lock()
			defer mu.Unlock()
			data[key] = fmt.Sprint(value)
			return redis.NewStatusResult("OK", nil)
		},
	}
}
