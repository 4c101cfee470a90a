package services

import (
	"context"
	"time"
)

// OrderLocker serializes reconciliation of a single order across
// concurrent return callbacks (duplicate browser redirects, double
// clicks). Holding the lock is advisory; losing it means another
// reconcile for the same order is already in flight.
type OrderLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// RedisOrderLocker implements OrderLocker with a SetNX key per order.
type RedisOrderLocker struct {
	cache *RedisCache
}

func NewRedisOrderLocker(cache *RedisCache) *RedisOrderLocker {
	return &RedisOrderLocker{cache: cache}
}

func (l *RedisOrderLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.cache.SetNX(ctx, key, time.Now().Unix(), ttl)
}

func (l *RedisOrderLocker) Unlock(ctx context.Context, key string) error {
	return l.cache.Delete(ctx, key)
}
