package services

import (
	"context"
	"fmt"
	"time"

	"github.com/citypulse/backend/internal/logger"
	"github.com/citypulse/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// Locker serializes complaint creation per (department, location) so the
// duplicate check and the insert cannot interleave with a concurrent
// creation of the same ticket.
type Locker interface {
	// Acquire returns a release function and whether the lock was taken.
	Acquire(department models.Department, locationKey string) (func(), bool)
}

type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
	ctx context.Context
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{
		rdb: rdb,
		ttl: 5 * time.Second,
		ctx: context.Background(),
	}
}

func (l *RedisLocker) Acquire(department models.Department, locationKey string) (func(), bool) {
	key := fmt.Sprintf("lock:complaint:%s:%s", department, locationKey)

	ok, err := l.rdb.SetNX(l.ctx, key, 1, l.ttl).Result()
	if err != nil {
		// Lock is an optimization on top of the partial unique index; if
		// redis is down we proceed and let the index arbitrate.
		logger.Warn("Creation lock unavailable, relying on storage constraint", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return func() {}, true
	}
	if !ok {
		return func() {}, false
	}
	return func() {
		if err := l.rdb.Del(l.ctx, key).Err(); err != nil {
			logger.Warn("Failed to release creation lock", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}, true
}

// NoopLocker always grants the lock. Used when redis is not configured and
// in tests.
type NoopLocker struct{}

func (NoopLocker) Acquire(models.Department, string) (func(), bool) {
	return func() {}, true
}
