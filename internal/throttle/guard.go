// Package throttle keeps calls against a quota-limited upstream one at a time.
package throttle

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/civicline/backend/internal/logger"
	"github.com/redis/go-redis/v9"
)

// Guard serializes access to a shared upstream. The returned release func
// must be called exactly once.
type Guard interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// LocalGuard allows one holder at a time within this process.
type LocalGuard struct {
	slot chan struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{slot: make(chan struct{}, 1)}
}

func (g *LocalGuard) Acquire(ctx context.Context) (func(), error) {
	select {
	case g.slot <- struct{}{}:
		return func() { <-g.slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

const (
	defaultLeaseTTL   = 30 * time.Second
	defaultRetryDelay = 100 * time.Millisecond
	defaultMaxRetries = 100
)

// RedisGuard holds a short lease in Redis so that replicas sharing one API
// key also take turns. The in-process guard still applies, which keeps
// Redis round trips to one waiter per process.
type RedisGuard struct {
	locker *redislock.Client
	key    string
	ttl    time.Duration
	local  *LocalGuard
}

func NewRedisGuard(client *redis.Client, key string) *RedisGuard {
	return &RedisGuard{
		locker: redislock.New(client),
		key:    "lock:" + key,
		ttl:    defaultLeaseTTL,
		local:  NewLocalGuard(),
	}
}

// Acquire takes the local slot, then the Redis lease. If the lease cannot be
// obtained the caller proceeds with only the local slot held.
func (g *RedisGuard) Acquire(ctx context.Context) (func(), error) {
	releaseLocal, err := g.local.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	lock, err := g.locker.Obtain(ctx, g.key, g.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(defaultRetryDelay), defaultMaxRetries),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			releaseLocal()
			return nil, ctxErr
		}
		entry := logger.WithError(err, "throttle").WithField("key", g.key)
		if errors.Is(err, redislock.ErrNotObtained) {
			entry.Warn("could not obtain redis lease; proceeding with local guard only")
		} else {
			entry.Warn("error obtaining redis lease; proceeding with local guard only")
		}
		return releaseLocal, nil
	}

	return func() {
		if releaseErr := lock.Release(context.Background()); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			logger.WithError(releaseErr, "throttle").WithField("key", g.key).Warn("failed to release redis lease")
		}
		releaseLocal()
	}, nil
}

// New picks the Redis guard when an address is configured.
func New(redisAddress, redisPassword string, redisDB int, key string) Guard {
	if redisAddress == "" {
		return NewLocalGuard()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Password: redisPassword,
		DB:       redisDB,
	})
	logger.Info("Geocoder guard backed by redis", map[string]interface{}{"address": redisAddress})
	return NewRedisGuard(client, key)
}
