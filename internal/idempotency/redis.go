// Package idempotency guards against concurrent duplicate submission of the
// same idempotency key before the persistence uniqueness check can see it.
// The in-flight marker carries a short TTL so a crashed caller cannot wedge a
// key forever.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stateInFlight  = "in_flight"
	stateCompleted = "completed"

	inFlightExpiry  = 30 * time.Second
	completedExpiry = 24 * time.Hour
)

// Guard is the narrow interface the orchestrator consumes. A nil guard
// disables the check; persistence uniqueness remains the backstop.
type Guard interface {
	Begin(ctx context.Context, key string) (duplicate bool, err error)
	Complete(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

type RedisGuard struct {
	client *redis.Client
}

func NewRedisGuard(addr, password string, db int) *RedisGuard {
	return &RedisGuard{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func redisKey(key string) string {
	return fmt.Sprintf("idem:%s", key)
}

// Begin atomically claims the key. It returns duplicate=true when the key is
// already completed or claimed by a concurrent request.
func (g *RedisGuard) Begin(ctx context.Context, key string) (bool, error) {
	k := redisKey(key)

	state, err := g.client.Get(ctx, k).Result()
	if err == nil && state == stateCompleted {
		return true, nil
	}
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("redis GET: %w", err)
	}

	set, err := g.client.SetNX(ctx, k, stateInFlight, inFlightExpiry).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX: %w", err)
	}
	return !set, nil
}

func (g *RedisGuard) Complete(ctx context.Context, key string) error {
	return g.client.Set(ctx, redisKey(key), stateCompleted, completedExpiry).Err()
}

// Release frees an in-flight claim after a failed attempt so the caller may
// retry with the same key.
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, redisKey(key)).Err()
}
