package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/manhattanmint/mint-bookings/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session slots in Redis with a TTL. When Redis becomes
// unavailable the store switches to a memory fallback for the rest of the
// process lifetime rather than surfacing storage errors to the customer.
type RedisStore struct {
	client   *redis.Client
	ttl      time.Duration
	fallback *MemoryStore
	degraded atomic.Bool
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:   client,
		ttl:      ttl,
		fallback: NewMemoryStore(),
	}
}

// Degraded reports whether the store has fallen back to memory.
func (s *RedisStore) Degraded() bool {
	return s.degraded.Load()
}

func (s *RedisStore) degrade(ctx context.Context, op string, err error) {
	if s.degraded.CompareAndSwap(false, true) {
		logger.WarnContext(ctx, "Session store degraded to memory", "op", op, "error", err)
	}
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, slot Slot, value any) {
	if s.degraded.Load() {
		s.fallback.Put(ctx, sessionID, slot, value)
		return
	}

	payload, err := marshal(value)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key(sessionID, slot), payload, s.ttl).Err(); err != nil {
		s.degrade(ctx, "put", err)
		s.fallback.Put(ctx, sessionID, slot, value)
	}
}

func (s *RedisStore) Take(ctx context.Context, sessionID string, slot Slot, dest any) bool {
	if s.degraded.Load() {
		return s.fallback.Take(ctx, sessionID, slot, dest)
	}

	payload, err := s.client.GetDel(ctx, key(sessionID, slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false
		}
		s.degrade(ctx, "take", err)
		return s.fallback.Take(ctx, sessionID, slot, dest)
	}
	return unmarshal(payload, dest)
}

func (s *RedisStore) Get(ctx context.Context, sessionID string, slot Slot, dest any) bool {
	if s.degraded.Load() {
		return s.fallback.Get(ctx, sessionID, slot, dest)
	}

	payload, err := s.client.Get(ctx, key(sessionID, slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false
		}
		s.degrade(ctx, "get", err)
		return s.fallback.Get(ctx, sessionID, slot, dest)
	}
	return unmarshal(payload, dest)
}

func (s *RedisStore) Acquire(ctx context.Context, sessionID string, slot Slot) bool {
	if s.degraded.Load() {
		return s.fallback.Acquire(ctx, sessionID, slot)
	}

	ok, err := s.client.SetNX(ctx, key(sessionID, slot)+":lock", "1", s.ttl).Result()
	if err != nil {
		s.degrade(ctx, "acquire", err)
		return s.fallback.Acquire(ctx, sessionID, slot)
	}
	return ok
}

func (s *RedisStore) Release(ctx context.Context, sessionID string, slot Slot) {
	if s.degraded.Load() {
		s.fallback.Release(ctx, sessionID, slot)
		return
	}

	if err := s.client.Del(ctx, key(sessionID, slot)+":lock").Err(); err != nil {
		s.degrade(ctx, "release", err)
		s.fallback.Release(ctx, sessionID, slot)
	}
}
