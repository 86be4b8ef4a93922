package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
)

// FailureStore counts failed logins per key in a fixed window that starts
// with the first failure.
type FailureStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type RedisFailureStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisFailureStore(client redis.UniversalClient, prefix string) *RedisFailureStore {
	if prefix == "" {
		prefix = "login_failures"
	}
	return &RedisFailureStore{client: client, prefix: prefix}
}

// Increment runs INCR and EXPIRE NX in one transaction. EXPIRE NX keeps the
// window anchored at the first failure and repairs a key left without a TTL.
func (s *RedisFailureStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	dataKey := s.dataKey(key)

	var incr *redis.IntCmd
	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, dataKey)
		pipe.ExpireNX(ctx, dataKey, window)
		return nil
	}); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *RedisFailureStore) Count(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Get(ctx, s.dataKey(key)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}

func (s *RedisFailureStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.dataKey(key)).Err()
}

func (s *RedisFailureStore) dataKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, HashToken(key))
}

// MemoryFailureStore keeps counters in process. It is used when no Redis is
// configured, so limits are per instance.
type MemoryFailureStore struct {
	mu    sync.Mutex
	cache *ttlcache.Cache[string, int64]
}

func NewMemoryFailureStore() *MemoryFailureStore {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, int64](),
	)
	go cache.Start()
	return &MemoryFailureStore{cache: cache}
}

func (s *MemoryFailureStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.cache.Get(key)
	if item == nil || item.IsExpired() {
		s.cache.Set(key, 1, window)
		return 1, nil
	}

	count := item.Value() + 1
	remaining := time.Until(item.ExpiresAt())
	if remaining <= 0 {
		remaining = window
		count = 1
	}
	s.cache.Set(key, count, remaining)
	return count, nil
}

func (s *MemoryFailureStore) Count(_ context.Context, key string) (int64, error) {
	item := s.cache.Get(key)
	if item == nil || item.IsExpired() {
		return 0, nil
	}
	return item.Value(), nil
}

func (s *MemoryFailureStore) Reset(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *MemoryFailureStore) Stop() {
	s.cache.Stop()
}

// LoginGuard blocks a (username, ip) pair after too many failed logins.
// Store errors never block a login.
type LoginGuard struct {
	store       FailureStore
	maxFailures int64
	window      time.Duration
	logger      *slog.Logger
}

func NewLoginGuard(store FailureStore, maxFailures int, window time.Duration, logger *slog.Logger) *LoginGuard {
	return &LoginGuard{
		store:       store,
		maxFailures: int64(maxFailures),
		window:      window,
		logger:      logger,
	}
}

func loginGuardKey(username, ip string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "|" + ip
}

func (g *LoginGuard) Blocked(ctx context.Context, username, ip string) bool {
	if g == nil || g.maxFailures <= 0 {
		return false
	}
	count, err := g.store.Count(ctx, loginGuardKey(username, ip))
	if err != nil {
		g.logger.Warn("login guard check failed", "error", err)
		return false
	}
	return count >= g.maxFailures
}

func (g *LoginGuard) RecordFailure(ctx context.Context, username, ip string) {
	if g == nil {
		return
	}
	if _, err := g.store.Increment(ctx, loginGuardKey(username, ip), g.window); err != nil {
		g.logger.Warn("login guard record failed", "error", err)
	}
}

func (g *LoginGuard) Reset(ctx context.Context, username, ip string) {
	if g == nil {
		return
	}
	if err := g.store.Reset(ctx, loginGuardKey(username, ip)); err != nil {
		g.logger.Warn("login guard reset failed", "error", err)
	}
}
