package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// LimitStore decides whether one more request from key fits in the current window.
type LimitStore interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimitStore keeps a token bucket per key in process memory.
type MemoryLimitStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	done     chan struct{}
	now      func() time.Time
}

func NewMemoryLimitStore(limit int, window time.Duration) *MemoryLimitStore {
	if limit < 1 {
		limit = 1
	}
	s := &MemoryLimitStore{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
		now:      time.Now,
	}

	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.evictIdle()
			case <-s.done:
				return
			}
		}
	}()

	return s
}

func (s *MemoryLimitStore) Allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, exists := s.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(s.window/time.Duration(s.limit)), s.limit)}
		s.visitors[key] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1), nil
}

func (s *MemoryLimitStore) evictIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.window {
			delete(s.visitors, key)
		}
	}
}

func (s *MemoryLimitStore) Close() {
	close(s.done)
}

// RedisLimitStore counts requests in fixed windows shared by every replica.
type RedisLimitStore struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimitStore(client *redis.Client, limit int, window time.Duration) *RedisLimitStore {
	return &RedisLimitStore{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (s *RedisLimitStore) Allow(ctx context.Context, key string) (bool, error) {
	bucket := s.now().UnixNano() / int64(s.window)
	redisKey := fmt.Sprintf("ratelimit:chat:%s:%d", key, bucket)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, s.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}

	return incr.Val() <= int64(s.limit), nil
}

type RateLimiter struct {
	store  LimitStore
	logger *slog.Logger
}

func NewRateLimiter(store LimitStore, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{store: store, logger: logger}
}

// Middleware rejects clients over their budget with 429. Store failures let the
// request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		allowed, err := rl.store.Allow(r.Context(), ip)
		if err != nil {
			rl.logger.Warn("rate limiter unavailable", "error", err, "request_id", GetRequestID(r.Context()))
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
