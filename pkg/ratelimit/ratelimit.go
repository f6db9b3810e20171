// Package ratelimit 提供基于 Redis (GCRA) 与进程内令牌桶的两种限流实现
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RateLimiter defines the interface for rate limiting
type RateLimiter interface {
	// Allow checks if the request is allowed for the given key and limit
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// Limit defines the rate limit rule
type Limit struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
}

// RedisRateLimiter implements RateLimiter using Redis
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRedisRateLimiter creates a new RedisRateLimiter
func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		limiter: redis_rate.NewLimiter(rdb),
	}
}

// Allow checks if the request is allowed
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	res, err := r.limiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   limit.Rate,
		Period: limit.Period,
		Burst:  limit.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		ResetAfter: res.ResetAfter,
		RetryAfter: res.RetryAfter,
	}, nil
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// LocalRateLimiter 进程内按 key 的令牌桶，Redis 未启用时使用
type LocalRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewLocalRateLimiter 创建进程内限流器
func NewLocalRateLimiter() *LocalRateLimiter {
	return &LocalRateLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow 检查是否允许请求
func (l *LocalRateLimiter) Allow(_ context.Context, key string, limit Limit) (*Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 || limit.Burst <= 0 {
		return nil, fmt.Errorf("invalid rate limit: %+v", limit)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	refillRate := float64(limit.Rate) / limit.Period.Seconds()
	maxTokens := float64(limit.Burst)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: maxTokens, lastRefill: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = math.Min(maxTokens, b.tokens+elapsed*refillRate)
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return &Result{
			Allowed:    true,
			Remaining:  int(b.tokens),
			ResetAfter: secondsToDuration((maxTokens - b.tokens) / refillRate),
		}, nil
	}

	return &Result{
		Allowed:    false,
		Remaining:  0,
		RetryAfter: secondsToDuration((1 - b.tokens) / refillRate),
		ResetAfter: secondsToDuration((maxTokens - b.tokens) / refillRate),
	}, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
