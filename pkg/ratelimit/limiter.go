package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket implements the token bucket algorithm for rate limiting
type TokenBucket struct {
	capacity   int
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a full bucket holding capacity tokens that refills
// at refillRate tokens per second.
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

func newTokenBucket(capacity int, refillRate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// Allow takes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

func (tb *TokenBucket) Tokens() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.tokens
}

func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.tokens = float64(tb.capacity)
	tb.lastRefill = tb.now()
}

func (tb *TokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill
}

// RateLimiter keeps one token bucket per key.
type RateLimiter struct {
	buckets    map[string]*TokenBucket
	capacity   int
	refillRate float64
	ttl        time.Duration
	now        func() time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a limiter allowing capacity requests in a burst
// and refillRate requests per second for each key. Buckets idle longer than
// ttl are dropped by Sweep.
func NewRateLimiter(capacity int, refillRate float64, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:    make(map[string]*TokenBucket),
		capacity:   capacity,
		refillRate: refillRate,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Allow checks if a request for the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	bucket, exists := rl.buckets[key]
	if !exists {
		bucket = newTokenBucket(rl.capacity, rl.refillRate, rl.now)
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()

	return bucket.Allow()
}

// Reset refills the bucket of key.
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if bucket, exists := rl.buckets[key]; exists {
		bucket.Reset()
	}
}

// Sweep drops buckets idle for longer than the TTL and returns how many
// were removed. A zero TTL keeps every bucket.
func (rl *RateLimiter) Sweep() int {
	if rl.ttl <= 0 {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, bucket := range rl.buckets {
		if now.Sub(bucket.idleSince()) > rl.ttl {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle buckets every TTL until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	if rl.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}

type Stats struct {
	ActiveBuckets int
	TotalCapacity int
	RefillRate    float64
}

func (rl *RateLimiter) GetStats() Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return Stats{
		ActiveBuckets: len(rl.buckets),
		TotalCapacity: rl.capacity,
		RefillRate:    rl.refillRate,
	}
}
