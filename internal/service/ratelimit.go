package service

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is an in-memory per-key rate limiter. It is safe for
// concurrent use. Buckets idle for longer than staleAfter are dropped.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64 // maximum tokens
	now      func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

const (
	cleanupInterval = 5 * time.Minute
	staleAfter      = 10 * time.Minute
)

// NewTokenBucket creates a rate limiter that allows up to capacity requests
// per key in a burst, refilling at rate tokens per second. Stale buckets are
// swept in the background until ctx is cancelled.
func NewTokenBucket(ctx context.Context, rate, capacity float64) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		now:      time.Now,
	}
	go tb.cleanup(ctx)
	return tb
}

// Allow reports whether key may proceed, consuming one token if so.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, last: now}
		tb.buckets[key] = b
	}

	b.tokens = min(b.tokens+now.Sub(b.last).Seconds()*tb.rate, tb.capacity)
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Len returns the number of tracked keys.
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}

func (tb *TokenBucket) cleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tb.sweep()
		}
	}
}

func (tb *TokenBucket) sweep() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	cutoff := tb.now().Add(-staleAfter)
	for key, b := range tb.buckets {
		if b.last.Before(cutoff) {
			delete(tb.buckets, key)
		}
	}
}
