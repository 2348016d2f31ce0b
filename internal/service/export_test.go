package service

import "time"

// SetClock replaces the limiter clock in tests.
func (tb *TokenBucket) SetClock(now func() time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.now = now
}

// Sweep runs one stale-bucket pass.
func (tb *TokenBucket) Sweep() { tb.sweep() }
