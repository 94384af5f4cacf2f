// Package timing limits how often a piece of code runs.
//
// RateLimit keys its budget on the call site, so a loop body can throttle a
// log line or a publish without holding any state of its own:
//
//	for {
//		timing.RateLimit(func() { log.Infof("still alive") }, 5*time.Second)
//	}
package timing

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter tracks one token bucket per key. Each bucket holds a single token
// refilled once per period, so the first call for a key always runs.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	now     func() time.Time
}

// NewLimiter returns an empty Limiter.
func NewLimiter() *Limiter {
	return &Limiter{buckets: make(map[string]*rate.Limiter), now: time.Now}
}

// Allow reports whether the call identified by key may run now.
func (l *Limiter) Allow(key string, period time.Duration) bool {
	now := l.now()
	limit := rate.Every(period)

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(limit, 1)
		l.buckets[key] = b
	} else if b.Limit() != limit {
		b.SetLimitAt(now, limit)
	}
	l.mu.Unlock()

	return b.AllowN(now, 1)
}

// Do runs fn if key's budget allows it and reports whether it ran.
func (l *Limiter) Do(key string, period time.Duration, fn func()) bool {
	if !l.Allow(key, period) {
		return false
	}
	fn()
	return true
}

// Reset forgets every key.
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.buckets = make(map[string]*rate.Limiter)
	l.mu.Unlock()
}

var defaultLimiter = NewLimiter()

// RateLimit runs fn at most once per period for each call site.
func RateLimit(fn func(), period time.Duration) bool {
	return defaultLimiter.Do(callSite(1), period, fn)
}

// RateLimitFrequency runs fn at most hz times per second for each call site.
func RateLimitFrequency(fn func(), hz float64) bool {
	return defaultLimiter.Do(callSite(1), FrequencyToPeriod(hz), fn)
}

// FrequencyToPeriod converts a rate in hertz to the matching period.
// Non-positive rates yield zero, which means unlimited.
func FrequencyToPeriod(hz float64) time.Duration {
	if hz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / hz)
}

func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}
