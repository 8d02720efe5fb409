package engine

import (
	"sync"
	"time"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
)

// ActionLimiter enforces the per-action rate limits declared in the
// matrix with a fixed window per key.
type ActionLimiter struct {
	mu    sync.Mutex
	items map[string]window
	now   func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

const limiterSweepSize = 1024

func NewActionLimiter(now func() time.Time) *ActionLimiter {
	if now == nil {
		now = time.Now
	}
	return &ActionLimiter{items: make(map[string]window), now: now}
}

// Allow counts one request against key and reports whether it fits in rl.
func (l *ActionLimiter) Allow(key string, rl model.RateLimit) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.items) >= limiterSweepSize {
		l.cleanupLocked(now)
	}
	curr, ok := l.items[key]
	if !ok || !now.Before(curr.resetAt) {
		curr = window{resetAt: now.Add(rl.Window)}
	}
	curr.count++
	l.items[key] = curr
	return curr.count <= rl.MaxRequests
}

func (l *ActionLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make(map[string]window)
}

func (l *ActionLimiter) cleanupLocked(now time.Time) {
	for k, v := range l.items {
		if !now.Before(v.resetAt) {
			delete(l.items, k)
		}
	}
}
