package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
)

func TestActionLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	l := NewActionLimiter(func() time.Time { return now })
	rl := model.RateLimit{MaxRequests: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("u-1:bancos:manage", rl))
	}
	assert.False(t, l.Allow("u-1:bancos:manage", rl))
	assert.True(t, l.Allow("u-2:bancos:manage", rl))

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("u-1:bancos:manage", rl))
}

func TestActionLimiter_SweepsExpiredKeys(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	l := NewActionLimiter(func() time.Time { return now })
	rl := model.RateLimit{MaxRequests: 1, Window: time.Second}

	for i := 0; i < limiterSweepSize; i++ {
		l.Allow(fmt.Sprintf("k-%d", i), rl)
	}
	now = now.Add(2 * time.Second)
	l.Allow("fresh", rl)

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.items, 1)
}
