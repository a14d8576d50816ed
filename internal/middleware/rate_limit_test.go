package middleware

import (
	"testing"
	"time"

	"github.com/set-night/cafeloyalty/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestChatLimiterBurstAndRefill(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewChatLimiter(60)
	l.now = func() time.Time { return now }

	for i := 0; i < config.RateLimitBurst; i++ {
		assert.True(t, l.Allow(1), "request %d within burst", i)
	}
	assert.False(t, l.Allow(1))
	assert.True(t, l.Allow(2), "other chats have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow(1), "one token per second at 60/min")
	assert.False(t, l.Allow(1))
}

func TestChatLimiterSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewChatLimiter(20)
	l.now = func() time.Time { return now }

	l.Allow(1)
	now = now.Add(config.RateLimiterIdleTTL / 2)
	l.Allow(2)

	now = now.Add(config.RateLimiterIdleTTL/2 + time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, int64(2))
}
