package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_BurstThenThrottle(t *testing.T) {
	l := New(4) // burst 2, one token every 15s
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("alice"))
	assert.True(t, l.Allow("alice"))
	assert.False(t, l.Allow("alice"))
	assert.True(t, l.Allow("bob"), "keys are independent")

	now = now.Add(15 * time.Second)
	assert.True(t, l.Allow("alice"))
}

func TestLimiter_ForgetsIdleKeys(t *testing.T) {
	l := New(4)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("alice")
	now = now.Add(idleTTL + time.Second)
	l.Allow("bob")

	assert.NotContains(t, l.entries, "alice")
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(0)
	for range 100 {
		assert.True(t, l.Allow("alice"))
	}
}
