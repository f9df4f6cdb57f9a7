package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsWithinBudget(t *testing.T) {
	l := NewLimiter(time.Minute, 3)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	// Separate keys have separate budgets
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestLimiterWindowExpiry(t *testing.T) {
	l := NewLimiter(20*time.Millisecond, 1)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow("1.2.3.4"))
}
