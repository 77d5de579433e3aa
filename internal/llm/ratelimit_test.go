package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterBurstAndRefill(t *testing.T) {
	rl := NewRateLimiter(60)
	start := time.Now()
	now := start
	rl.now = func() time.Time { return now }
	rl.lastRefill = start

	ctx := context.Background()
	for i := 0; i < 60; i++ {
		require.NoError(t, rl.Wait(ctx))
	}
	assert.Equal(t, 0, rl.tokens)

	now = start.Add(3 * time.Second)
	rl.mu.Lock()
	rl.refillLocked(now)
	rl.mu.Unlock()
	assert.Equal(t, 3, rl.tokens)

	now = start.Add(10 * time.Minute)
	rl.mu.Lock()
	rl.refillLocked(now)
	rl.mu.Unlock()
	assert.Equal(t, 60, rl.tokens, "never exceeds the bucket size")
}

func TestRateLimiterWaitHonoursContext(t *testing.T) {
	rl := NewRateLimiter(1)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRateLimiterClampsZero(t *testing.T) {
	rl := NewRateLimiter(0)
	assert.Equal(t, 1, rl.maxTokens)
	assert.Equal(t, time.Minute, rl.refillRate)
}
