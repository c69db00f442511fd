package ratelimit_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sitepulse/internal/pkg/ratelimit"
)

func TestAllowWithinWindow(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(3, time.Minute, ratelimit.WithClock(func() time.Time { return current }))
	defer limiter.Stop()

	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.False(t, limiter.Allow("1.2.3.4"), "fourth request within the window must be denied")
}

func TestWindowResetAllowsAgain(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(1, time.Minute, ratelimit.WithClock(func() time.Time { return current }))
	defer limiter.Stop()

	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.False(t, limiter.Allow("1.2.3.4"))

	// Advance past the window; the first call must be allowed again
	current = current.Add(time.Minute + time.Second)
	assert.True(t, limiter.Allow("1.2.3.4"))
}

func TestKeysAreIndependent(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(1, time.Minute, ratelimit.WithClock(func() time.Time { return current }))
	defer limiter.Stop()

	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.False(t, limiter.Allow("1.2.3.4"))
	assert.True(t, limiter.Allow("5.6.7.8"), "a different key has its own window")
}

func TestSweepEvictsExpiredEntries(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(10, time.Minute, ratelimit.WithClock(func() time.Time { return current }))
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 5, limiter.Len())

	current = current.Add(2 * time.Minute)
	limiter.Sweep()
	assert.Equal(t, 0, limiter.Len())
}

func TestConcurrentAllowCountsExactly(t *testing.T) {
	limiter := ratelimit.New(50, time.Minute)
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed, "exactly max requests must be allowed under concurrency")
}
