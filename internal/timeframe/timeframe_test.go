package timeframe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sitepulse/internal/timeframe"
)

func TestLastDays(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	t.Run("Default window", func(t *testing.T) {
		tf := timeframe.LastDays(0, now)
		assert.Equal(t, timeframe.DefaultDays, tf.Days)
		assert.Equal(t, now.AddDate(0, 0, -7), tf.From)
		assert.Equal(t, now, tf.To)
	})

	t.Run("Explicit days", func(t *testing.T) {
		tf := timeframe.LastDays(14, now)
		assert.Equal(t, 14, tf.Days)
		assert.Equal(t, now.AddDate(0, 0, -14), tf.From)
	})

	t.Run("Clamped to maximum", func(t *testing.T) {
		tf := timeframe.LastDays(365, now)
		assert.Equal(t, timeframe.MaxDays, tf.Days)
		assert.Equal(t, now.AddDate(0, 0, -30), tf.From)
	})

	t.Run("Negative falls back to default", func(t *testing.T) {
		tf := timeframe.LastDays(-5, now)
		assert.Equal(t, timeframe.DefaultDays, tf.Days)
	})
}

func TestContains(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	tf := timeframe.LastDays(7, now)

	assert.True(t, tf.Contains(now))
	assert.True(t, tf.Contains(now.AddDate(0, 0, -7)), "window bounds are inclusive")
	assert.True(t, tf.Contains(now.AddDate(0, 0, -3)))
	assert.False(t, tf.Contains(now.AddDate(0, 0, -8)))
	assert.False(t, tf.Contains(now.Add(time.Hour)))
}
