// Package timeframe defines the query windows used by the read paths.
package timeframe

import "time"

// Window bounds for the read/export API: requests default to the last 7 days
// and are clamped to at most 30.
const (
	DefaultDays = 7
	MaxDays     = 30
)

// TimeFrame represents a trailing period ending at the reference instant.
type TimeFrame struct {
	From time.Time
	To   time.Time
	Days int
}

// LastDays builds a trailing window of the given number of calendar days
// ending at now. Days outside [1, MaxDays] are clamped; zero or negative
// requests fall back to the default.
func LastDays(days int, now time.Time) TimeFrame {
	if days <= 0 {
		days = DefaultDays
	}
	if days > MaxDays {
		days = MaxDays
	}

	now = now.UTC()
	return TimeFrame{
		From: now.AddDate(0, 0, -days),
		To:   now,
		Days: days,
	}
}

// Contains reports whether t falls inside the window (inclusive bounds).
func (tf TimeFrame) Contains(t time.Time) bool {
	return !t.Before(tf.From) && !t.After(tf.To)
}
