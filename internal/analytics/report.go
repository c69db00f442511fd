package analytics

import (
	"time"

	"gorm.io/gorm"

	"sitepulse/internal/events"
	"sitepulse/internal/timeframe"
	"sitepulse/internal/websites"
)

// Report is a computed Snapshot together with the window it covers.
type Report struct {
	Hostname  string
	Days      int
	StartDate time.Time
	EndDate   time.Time
	Snapshot  Snapshot
}

// BuildReport fetches the event window for a website and runs the snapshot
// computation over it. days is clamped the same way timeframe.LastDays clamps
// it.
func BuildReport(db *gorm.DB, website *websites.Website, days int, now time.Time, opts Options) (*Report, error) {
	tf := timeframe.LastDays(days, now)

	pageViews, err := events.PageViewsInWindow(db, website.ID, tf.From, tf.To)
	if err != nil {
		return nil, err
	}

	return &Report{
		Hostname:  website.Hostname,
		Days:      tf.Days,
		StartDate: tf.From,
		EndDate:   tf.To,
		Snapshot:  Compute(pageViews, now, opts),
	}, nil
}
