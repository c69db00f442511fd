package milestones

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sitepulse/internal/pkg/mailer"
	"sitepulse/internal/websites"
)

// Ladder is the ascending set of unique-visitor milestones that trigger a
// notification.
var Ladder = []int64{100, 500, 1000, 5000, 10000, 50000, 100000}

// MilestoneRecord marks a milestone as already notified for a website.
type MilestoneRecord struct {
	ID        uint  `gorm:"primaryKey"`
	WebsiteID uint  `gorm:"index:idx_milestone_website,unique"`
	Milestone int64 `gorm:"index:idx_milestone_website,unique"`
	CreatedAt time.Time
}

// Checker evaluates milestone crossings and sends notification emails.
type Checker struct {
	mailer mailer.Mailer
	logger *slog.Logger
}

func NewChecker(m mailer.Mailer, logger *slog.Logger) *Checker {
	return &Checker{mailer: m, logger: logger}
}

// Check compares the current unique-visitor count against the ladder. When
// new milestones have been crossed since the last check it emails about the
// highest one and records every newly crossed rung, so a later jump does not
// re-notify the ones skipped over. Websites without a notification email are
// skipped entirely.
func (c *Checker) Check(ctx context.Context, db *gorm.DB, website *websites.Website, visitorCount int64) error {
	if website.NotificationEmail == nil || *website.NotificationEmail == "" {
		return nil
	}

	notified, err := notifiedMilestones(db, website.ID)
	if err != nil {
		return err
	}

	var newlyCrossed []int64
	for _, m := range Ladder {
		if visitorCount >= m && !notified[m] {
			newlyCrossed = append(newlyCrossed, m)
		}
	}
	if len(newlyCrossed) == 0 {
		return nil
	}

	// A failed email is logged but still marked as notified below; there is
	// no retry, so a lost email for a rung stays lost.
	highest := newlyCrossed[len(newlyCrossed)-1]
	if err := c.sendMilestoneEmail(ctx, website, highest, visitorCount); err != nil {
		c.logger.Error("Failed to send milestone email",
			slog.Any("error", err),
			slog.String("hostname", website.Hostname),
			slog.Int64("milestone", highest))
	}

	records := make([]MilestoneRecord, 0, len(newlyCrossed))
	now := time.Now().UTC()
	for _, m := range newlyCrossed {
		records = append(records, MilestoneRecord{
			WebsiteID: website.ID,
			Milestone: m,
			CreatedAt: now,
		})
	}

	// Insert-if-absent keeps concurrent checks from failing on the unique
	// (website, milestone) index; the loser of the race just inserts nothing.
	err = sqlite.PerformWrite(c.logger, db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record milestones: %w", err)
	}

	c.logger.Info("Milestone notification sent",
		slog.String("hostname", website.Hostname),
		slog.Int64("milestone", highest),
		slog.Int("recorded", len(records)))
	return nil
}

func (c *Checker) sendMilestoneEmail(ctx context.Context, website *websites.Website, milestone, visitorCount int64) error {
	subject := fmt.Sprintf("%s just passed %d visitors", website.Hostname, milestone)
	html := fmt.Sprintf(
		"<h2>Congratulations!</h2>"+
			"<p><strong>%s</strong> has reached <strong>%d unique visitors</strong>.</p>"+
			"<p>Current count: %d.</p>",
		website.Hostname, milestone, visitorCount)
	return c.mailer.Send(ctx, *website.NotificationEmail, subject, html)
}

// notifiedMilestones loads the set of milestones already recorded for a
// website.
func notifiedMilestones(db *gorm.DB, websiteID uint) (map[int64]bool, error) {
	var values []int64
	err := db.Model(&MilestoneRecord{}).
		Where("website_id = ?", websiteID).
		Pluck("milestone", &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load notified milestones: %w", err)
	}

	notified := make(map[int64]bool, len(values))
	for _, v := range values {
		notified[v] = true
	}
	return notified, nil
}
