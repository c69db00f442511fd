package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"sitepulse/internal/database"
	"sitepulse/internal/events"
	"sitepulse/internal/milestones"
	"sitepulse/internal/pkg/async"
	"sitepulse/internal/websites"
)

const milestoneWorkers = 4

// MilestoneJob walks every website with a notification email configured and
// runs the milestone checker against its all-time unique-visitor count.
type MilestoneJob struct {
	dbManager *database.DBManager
	checker   *milestones.Checker
	logger    *slog.Logger
}

func NewMilestoneJob(dbManager *database.DBManager, checker *milestones.Checker, logger *slog.Logger) *MilestoneJob {
	return &MilestoneJob{
		dbManager: dbManager,
		checker:   checker,
		logger:    logger,
	}
}

// Run checks milestone crossings for all notifiable websites. Sites are
// checked concurrently; one site failing does not stop the others.
func (j *MilestoneJob) Run() error {
	db := j.dbManager.GetConnection()

	sites, err := websites.GetWebsitesWithNotificationEmail(db)
	if err != nil {
		return fmt.Errorf("failed to list notifiable websites: %w", err)
	}
	if len(sites) == 0 {
		j.logger.Debug("No websites with notification email configured")
		return nil
	}

	ctx := context.Background()
	tasks := make([]async.Task, 0, len(sites))
	for i := range sites {
		website := sites[i]
		tasks = append(tasks, async.Task{
			Name: website.Hostname,
			Execute: func() error {
				count, err := events.UniqueVisitorCount(db, website.ID)
				if err != nil {
					return err
				}
				return j.checker.Check(ctx, db, &website, count)
			},
		})
	}

	results := async.NewPool(milestoneWorkers).Execute(ctx, tasks)

	var failed int
	for name, result := range results {
		if result.Err != nil {
			failed++
			j.logger.Error("Milestone check failed",
				slog.String("hostname", name),
				slog.Any("error", result.Err))
		}
	}

	j.logger.Info("Milestone job finished",
		slog.Int("websites", len(sites)),
		slog.Int("failed", failed))
	return nil
}
