package jobs

import (
	"log/slog"
	"time"

	"sitepulse/internal/config"
	"sitepulse/internal/database"
	"sitepulse/internal/events"
)

// CleanupJob removes page views past the retention window
type CleanupJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run removes page views older than the retention period. This keeps stored
// data minimal and bounds database growth.
func (j *CleanupJob) Run() error {
	retentionDays := j.cfg.PageViewRetentionDays
	if retentionDays <= 0 {
		j.logger.Debug("Page view retention disabled")
		return nil
	}

	db := j.dbManager.GetConnection()
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	j.logger.Info("Starting cleanup of old page views",
		slog.Int("retention_days", retentionDays),
		slog.Time("cutoff", cutoff))

	deleted, err := events.DeletePageViewsBefore(db, cutoff, 1000)
	if err != nil {
		j.logger.Error("Failed to delete old page views",
			slog.Any("error", err),
			slog.Int64("deleted_so_far", deleted))
		return err
	}

	j.logger.Info("Cleaned up old page views",
		slog.Int64("deleted_count", deleted),
		slog.Int("retention_days", retentionDays))
	return nil
}
