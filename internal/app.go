// Package internal contains core application functionality
package internal

import (
	"fmt"
	"log/slog"

	"github.com/karloscodes/cartridge"

	"sitepulse/internal/config"
	"sitepulse/internal/database"
	"sitepulse/internal/jobs"
	"sitepulse/internal/milestones"
	"sitepulse/internal/pkg/geoip"
	"sitepulse/internal/pkg/mailer"
)

// Application wraps cartridge.Application with sitepulse-specific components
type Application struct {
	*cartridge.Application
	DBManager *database.DBManager // Sitepulse-specific DB manager with migration methods
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := cartridge.NewLogger(cfg, nil)
	geoip.InitLogger(logger)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	checker := NewMilestoneChecker(cfg, logger)

	scheduler, err := jobs.NewScheduler(dbManager, checker, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jobs: %w", err)
	}

	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:            cfg,
		Logger:            logger,
		DBManager:         dbManager,
		RouteMountFunc:    MountAppRoutes,
		BackgroundWorkers: []cartridge.BackgroundWorker{scheduler},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return &Application{
		Application: app,
		DBManager:   dbManager,
	}, nil
}

// NewMilestoneChecker builds the milestone checker with the configured
// delivery backend. Without a Resend API key emails are logged and dropped.
func NewMilestoneChecker(cfg *config.Config, logger *slog.Logger) *milestones.Checker {
	var m mailer.Mailer
	if cfg.ResendAPIKey != "" {
		m = mailer.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom, logger)
	} else {
		m = mailer.NewNoopMailer(logger)
	}
	return milestones.NewChecker(m, logger)
}
