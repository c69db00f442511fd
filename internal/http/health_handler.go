package http

import (
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
	healthError    = "error"
)

// healthReport is the body served by the health endpoint. The service stays
// "ok" only while the event store answers a ping; any database problem
// degrades the whole report.
type healthReport struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	CheckedAt time.Time `json:"checked_at"`
}

// HealthIndexAction reports service liveness and event-store reachability.
func HealthIndexAction(ctx *cartridge.Context) error {
	store := healthOK

	db := ctx.DBManager.GetConnection()
	if db == nil {
		store = healthError
		ctx.Logger.Error("Event store connection unavailable")
	} else if sqlDB, err := db.DB(); err != nil {
		store = healthError
		ctx.Logger.Error("Event store handle error", slog.Any("error", err))
	} else if err := sqlDB.Ping(); err != nil {
		store = healthError
		ctx.Logger.Error("Event store ping failed", slog.Any("error", err))
	}

	report := healthReport{
		Status:    healthOK,
		Store:     store,
		CheckedAt: time.Now().UTC(),
	}
	if store != healthOK {
		report.Status = healthDegraded
	}

	return ctx.JSON(report)
}
