package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"sitepulse/internal/analytics"
	"sitepulse/internal/events"
	"sitepulse/internal/milestones"
	"sitepulse/internal/timeframe"
	"sitepulse/internal/websites"
)

type sharePeriod struct {
	Days      int    `json:"days"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type shareResponse struct {
	Hostname string             `json:"hostname"`
	Period   sharePeriod        `json:"period"`
	Data     analytics.Snapshot `json:"data"`
}

// PublicDashboardHandler returns the public share endpoint. It serves a
// read-only 30-day snapshot for websites with sharing enabled. The not-found
// response is identical for unknown tokens and revoked ones.
func PublicDashboardHandler(checker *milestones.Checker) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		token := ctx.Params("token")
		if token == "" {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
		}

		db := ctx.DBManager.GetConnection()
		website, err := websites.GetWebsiteByShareToken(db, token)
		if err != nil {
			ctx.Logger.Debug("Public dashboard not found", slog.String("token", token))
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
		}

		// Cache public dashboards for 5 minutes - reduces DB load, CDN-friendly
		ctx.Set("Cache-Control", "public, max-age=300")

		now := time.Now().UTC()
		report, err := analytics.BuildReport(db, website, timeframe.MaxDays, now, analytics.Options{
			TopPagesLimit: analytics.DashboardTopPages,
		})
		if err != nil {
			ctx.Logger.Error("Error building public dashboard report", slog.Any("error", err))
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error loading dashboard",
			})
		}

		if checker != nil {
			if count, err := events.UniqueVisitorCount(db, website.ID); err == nil {
				if err := checker.Check(context.Background(), db, website, count); err != nil {
					ctx.Logger.Error("Milestone check failed", slog.Any("error", err))
				}
			}
		}

		return ctx.JSON(shareResponse{
			Hostname: website.Hostname,
			Period: sharePeriod{
				Days:      report.Days,
				StartDate: report.StartDate.Format(time.RFC3339),
				EndDate:   report.EndDate.Format(time.RFC3339),
			},
			Data: report.Snapshot,
		})
	}
}
