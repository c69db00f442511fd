package v1

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"sitepulse/internal/analytics"
	"sitepulse/internal/events"
	"sitepulse/internal/milestones"
	"sitepulse/internal/pkg/ratelimit"
	"sitepulse/internal/timeframe"
	"sitepulse/internal/websites"
)

// errNotFound is deliberately the same for unknown tokens and tokens whose
// website is no longer public, so callers cannot probe token existence.
const errNotFound = "Not found"

type periodResponse struct {
	Days      int    `json:"days"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type analyticsResponse struct {
	Success  bool               `json:"success"`
	Hostname string             `json:"hostname"`
	Period   periodResponse     `json:"period"`
	Data     analytics.Snapshot `json:"data"`
}

// GetAnalyticsHandler returns the token-authenticated read API handler. The
// share token is accepted from the token query parameter or the X-Api-Key
// header.
func GetAnalyticsHandler(limiter *ratelimit.Limiter, checker *milestones.Checker) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		ip := getClientIP(ctx.Ctx)
		if !limiter.Allow(ip) {
			return ctx.Status(http.StatusTooManyRequests).JSON(fiber.Map{
				"error": errTooManyRequests,
			})
		}

		website, ok := resolveShareToken(ctx)
		if !ok {
			return ctx.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": errNotFound,
			})
		}

		if hostname := ctx.Query("hostname"); hostname != "" && hostname != website.Hostname {
			return ctx.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": errNotFound,
			})
		}

		days := ctx.QueryInt("days", timeframe.DefaultDays)
		report, err := analytics.BuildReport(ctx.DBManager.GetConnection(), website, days, time.Now().UTC(), analytics.Options{})
		if err != nil {
			ctx.Logger.Error("Failed to build analytics report",
				slog.Any("error", err),
				slog.String("hostname", website.Hostname))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": errInternal,
			})
		}

		triggerMilestoneCheck(ctx, checker, website)

		return ctx.Status(http.StatusOK).JSON(analyticsResponse{
			Success:  true,
			Hostname: report.Hostname,
			Period: periodResponse{
				Days:      report.Days,
				StartDate: report.StartDate.Format(time.RFC3339),
				EndDate:   report.EndDate.Format(time.RFC3339),
			},
			Data: report.Snapshot,
		})
	}
}

// resolveShareToken authenticates the request against the share token taken
// from the query string or the X-Api-Key header.
func resolveShareToken(ctx *cartridge.Context) (*websites.Website, bool) {
	token := ctx.Query("token")
	if token == "" {
		token = ctx.Get("X-Api-Key")
	}

	website, err := websites.GetWebsiteByShareToken(ctx.DBManager.GetConnection(), token)
	if err != nil {
		return nil, false
	}
	return website, true
}

// triggerMilestoneCheck runs a best-effort milestone evaluation after a read.
// Failures are logged and never surfaced to the caller.
func triggerMilestoneCheck(ctx *cartridge.Context, checker *milestones.Checker, website *websites.Website) {
	if checker == nil {
		return
	}

	db := ctx.DBManager.GetConnection()
	count, err := events.UniqueVisitorCount(db, website.ID)
	if err != nil {
		ctx.Logger.Error("Failed to count visitors for milestone check", slog.Any("error", err))
		return
	}
	if err := checker.Check(context.Background(), db, website, count); err != nil {
		ctx.Logger.Error("Milestone check failed", slog.Any("error", err))
	}
}
