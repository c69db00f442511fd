package v1

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"sitepulse/internal/analytics"
	"sitepulse/internal/milestones"
	"sitepulse/internal/pkg/ratelimit"
	"sitepulse/internal/timeframe"
	"sitepulse/internal/websites"
)

type webhookParams struct {
	Token      string `json:"token"`
	WebhookURL string `json:"webhookUrl"`
	Days       int    `json:"days"`
}

var webhookClient = &http.Client{Timeout: 15 * time.Second}

// RelayWebhookHandler returns the webhook relay handler. It computes the
// same snapshot envelope as the read API and forwards it to the caller's
// webhook URL. Upstream failures surface as a delivery error carrying the
// upstream status code.
func RelayWebhookHandler(limiter *ratelimit.Limiter, checker *milestones.Checker) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		ip := getClientIP(ctx.Ctx)
		if !limiter.Allow(ip) {
			return ctx.Status(http.StatusTooManyRequests).JSON(fiber.Map{
				"error": errTooManyRequests,
			})
		}

		var params webhookParams
		if err := json.Unmarshal(ctx.Body(), &params); err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": errInvalidBody,
			})
		}

		if !isWebhookURL(params.WebhookURL) {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "webhookUrl must be a valid http or https URL",
			})
		}

		website, err := websiteForToken(ctx, params.Token)
		if err != nil {
			return ctx.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": errNotFound,
			})
		}

		days := params.Days
		if days == 0 {
			days = timeframe.DefaultDays
		}

		report, err := analytics.BuildReport(ctx.DBManager.GetConnection(), website, days, time.Now().UTC(), analytics.Options{})
		if err != nil {
			ctx.Logger.Error("Failed to build webhook report",
				slog.Any("error", err),
				slog.String("hostname", website.Hostname))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": errInternal,
			})
		}

		body, err := json.Marshal(analyticsResponse{
			Success:  true,
			Hostname: report.Hostname,
			Period: periodResponse{
				Days:      report.Days,
				StartDate: report.StartDate.Format(time.RFC3339),
				EndDate:   report.EndDate.Format(time.RFC3339),
			},
			Data: report.Snapshot,
		})
		if err != nil {
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": errInternal,
			})
		}

		resp, err := webhookClient.Post(params.WebhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			ctx.Logger.Error("Webhook delivery failed",
				slog.Any("error", err),
				slog.String("webhook_url", params.WebhookURL))
			return ctx.Status(http.StatusBadGateway).JSON(fiber.Map{
				"error": "delivery failed",
			})
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			ctx.Logger.Warn("Webhook target rejected delivery",
				slog.Int("upstream_status", resp.StatusCode),
				slog.String("webhook_url", params.WebhookURL))
			return ctx.Status(http.StatusBadGateway).JSON(fiber.Map{
				"error":           "delivery failed",
				"upstream_status": resp.StatusCode,
			})
		}

		triggerMilestoneCheck(ctx, checker, website)

		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"success":         true,
			"delivered":       true,
			"upstream_status": resp.StatusCode,
		})
	}
}

func websiteForToken(ctx *cartridge.Context, token string) (*websites.Website, error) {
	return websites.GetWebsiteByShareToken(ctx.DBManager.GetConnection(), token)
}

func isWebhookURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
