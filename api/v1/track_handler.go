package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"

	"sitepulse/internal/events"
	"sitepulse/internal/pkg/ratelimit"
)

const (
	errInvalidBody     = "Invalid request body"
	errTooManyRequests = "Too many requests"
	errInternal        = "Something went wrong"
)

// TrackPageViewHandler returns the ingestion endpoint handler. Each step can
// short-circuit with its own failure: rate limit, body parse, validation,
// storage. Internal failures return a correlation id instead of error detail;
// the detail goes to the server log under the same id.
func TrackPageViewHandler(limiter *ratelimit.Limiter) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		ip := getClientIP(ctx.Ctx)
		if !limiter.Allow(ip) {
			ctx.Logger.Debug("Rate limit exceeded", slog.String("ip", ip))
			return ctx.Status(http.StatusTooManyRequests).JSON(fiber.Map{
				"error": errTooManyRequests,
			})
		}

		var payload events.TrackPayload
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			ctx.Logger.Debug("Failed to parse track request", slog.Any("error", err))
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": errInvalidBody,
			})
		}

		if violations := events.ValidatePayload(&payload); len(violations) > 0 {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error":   "Validation failed",
				"details": violations,
			})
		}

		input := &events.CollectInput{
			Payload:   &payload,
			IPAddress: ip,
			UserAgent: userAgentFrom(ctx),
		}

		if _, err := events.CollectPageView(ctx.DBManager, ctx.Logger, input); err != nil {
			correlationID := uuid.NewString()
			ctx.Logger.Error("Failed to collect page view",
				slog.Any("error", err),
				slog.String("correlation_id", correlationID),
				slog.String("hostname", payload.Hostname))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error":          errInternal,
				"correlation_id": correlationID,
			})
		}

		return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
			"success": true,
		})
	}
}

// TrackBeaconHandler handles payloads sent via navigator.sendBeacon. Beacon
// responses are never read by the browser, so every outcome is a 202.
func TrackBeaconHandler(limiter *ratelimit.Limiter) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		ip := getClientIP(ctx.Ctx)
		if !limiter.Allow(ip) {
			return ctx.SendStatus(http.StatusAccepted)
		}

		var payload events.TrackPayload
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			ctx.Logger.Debug("Failed to parse beacon request", slog.Any("error", err))
			return ctx.SendStatus(http.StatusAccepted)
		}

		if violations := events.ValidatePayload(&payload); len(violations) > 0 {
			ctx.Logger.Debug("Invalid beacon payload", slog.Any("violations", violations))
			return ctx.SendStatus(http.StatusAccepted)
		}

		input := &events.CollectInput{
			Payload:   &payload,
			IPAddress: ip,
			UserAgent: userAgentFrom(ctx),
		}
		if _, err := events.CollectPageView(ctx.DBManager, ctx.Logger, input); err != nil {
			ctx.Logger.Error("Failed to collect beacon page view", slog.Any("error", err))
		}

		return ctx.SendStatus(http.StatusAccepted)
	}
}

func userAgentFrom(ctx *cartridge.Context) string {
	userAgent := ctx.Get("User-Agent")
	if forwarded := ctx.Get("X-Forwarded-User-Agent"); forwarded != "" {
		userAgent = forwarded
	}
	return userAgent
}
