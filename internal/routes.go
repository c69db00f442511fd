package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"

	v1 "sitepulse/api/v1"
	"sitepulse/internal/config"
	"sitepulse/internal/http"
	"sitepulse/internal/pkg/ratelimit"
)

// publicCORSConfig returns the standard CORS configuration for public endpoints.
// All public endpoints share this permissive CORS setup for cross-origin access.
var publicCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent, X-Api-Key",
}

// MountAppRoutes mounts all application routes using cartridge's route API.
// The rate limiters live for the whole process and are shared by every
// request to their endpoint group.
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()
	logger := srv.GetLogger()

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	ingestLimiter := ratelimit.New(cfg.IngestRateLimitMax, window)
	apiLimiter := ratelimit.New(cfg.APIRateLimitMax, window)

	checker := NewMilestoneChecker(cfg, logger)

	// Ingestion and read API endpoints need CORS for cross-origin browser
	// calls; rate limiting happens inside the handlers where the limiter and
	// its keying are explicit.
	publicAPIConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		WriteConcurrency: false,
		CORSConfig:       publicCORSConfig,
	}

	sdkConfig := &cartridge.RouteConfig{
		EnableCORS: true,
		CORSConfig: publicCORSConfig,
	}

	noContent := func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}

	// === ROOT ROUTES ===
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === PUBLIC DASHBOARD SHARING ===
	srv.Get("/share/:token", http.PublicDashboardHandler(checker))

	// === PUBLIC API ROUTES ===
	srv.Post("/x/api/v1/track", v1.TrackPageViewHandler(ingestLimiter), publicAPIConfig)
	srv.Options("/x/api/v1/track", noContent, publicAPIConfig)
	srv.Post("/x/api/v1/track/beacon", v1.TrackBeaconHandler(ingestLimiter), publicAPIConfig)
	srv.Options("/x/api/v1/track/beacon", noContent, publicAPIConfig)

	srv.Get("/x/api/v1/analytics", v1.GetAnalyticsHandler(apiLimiter, checker), publicAPIConfig)
	srv.Options("/x/api/v1/analytics", noContent, publicAPIConfig)
	srv.Post("/x/api/v1/webhook", v1.RelayWebhookHandler(apiLimiter, checker), publicAPIConfig)
	srv.Options("/x/api/v1/webhook", noContent, publicAPIConfig)

	// === SDK ROUTES ===
	srv.Get("/y/api/v1/pulse.js", v1.GetSnippetAction, sdkConfig)
}
