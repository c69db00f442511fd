package events

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"sitepulse/internal/pkg/geoip"
	"sitepulse/internal/pkg/useragent"
	"sitepulse/internal/websites"
)

// CollectInput defines the request data needed to record a page view.
type CollectInput struct {
	Payload   *TrackPayload
	IPAddress string
	UserAgent string
	Timestamp time.Time
}

// CollectPageView resolves the website for the payload hostname, creating an
// unowned record on first contact, classifies the user agent and stores the
// page view. The payload is assumed to be validated; string fields are still
// truncated to their storage ceilings before persistence.
func CollectPageView(dbManager cartridge.DBManager, logger *slog.Logger, input *CollectInput) (*PageView, error) {
	db := dbManager.GetConnection()

	hostname := strings.ToLower(strings.TrimSpace(input.Payload.Hostname))
	website, err := websites.GetOrCreateByHostname(db, hostname)
	if err != nil {
		logger.Error("Failed to resolve website", slog.Any("error", err), slog.String("hostname", hostname))
		return nil, fmt.Errorf("failed to resolve website: %w", err)
	}

	ua := useragent.Classify(input.UserAgent)
	if ua.Bot {
		logger.Debug("Bot user agent detected", slog.String("user_agent", input.UserAgent))
	}

	path := input.Payload.Path
	if path == "" {
		path = "/"
	}

	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	pageView := &PageView{
		WebsiteID: website.ID,
		Hostname:  truncate(hostname, MaxHostnameLength),
		Path:      truncate(path, MaxPathLength),
		PageTitle: truncate(input.Payload.PageTitle, MaxPageTitleLength),
		Referrer:  truncate(input.Payload.Referrer, MaxReferrerLength),
		VisitorID: input.Payload.VisitorID,
		SessionID: input.Payload.SessionID,
		Device:    ua.Device,
		Browser:   ua.Browser,
		Country:   geoip.CountryFromIP(input.IPAddress),
		UserAgent: truncate(input.UserAgent, MaxUserAgentLength),
		Bot:       ua.Bot,
		CreatedAt: timestamp,
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(pageView).Error
	})
	if err != nil {
		logger.Error("Failed to store page view", slog.Any("error", err))
		return nil, fmt.Errorf("failed to store page view: %w", err)
	}

	return pageView, nil
}
