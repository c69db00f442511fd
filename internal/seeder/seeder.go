package seeder

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"

	"sitepulse/internal/events"
	"sitepulse/internal/websites"
)

// Seeder generates realistic sample traffic for local development and demos.
type Seeder struct {
	DBManager cartridge.DBManager
	Logger    *slog.Logger
	PageViews int
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, pageViews int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager: dbManager,
		Logger:    logger,
		PageViews: pageViews,
	}
}

var seedPages = []struct {
	path  string
	title string
}{
	{"/", "Home"},
	{"/pricing", "Pricing"},
	{"/docs", "Documentation"},
	{"/docs/getting-started", "Getting Started"},
	{"/blog", "Blog"},
	{"/blog/launch", "We launched!"},
	{"/about", "About"},
}

var seedReferrers = []string{
	"",
	"",
	"https://www.google.com/search?q=analytics",
	"https://twitter.com/somebody/status/1",
	"https://www.linkedin.com/feed/",
	"https://news.ycombinator.com/item?id=1234",
	"https://github.com/some/repo",
}

var seedUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Safari/604.1",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
}

// Run seeds a default demo website with traffic.
func (s *Seeder) Run(ctx context.Context) error {
	return s.SeedHostname(ctx, "demo.sitepulse.local")
}

// SeedHostname seeds the given hostname with generated page views, creating
// the website if needed. Traffic is spread over the trailing thirty days with
// a pool of recurring visitors.
func (s *Seeder) SeedHostname(ctx context.Context, hostname string) error {
	start := time.Now()
	s.Logger.Info("Seeding website",
		slog.String("hostname", hostname),
		slog.Int("page_views", s.PageViews))

	db := s.DBManager.GetConnection()

	website, err := websites.GetOrCreateByHostname(db, hostname)
	if err != nil {
		return fmt.Errorf("failed to resolve website: %w", err)
	}

	// Recurring visitor pool roughly one tenth the size of the traffic.
	poolSize := s.PageViews/10 + 1
	visitorPool := make([]string, poolSize)
	for i := range visitorPool {
		visitorPool[i] = uuid.NewString()
	}

	now := time.Now().UTC()
	for i := 0; i < s.PageViews; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		page := seedPages[rand.IntN(len(seedPages))]
		visitorID := visitorPool[rand.IntN(len(visitorPool))]
		sessionID := uuid.NewString()
		createdAt := now.Add(-time.Duration(rand.IntN(30*24*60)) * time.Minute)

		input := &events.CollectInput{
			Payload: &events.TrackPayload{
				Hostname:  hostname,
				Path:      page.path,
				PageTitle: page.title,
				Referrer:  seedReferrers[rand.IntN(len(seedReferrers))],
				VisitorID: &visitorID,
				SessionID: &sessionID,
			},
			IPAddress: fmt.Sprintf("203.0.113.%d", rand.IntN(254)+1),
			UserAgent: seedUserAgents[rand.IntN(len(seedUserAgents))],
			Timestamp: createdAt,
		}

		if _, err := events.CollectPageView(s.DBManager, s.Logger, input); err != nil {
			return fmt.Errorf("failed to seed page view %d: %w", i, err)
		}
	}

	s.Logger.Info("Seeding completed",
		slog.String("hostname", website.Hostname),
		slog.Int("page_views", s.PageViews),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
