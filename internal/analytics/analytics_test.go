package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/internal/events"
)

func strPtr(s string) *string { return &s }

func pageView(visitorID, path string, createdAt time.Time) events.PageView {
	pv := events.PageView{
		Path:      path,
		Device:    "Desktop",
		Browser:   "Chrome",
		CreatedAt: createdAt,
	}
	if visitorID != "" {
		pv.VisitorID = strPtr(visitorID)
	}
	return pv
}

func TestComputeEmptyInput(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snapshot := Compute(nil, now, Options{})

	assert.Equal(t, 0, snapshot.UniqueVisitors)
	assert.Equal(t, 0, snapshot.TotalPageViews)
	assert.Equal(t, 0, snapshot.RealtimeVisitors)
	assert.Empty(t, snapshot.TrafficByDay)
	assert.Empty(t, snapshot.TopPages)
	assert.Empty(t, snapshot.Devices)
	assert.Empty(t, snapshot.Browsers)
	assert.Empty(t, snapshot.TrafficSources)
	assert.NotNil(t, snapshot.TopPages)
	assert.NotNil(t, snapshot.TrafficByDay)
}

func TestComputeUniqueVisitors(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("distinct ids counted once", func(t *testing.T) {
		input := []events.PageView{
			pageView("v1", "/", now),
			pageView("v1", "/about", now),
			pageView("v2", "/", now),
		}
		assert.Equal(t, 2, Compute(input, now, Options{}).UniqueVisitors)
	})

	t.Run("missing visitor ids share one bucket", func(t *testing.T) {
		input := []events.PageView{
			pageView("", "/", now),
			pageView("", "/about", now),
			pageView("v1", "/", now),
		}
		assert.Equal(t, 2, Compute(input, now, Options{}).UniqueVisitors)
	})
}

func TestComputeTrafficByDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day1 := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	day3 := time.Date(2026, 3, 3, 0, 15, 0, 0, time.UTC)

	input := []events.PageView{
		pageView("v1", "/", day3),
		pageView("v1", "/", day1),
		pageView("v2", "/", day1),
		pageView("v1", "/about", day1),
	}

	series := Compute(input, now, Options{}).TrafficByDay

	// March 2 has no events and is omitted, not zero-filled.
	require.Len(t, series, 2)
	assert.Equal(t, "2026-03-01", series[0].Date)
	assert.Equal(t, 2, series[0].Visitors)
	assert.Equal(t, 3, series[0].PageViews)
	assert.Equal(t, "2026-03-03", series[1].Date)
	assert.Equal(t, 1, series[1].Visitors)
	assert.Equal(t, 1, series[1].PageViews)
}

func TestComputeTrafficByDayUsesUTCBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	est := time.FixedZone("EST", -5*3600)
	// 23:00 EST on March 1 is 04:00 UTC on March 2.
	input := []events.PageView{
		pageView("v1", "/", time.Date(2026, 3, 1, 23, 0, 0, 0, est)),
	}

	series := Compute(input, now, Options{}).TrafficByDay
	require.Len(t, series, 1)
	assert.Equal(t, "2026-03-02", series[0].Date)
}

func TestComputeTopPages(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ties keep first seen order", func(t *testing.T) {
		var input []events.PageView
		// /b and /c both get 3 views, /a gets 2; /b appears first.
		for i := 0; i < 3; i++ {
			input = append(input, pageView(fmt.Sprintf("v%d", i), "/b", now))
		}
		for i := 0; i < 3; i++ {
			input = append(input, pageView(fmt.Sprintf("v%d", i), "/c", now))
		}
		for i := 0; i < 2; i++ {
			input = append(input, pageView(fmt.Sprintf("v%d", i), "/a", now))
		}

		pages := Compute(input, now, Options{}).TopPages
		require.Len(t, pages, 3)
		assert.Equal(t, "/b", pages[0].Path)
		assert.Equal(t, "/c", pages[1].Path)
		assert.Equal(t, "/a", pages[2].Path)
	})

	t.Run("title falls back to path", func(t *testing.T) {
		untitled := pageView("v1", "/pricing", now)
		titled := pageView("v2", "/pricing", now)
		titled.PageTitle = "Pricing"

		pages := Compute([]events.PageView{untitled, titled}, now, Options{}).TopPages
		require.Len(t, pages, 1)
		// First non-empty title wins; absent any, the path stands in.
		assert.Equal(t, "Pricing", pages[0].Title)
		assert.Equal(t, 2, pages[0].Views)
		assert.Equal(t, 2, pages[0].Visitors)

		pages = Compute([]events.PageView{untitled}, now, Options{}).TopPages
		require.Len(t, pages, 1)
		assert.Equal(t, "/pricing", pages[0].Title)
	})

	t.Run("limit truncates", func(t *testing.T) {
		var input []events.PageView
		for i := 0; i < 8; i++ {
			input = append(input, pageView("v1", fmt.Sprintf("/page-%d", i), now))
		}

		pages := Compute(input, now, Options{TopPagesLimit: DashboardTopPages}).TopPages
		assert.Len(t, pages, 5)

		pages = Compute(input, now, Options{}).TopPages
		assert.Len(t, pages, 8)
	})
}

func TestComputeDeviceBreakdown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mobile := pageView("v1", "/", now)
	mobile.Device = "Mobile"
	unclassified := pageView("v2", "/", now)
	unclassified.Device = ""
	desktop := pageView("v3", "/", now)

	devices := Compute([]events.PageView{mobile, unclassified, desktop}, now, Options{}).Devices
	require.Len(t, devices, 2)
	assert.Equal(t, "Desktop", devices[0].Name)
	assert.Equal(t, 2, devices[0].Count)
	assert.Equal(t, "Mobile", devices[1].Name)
	assert.Equal(t, 1, devices[1].Count)
}

func TestComputeBrowserPercentages(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var input []events.PageView
	for i := 0; i < 2; i++ {
		pv := pageView("v1", "/", now)
		pv.Browser = "Chrome"
		input = append(input, pv)
	}
	pv := pageView("v2", "/", now)
	pv.Browser = "Firefox"
	input = append(input, pv)

	browsers := Compute(input, now, Options{}).Browsers
	require.Len(t, browsers, 2)
	assert.Equal(t, "Chrome", browsers[0].Name)
	assert.Equal(t, 2, browsers[0].Count)
	assert.Equal(t, 67, browsers[0].Percentage)
	assert.Equal(t, "Firefox", browsers[1].Name)
	assert.Equal(t, 33, browsers[1].Percentage)
}

func TestComputeTrafficSources(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	google := pageView("v1", "/", now)
	google.Referrer = "https://www.google.com/search?q=sitepulse"
	social := pageView("v2", "/", now)
	social.Referrer = "https://twitter.com/status/1"
	direct := pageView("v3", "/", now)
	other := pageView("v4", "/", now)
	other.Referrer = "https://news.ycombinator.com/item?id=1"

	sources := Compute([]events.PageView{google, social, direct, other}, now, Options{}).TrafficSources
	require.Len(t, sources, 4)

	byName := make(map[string]BreakdownStat)
	for _, s := range sources {
		byName[s.Name] = s
	}
	assert.Equal(t, 1, byName["Organic Search"].Count)
	assert.Equal(t, 1, byName["Social Media"].Count)
	assert.Equal(t, 1, byName["Direct"].Count)
	assert.Equal(t, 1, byName["Referral"].Count)
	assert.Equal(t, 25, byName["Direct"].Percentage)
}

func TestComputeRealtimeVisitors(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	input := []events.PageView{
		pageView("v1", "/", now.Add(-1*time.Minute)),
		pageView("v1", "/about", now.Add(-2*time.Minute)),
		pageView("v2", "/", now.Add(-5*time.Minute)), // exactly on the boundary
		pageView("v3", "/", now.Add(-6*time.Minute)),
	}

	snapshot := Compute(input, now, Options{})
	assert.Equal(t, 2, snapshot.RealtimeVisitors)
	assert.Equal(t, 3, snapshot.UniqueVisitors)
}

func TestComputeCountryNames(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	us := pageView("v1", "/", now)
	us.Country = "US"
	unknown := pageView("v2", "/", now)
	unknown.Country = "Unknown"

	countries := Compute([]events.PageView{us, unknown}, now, Options{}).Countries
	require.Len(t, countries, 2)

	byName := make(map[string]int)
	for _, c := range countries {
		byName[c.Name] = c.Count
	}
	assert.Equal(t, 1, byName["United States"])
	assert.Equal(t, 1, byName["Unknown"])
}
