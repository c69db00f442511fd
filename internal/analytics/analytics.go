package analytics

import (
	"math"
	"sort"
	"time"

	"sitepulse/internal/events"
	"sitepulse/internal/pkg/referrers"
)

// Defaults for snapshot computation.
const (
	DefaultTopPagesLimit  = 10
	DashboardTopPages     = 5
	DefaultRealtimeWindow = 5 * time.Minute
)

// unknownVisitorKey is the shared bucket for page views without a visitor id.
const unknownVisitorKey = "unknown"

// Options tunes a snapshot computation.
type Options struct {
	TopPagesLimit  int
	RealtimeWindow time.Duration
}

func (o Options) withDefaults() Options {
	if o.TopPagesLimit <= 0 {
		o.TopPagesLimit = DefaultTopPagesLimit
	}
	if o.RealtimeWindow <= 0 {
		o.RealtimeWindow = DefaultRealtimeWindow
	}
	return o
}

// DayTraffic is one calendar day's traffic. Days with no events are omitted
// from the series, not zero-filled.
type DayTraffic struct {
	Date      string `json:"date"`
	Visitors  int    `json:"visitors"`
	PageViews int    `json:"page_views"`
}

// PageStat is an aggregate for a single path.
type PageStat struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Views    int    `json:"views"`
	Visitors int    `json:"visitors"`
}

// BreakdownStat is a counted bucket with its share of the total. Percentages
// are rounded independently and may not sum to exactly 100.
type BreakdownStat struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// Snapshot is the full set of metrics for one website and time window.
type Snapshot struct {
	UniqueVisitors   int             `json:"unique_visitors"`
	TotalPageViews   int             `json:"total_page_views"`
	TrafficByDay     []DayTraffic    `json:"traffic_by_day"`
	TopPages         []PageStat      `json:"top_pages"`
	Devices          []BreakdownStat `json:"devices"`
	Browsers         []BreakdownStat `json:"browsers"`
	TrafficSources   []BreakdownStat `json:"traffic_sources"`
	Countries        []BreakdownStat `json:"countries"`
	RealtimeVisitors int             `json:"realtime_visitors"`
}

// Compute builds a Snapshot from page views already scoped to one website and
// time window. It is pure: no database, no global state, and the only clock
// it sees is the now argument (used for the realtime window). Empty input
// yields zero counts and empty slices.
func Compute(pageViews []events.PageView, now time.Time, opts Options) Snapshot {
	opts = opts.withDefaults()

	snapshot := Snapshot{
		TrafficByDay:   []DayTraffic{},
		TopPages:       []PageStat{},
		Devices:        []BreakdownStat{},
		Browsers:       []BreakdownStat{},
		TrafficSources: []BreakdownStat{},
		Countries:      []BreakdownStat{},
	}
	if len(pageViews) == 0 {
		return snapshot
	}

	snapshot.TotalPageViews = len(pageViews)
	snapshot.UniqueVisitors = uniqueVisitors(pageViews)
	snapshot.TrafficByDay = trafficByDay(pageViews)
	snapshot.TopPages = topPages(pageViews, opts.TopPagesLimit)
	snapshot.Devices = deviceBreakdown(pageViews)
	snapshot.Browsers = percentageBreakdown(pageViews, func(pv events.PageView) string {
		return pv.Browser
	})
	snapshot.TrafficSources = percentageBreakdown(pageViews, func(pv events.PageView) string {
		return referrers.Classify(pv.Referrer)
	})
	snapshot.Countries = percentageBreakdown(pageViews, func(pv events.PageView) string {
		return countryName(pv.Country)
	})
	snapshot.RealtimeVisitors = realtimeVisitors(pageViews, now, opts.RealtimeWindow)

	return snapshot
}

// visitorKey buckets page views without a visitor id together.
func visitorKey(pv events.PageView) string {
	if pv.VisitorID == nil || *pv.VisitorID == "" {
		return unknownVisitorKey
	}
	return *pv.VisitorID
}

func uniqueVisitors(pageViews []events.PageView) int {
	seen := make(map[string]struct{}, len(pageViews))
	for _, pv := range pageViews {
		seen[visitorKey(pv)] = struct{}{}
	}
	return len(seen)
}

func trafficByDay(pageViews []events.PageView) []DayTraffic {
	type dayBucket struct {
		visitors  map[string]struct{}
		pageViews int
	}

	buckets := make(map[string]*dayBucket)
	var order []string

	for _, pv := range pageViews {
		// Day boundaries are UTC for the whole series.
		day := pv.CreatedAt.UTC().Format("2006-01-02")
		bucket, ok := buckets[day]
		if !ok {
			bucket = &dayBucket{visitors: make(map[string]struct{})}
			buckets[day] = bucket
			order = append(order, day)
		}
		bucket.visitors[visitorKey(pv)] = struct{}{}
		bucket.pageViews++
	}

	result := make([]DayTraffic, 0, len(order))
	for _, day := range order {
		result = append(result, DayTraffic{
			Date:      day,
			Visitors:  len(buckets[day].visitors),
			PageViews: buckets[day].pageViews,
		})
	}

	// Input order is usually chronological already; sorting the ISO date
	// strings guarantees it.
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})

	return result
}

func topPages(pageViews []events.PageView, limit int) []PageStat {
	type pageBucket struct {
		title    string
		views    int
		visitors map[string]struct{}
	}

	buckets := make(map[string]*pageBucket)
	var order []string

	for _, pv := range pageViews {
		bucket, ok := buckets[pv.Path]
		if !ok {
			bucket = &pageBucket{visitors: make(map[string]struct{})}
			buckets[pv.Path] = bucket
			order = append(order, pv.Path)
		}
		if bucket.title == "" && pv.PageTitle != "" {
			bucket.title = pv.PageTitle
		}
		bucket.views++
		bucket.visitors[visitorKey(pv)] = struct{}{}
	}

	result := make([]PageStat, 0, len(order))
	for _, path := range order {
		bucket := buckets[path]
		title := bucket.title
		if title == "" {
			title = path
		}
		result = append(result, PageStat{
			Path:     path,
			Title:    title,
			Views:    bucket.views,
			Visitors: len(bucket.visitors),
		})
	}

	// Stable sort so ties keep first-seen order.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Views > result[j].Views
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

func deviceBreakdown(pageViews []events.PageView) []BreakdownStat {
	return percentageBreakdown(pageViews, func(pv events.PageView) string {
		if pv.Device == "" {
			return "Desktop"
		}
		return pv.Device
	})
}

// percentageBreakdown groups page views by key, counting and computing the
// rounded integer share of the total. Buckets keep first-seen order with ties
// unchanged after the stable sort by count.
func percentageBreakdown(pageViews []events.PageView, key func(events.PageView) string) []BreakdownStat {
	counts := make(map[string]int)
	var order []string

	for _, pv := range pageViews {
		k := key(pv)
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	total := len(pageViews)
	result := make([]BreakdownStat, 0, len(order))
	for _, name := range order {
		count := counts[name]
		result = append(result, BreakdownStat{
			Name:       name,
			Count:      count,
			Percentage: int(math.Round(float64(count) / float64(total) * 100)),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	return result
}

func realtimeVisitors(pageViews []events.PageView, now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	seen := make(map[string]struct{})
	for _, pv := range pageViews {
		if pv.CreatedAt.Before(cutoff) {
			continue
		}
		seen[visitorKey(pv)] = struct{}{}
	}
	return len(seen)
}
