package events

import (
	"time"
)

// Storage ceilings applied to free-text fields before persistence. Values
// longer than these are truncated, not rejected.
const (
	MaxHostnameLength  = 253
	MaxPathLength      = 2048
	MaxReferrerLength  = 2048
	MaxPageTitleLength = 500
	MaxUserAgentLength = 500
)

// PageView is a single tracked page view as stored.
type PageView struct {
	ID        uint   `gorm:"primaryKey"`
	WebsiteID uint   `gorm:"index"`
	Hostname  string `gorm:"index"`
	Path      string `gorm:"index"`
	PageTitle string
	Referrer  string
	VisitorID *string `gorm:"index"`
	SessionID *string `gorm:"index"`
	Device    string
	Browser   string
	Country   string
	UserAgent string
	Bot       bool      `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`
}

// truncate caps s at max characters.
func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
