// Package useragent derives a device class and browser family from a raw
// User-Agent header.
package useragent

import (
	"strings"

	"go.elara.ws/pcre"
)

// Device classes
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
)

// Browser families
const (
	BrowserChrome  = "Chrome"
	BrowserSafari  = "Safari"
	BrowserFirefox = "Firefox"
	BrowserEdge    = "Edge"
	BrowserOther   = "Other"
)

// UserAgent holds the classification of one User-Agent string.
type UserAgent struct {
	Device  string
	Browser string
	Bot     bool
}

var (
	mobileRegex  = pcre.MustCompile(`(?i)mobile`)
	tabletRegex  = pcre.MustCompile(`(?i)tablet|ipad`)
	chromeRegex  = pcre.MustCompile(`(?i)chrome`)
	safariRegex  = pcre.MustCompile(`(?i)safari`)
	firefoxRegex = pcre.MustCompile(`(?i)firefox`)
	edgeRegex    = pcre.MustCompile(`(?i)edge`)
)

// Bot-like tokens. Matches are recorded for observability but never rejected;
// bot traffic is stored like any other visit.
var botTokens = []string{"bot", "crawler", "spider", "scraper"}

// Classify derives device class and browser family from a raw User-Agent
// string. The mobile pattern is checked before the tablet pattern, so a UA
// matching both is classified Mobile; Desktop is the default. Classification
// is pure: it never fails, and the same input always yields the same output.
func Classify(userAgent string) UserAgent {
	device := DeviceDesktop
	if mobileRegex.MatchString(userAgent) {
		device = DeviceMobile
	} else if tabletRegex.MatchString(userAgent) {
		device = DeviceTablet
	}

	// First match wins: Chrome UAs also contain "Safari", and Edge UAs
	// contain "Chrome", hence the exclusions.
	browser := BrowserOther
	switch {
	case chromeRegex.MatchString(userAgent) && !edgeRegex.MatchString(userAgent):
		browser = BrowserChrome
	case safariRegex.MatchString(userAgent) && !chromeRegex.MatchString(userAgent):
		browser = BrowserSafari
	case firefoxRegex.MatchString(userAgent):
		browser = BrowserFirefox
	case edgeRegex.MatchString(userAgent):
		browser = BrowserEdge
	}

	return UserAgent{
		Device:  device,
		Browser: browser,
		Bot:     isBot(userAgent),
	}
}

func isBot(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	for _, token := range botTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
