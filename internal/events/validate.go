package events

import (
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"go.elara.ws/pcre"
)

// TrackPayload is the decoded body of a tracking request.
type TrackPayload struct {
	Hostname  string  `json:"hostname"`
	Path      string  `json:"path"`
	PageTitle string  `json:"pageTitle"`
	Referrer  string  `json:"referrer"`
	VisitorID *string `json:"visitorId"`
	SessionID *string `json:"sessionId"`
}

// Labels and segments per RFC 1123; total length is checked separately.
var hostnamePattern = pcre.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidatePayload checks a decoded tracking payload and returns every rule it
// violates, not just the first. An empty slice means the payload is valid.
func ValidatePayload(p *TrackPayload) []string {
	var violations []string

	hostname := strings.TrimSpace(p.Hostname)
	switch {
	case hostname == "":
		violations = append(violations, "hostname is required")
	case len(hostname) > MaxHostnameLength:
		violations = append(violations, fmt.Sprintf("hostname must be at most %d characters", MaxHostnameLength))
	case !isValidHostname(hostname):
		violations = append(violations, "hostname must be a valid DNS name or IPv4 address")
	}

	if len(p.Path) > MaxPathLength {
		violations = append(violations, fmt.Sprintf("path must be at most %d characters", MaxPathLength))
	}
	if len(p.PageTitle) > MaxPageTitleLength {
		violations = append(violations, fmt.Sprintf("pageTitle must be at most %d characters", MaxPageTitleLength))
	}
	if len(p.Referrer) > MaxReferrerLength {
		violations = append(violations, fmt.Sprintf("referrer must be at most %d characters", MaxReferrerLength))
	}

	if p.VisitorID != nil && !isUUID(*p.VisitorID) {
		violations = append(violations, "visitorId must be a valid UUID")
	}
	if p.SessionID != nil && !isUUID(*p.SessionID) {
		violations = append(violations, "sessionId must be a valid UUID")
	}

	return violations
}

func isValidHostname(hostname string) bool {
	if ip := net.ParseIP(hostname); ip != nil && ip.To4() != nil {
		return true
	}
	return hostnamePattern.MatchString(hostname)
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
