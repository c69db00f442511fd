// Package referrers buckets referrer URLs into traffic sources.
package referrers

import (
	_ "embed"
	"log"
	"net/url"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Traffic source buckets
const (
	SourceDirect   = "Direct"
	SourceSearch   = "Organic Search"
	SourceSocial   = "Social Media"
	SourceReferral = "Referral"
)

//go:embed sources.yml
var sourcesFile []byte

// sourceConfig holds the hostname substring sets loaded from sources.yml.
type sourceConfig struct {
	Search []string `yaml:"search"`
	Social []string `yaml:"social"`
}

var (
	config sourceConfig
	once   sync.Once
)

func getConfig() *sourceConfig {
	once.Do(func() {
		if err := yaml.Unmarshal(sourcesFile, &config); err != nil {
			log.Fatalf("referrers: failed to parse sources.yml: %v", err)
		}
	})
	return &config
}

// Classify buckets a raw referrer string into a traffic source. An empty or
// unparsable referrer is Direct. Matching is substring-on-hostname rather
// than suffix or domain-exact matching; that imprecision is deliberate and
// mirrors what the dashboard reports.
func Classify(referrer string) string {
	if referrer == "" {
		return SourceDirect
	}

	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Hostname() == "" {
		return SourceDirect
	}
	hostname := strings.ToLower(parsed.Hostname())

	cfg := getConfig()
	for _, token := range cfg.Search {
		if strings.Contains(hostname, token) {
			return SourceSearch
		}
	}
	for _, token := range cfg.Social {
		if strings.Contains(hostname, token) {
			return SourceSocial
		}
	}

	return SourceReferral
}
