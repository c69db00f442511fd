package useragent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sitepulse/internal/pkg/useragent"
)

const (
	chromeDesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	safariMacUA     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"
	firefoxUA       = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	edgeUA          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edge/120.0.0.0"
	iphoneUA        = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	ipadUA          = "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/604.1"
	googlebotUA     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		device    string
	}{
		{"Desktop Chrome", chromeDesktopUA, useragent.DeviceDesktop},
		{"iPhone is Mobile", iphoneUA, useragent.DeviceMobile},
		{"iPad is Tablet", ipadUA, useragent.DeviceTablet},
		{"Empty UA defaults to Desktop", "", useragent.DeviceDesktop},
		{"Mobile token wins over tablet token", "SomeBrowser Tablet Mobile/1.0", useragent.DeviceMobile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.device, useragent.Classify(tt.userAgent).Device)
		})
	}
}

func TestClassifyBrowser(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		browser   string
	}{
		{"Chrome excludes Edge", chromeDesktopUA, useragent.BrowserChrome},
		{"Safari excludes Chrome", safariMacUA, useragent.BrowserSafari},
		{"Firefox", firefoxUA, useragent.BrowserFirefox},
		{"Edge", edgeUA, useragent.BrowserEdge},
		{"Unknown falls back to Other", "curl/8.0.1", useragent.BrowserOther},
		{"Empty UA is Other", "", useragent.BrowserOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.browser, useragent.Classify(tt.userAgent).Browser)
		})
	}
}

func TestClassifyBot(t *testing.T) {
	assert.True(t, useragent.Classify(googlebotUA).Bot)
	assert.True(t, useragent.Classify("my-crawler/1.0").Bot)
	assert.True(t, useragent.Classify("WebSpider 2.0").Bot)
	assert.True(t, useragent.Classify("page-scraper").Bot)
	assert.False(t, useragent.Classify(chromeDesktopUA).Bot)
}

func TestClassifyIsPure(t *testing.T) {
	first := useragent.Classify(iphoneUA)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, useragent.Classify(iphoneUA))
	}
}
