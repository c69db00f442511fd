package analytics

import (
	"sync"

	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sitepulse/internal/pkg/geoip"
)

var (
	countryQueryOnce sync.Once
	countryQuery     *gountries.Query
)

// countryName resolves an ISO alpha-2 code to its common English name. Codes
// the dataset does not know are upper-cased and passed through.
func countryName(code string) string {
	if code == "" || code == geoip.UnknownCountry {
		return geoip.UnknownCountry
	}

	countryQueryOnce.Do(func() {
		countryQuery = gountries.New()
	})

	country, err := countryQuery.FindCountryByAlpha(code)
	if err != nil {
		return cases.Upper(language.AmericanEnglish).String(code)
	}
	return country.Name.Common
}
