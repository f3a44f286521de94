// Package location turns scraped location strings into structured location and
// currency information.
package location

import (
	"regexp"
	"sort"
	"strings"
)

var parenthetical = regexp.MustCompile(`\(.*?\)`)

// Info is a resolved location. Country, Currency, Symbol and Format are either all
// set or all empty.
type Info struct {
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
	Symbol   string `json:"symbol,omitempty"`
	Format   string `json:"format,omitempty"`
}

// Resolver maps free text locations to Info using static reference tables.
type Resolver struct {
	countries    map[string]CountryInfo
	countryNames map[string]string
	usStates     map[string]string
	states       map[string]string
	cities       map[string]string
}

// NewResolver returns a resolver backed by the built-in reference tables.
func NewResolver() *Resolver {
	return &Resolver{
		countries:    countries,
		countryNames: countryNames,
		usStates:     usStateAbbrevs,
		states:       states,
		cities:       cities,
	}
}

// Resolve parses strings like "Bengaluru, Karnataka, India" or "San Francisco, CA".
// Unknown parts are kept where they were found; an empty country means the location
// could not be pinned to a country.
func (r *Resolver) Resolve(text string) Info {
	raw := strings.TrimSpace(parenthetical.ReplaceAllString(strings.ToLower(text), ""))
	if raw == "" {
		return Info{}
	}

	parts := make([]string, 0, 3)
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return Info{}
	}

	var info Info

	if code, ok := r.countryNames[parts[len(parts)-1]]; ok {
		info.Country = code
	}

	info.City = parts[0]
	if code, ok := r.cities[info.City]; ok && info.Country == "" {
		info.Country = code
	}

	if len(parts) >= 2 {
		second := parts[1]
		if code, ok := r.usStates[second]; ok {
			info.State = second
			if info.Country == "" {
				info.Country = code
			}
		} else if code, ok := r.states[second]; ok {
			info.State = second
			if info.Country == "" {
				info.Country = code
			}
		}
	}

	if info.Country == "" {
		for _, part := range parts {
			if code, ok := r.cities[part]; ok {
				info.Country = code
				info.City = part
				break
			}
		}
	}

	if country, ok := r.countries[info.Country]; ok {
		info.Currency = country.Currency
		info.Symbol = country.Symbol
		info.Format = country.Format
	} else {
		info.Country = ""
	}

	return info
}

// Country returns the display information for an ISO country code.
func (r *Resolver) Country(code string) (CountryInfo, bool) {
	info, ok := r.countries[strings.ToUpper(strings.TrimSpace(code))]
	return info, ok
}

// SymbolFor returns the display symbol of a currency code. Unknown currencies are
// rendered with their code.
func SymbolFor(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	for _, code := range sortedCountryCodes() {
		if info := countries[code]; info.Currency == currency {
			return info.Symbol
		}
	}
	return currency
}

// FormatFor returns the number format style used for amounts in the currency.
func FormatFor(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	for _, code := range sortedCountryCodes() {
		if info := countries[code]; info.Currency == currency {
			return info.Format
		}
	}
	return FormatThousand
}

// KnownCurrencies lists every currency of the country table.
func KnownCurrencies() []string {
	seen := make(map[string]struct{}, len(countries))
	result := make([]string, 0, len(countries))
	for _, code := range sortedCountryCodes() {
		currency := countries[code].Currency
		if _, ok := seen[currency]; ok {
			continue
		}
		seen[currency] = struct{}{}
		result = append(result, currency)
	}
	sort.Strings(result)
	return result
}

// IsKnownCurrency reports whether the currency belongs to the closed currency table.
func IsKnownCurrency(currency string) bool {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	for _, info := range countries {
		if info.Currency == currency {
			return true
		}
	}
	return false
}

func sortedCountryCodes() []string {
	codes := make([]string, 0, len(countries))
	for code := range countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
