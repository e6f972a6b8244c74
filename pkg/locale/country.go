// Package locale resolves guest nationalities to ISO countries and their
// flag emoji.
package locale

import (
	"strings"
	"unicode"
)

type Country struct {
	Code string // ISO 3166-1 alpha-2 country code (e.g., "PT", "US")
	Name string // Human-readable country name
}

var (
	Countries = map[string]Country{
		"AR": {Code: "AR", Name: "Argentina"},
		"AU": {Code: "AU", Name: "Australia"},
		"AT": {Code: "AT", Name: "Austria"},
		"BE": {Code: "BE", Name: "Belgium"},
		"BR": {Code: "BR", Name: "Brazil"},
		"CA": {Code: "CA", Name: "Canada"},
		"CH": {Code: "CH", Name: "Switzerland"},
		"CN": {Code: "CN", Name: "China"},
		"DE": {Code: "DE", Name: "Germany"},
		"DK": {Code: "DK", Name: "Denmark"},
		"ES": {Code: "ES", Name: "Spain"},
		"FI": {Code: "FI", Name: "Finland"},
		"FR": {Code: "FR", Name: "France"},
		"GB": {Code: "GB", Name: "United Kingdom"},
		"GR": {Code: "GR", Name: "Greece"},
		"IE": {Code: "IE", Name: "Ireland"},
		"IL": {Code: "IL", Name: "Israel"},
		"IN": {Code: "IN", Name: "India"},
		"IT": {Code: "IT", Name: "Italy"},
		"JP": {Code: "JP", Name: "Japan"},
		"MX": {Code: "MX", Name: "Mexico"},
		"NL": {Code: "NL", Name: "Netherlands"},
		"NO": {Code: "NO", Name: "Norway"},
		"PL": {Code: "PL", Name: "Poland"},
		"PT": {Code: "PT", Name: "Portugal"},
		"SE": {Code: "SE", Name: "Sweden"},
		"US": {Code: "US", Name: "United States"},
	}

	// Aliases maps common alternative spellings and demonyms to a code.
	Aliases = map[string]string{
		"uk":            "GB",
		"great britain": "GB",
		"england":       "GB",
		"british":       "GB",
		"usa":           "US",
		"america":       "US",
		"american":      "US",
		"german":        "DE",
		"french":        "FR",
		"spanish":       "ES",
		"portuguese":    "PT",
		"italian":       "IT",
		"dutch":         "NL",
		"holland":       "NL",
	}
)

// FindCountry matches an ISO code, a country name or a known alias, ignoring
// case and surrounding whitespace.
func FindCountry(s string) (Country, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return Country{}, false
	}

	if c, ok := Countries[strings.ToUpper(key)]; ok {
		return c, true
	}
	if code, ok := Aliases[key]; ok {
		return Countries[code], true
	}
	for _, c := range Countries {
		if strings.ToLower(c.Name) == key {
			return c, true
		}
	}
	return Country{}, false
}

// Flag renders a two-letter ISO code as its regional-indicator emoji. It
// returns "" for anything that is not two ASCII letters.
func Flag(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return ""
	}

	var b strings.Builder
	for _, r := range code {
		if r > unicode.MaxASCII || !unicode.IsUpper(r) {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
