// Package company canonicalizes employer names so scraped names can be compared
// against the salary dataset.
package company

import (
	"regexp"
	"sort"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9 &]`)
	spaces     = regexp.MustCompile(`\s+`)
)

var suffixes = sortedSuffixes(
	"india", "in india", "india pvt ltd", "india private limited", "india ltd",
	"india limited", "technologies india", "india technologies", "usa", "us", "uk",
	"global", "international", "worldwide", "pvt ltd", "private limited", "limited",
	"ltd", "inc", "corp", "corporation", "llc", "llp", "solutions", "services",
	"consulting", "technologies", "technology", "tech",
)

// Clean lowercases the name, drops punctuation and strips trailing legal or locale
// suffixes until none is left.
func Clean(raw string) string {
	name := strings.ToLower(raw)
	name = disallowed.ReplaceAllString(name, "")
	name = strings.TrimSpace(spaces.ReplaceAllString(name, " "))

	for stripped := true; stripped; {
		stripped = false
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, " "+suffix) {
				name = strings.TrimSpace(strings.TrimSuffix(name, suffix))
				stripped = true
				break
			}
			// "Accenture in India" style names.
			if idx := strings.Index(name, " in "+suffix); idx > 0 {
				name = strings.TrimSpace(name[:idx])
				stripped = true
				break
			}
		}
	}

	return name
}

// Matches reports whether a dataset company and a scraped company name refer to the
// same employer. Two blank names match; callers decide whether a blank company may
// be used for identification.
func Matches(dbCompany, scrapedCompany string) bool {
	db := Clean(dbCompany)
	scraped := Clean(scrapedCompany)

	if db == "" || scraped == "" {
		return db == scraped
	}

	if db == scraped || strings.Contains(db, scraped) || strings.Contains(scraped, db) {
		return true
	}

	// "JPMorgan Chase" vs "JP Morgan". Only leading runs count so spaces removed
	// from unrelated names cannot form a match across word boundaries.
	compactDB := strings.ReplaceAll(db, " ", "")
	compactScraped := strings.ReplaceAll(scraped, " ", "")
	if strings.HasPrefix(compactDB, compactScraped) || strings.HasPrefix(compactScraped, compactDB) {
		return true
	}

	firstDB := strings.Fields(db)[0]
	firstScraped := strings.Fields(scraped)[0]
	return len(firstDB) >= 3 && firstDB == firstScraped
}

func sortedSuffixes(list ...string) []string {
	sort.SliceStable(list, func(i, j int) bool {
		return len(list[i]) > len(list[j])
	})
	return list
}
