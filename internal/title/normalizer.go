// Package title cleans scraped job titles and maps them to canonical titles.
package title

import (
	"regexp"
	"sort"
	"strings"
)

const minAliasSubstringLength = 4

var (
	withVerification = regexp.MustCompile(`(?i)\s+with\s+verification\s*$`)
	// Internal requisition codes: "#ACN ", "IN_", "GTM-". Lowercase words followed by
	// a space are left alone so "lead engineer" keeps its first word.
	codePrefix = regexp.MustCompile(`^(?:#\w{2,5}[\s_-]+|[A-Za-z0-9]{2,5}_+|[A-Z0-9]{2,5}\s*-+\s*)`)
	// "SDE-2", "SWE - III": a level after the dash makes it a title, not a code.
	levelPrefix     = regexp.MustCompile(`(?i)^([a-z]{2,5})\s*-+\s*(\d{1,2}|iii|ii|iv|i)\b`)
	countryPrefix   = regexp.MustCompile(`(?i)^[a-z]{2}_`)
	underscores     = regexp.MustCompile(`_+`)
	dashes          = regexp.MustCompile(`\s*-\s*`)
	parenthetical   = regexp.MustCompile(`\(.*?\)`)
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// roleKeywords is ordered by priority.
var roleKeywords = []string{
	"engineer", "developer", "manager", "analyst", "scientist",
	"designer", "architect", "consultant", "director", "lead",
	"administrator", "writer", "master", "executive",
}

// Clean strips scraping noise from a raw title and returns it lowercased with only
// alphanumerics and single spaces.
func Clean(raw string) string {
	title := firstLine(raw)

	title = withVerification.ReplaceAllString(title, "")
	title = levelPrefix.ReplaceAllString(title, "${1} ${2}")
	title = codePrefix.ReplaceAllString(title, "")
	title = countryPrefix.ReplaceAllString(title, "")
	title = underscores.ReplaceAllString(title, " ")
	title = dashes.ReplaceAllString(title, " ")
	title = parenthetical.ReplaceAllString(title, "")

	normalized := normalizeText(title)

	// LinkedIn sometimes renders the title twice in the same node.
	words := strings.Fields(normalized)
	if len(words) >= 4 && len(words)%2 == 0 {
		half := len(words) / 2
		first := strings.Join(words[:half], " ")
		if first == strings.Join(words[half:], " ") {
			return first
		}
	}

	return normalized
}

// RoleKeyword returns the most significant generic role noun of a normalized title,
// or an empty string.
func RoleKeyword(normalized string) string {
	words := strings.Fields(normalized)
	for _, keyword := range roleKeywords {
		for _, word := range words {
			if word == keyword {
				return keyword
			}
		}
	}
	return ""
}

// Normalizer resolves cleaned titles to canonical titles using an alias table.
type Normalizer struct {
	canonical map[string]string
	// aliases sorted longest first for substring matching.
	aliases []string
}

// NewNormalizer builds the alias index from a canonical -> aliases table.
func NewNormalizer(table map[string][]string) *Normalizer {
	n := &Normalizer{canonical: make(map[string]string)}

	for canonical, alternatives := range table {
		key := normalizeText(canonical)
		if key == "" {
			continue
		}
		n.canonical[key] = key
		for _, alt := range alternatives {
			if alias := normalizeText(alt); alias != "" {
				n.canonical[alias] = key
			}
		}
	}

	for alias := range n.canonical {
		if len(alias) >= minAliasSubstringLength {
			n.aliases = append(n.aliases, alias)
		}
	}
	sort.Slice(n.aliases, func(i, j int) bool {
		if len(n.aliases[i]) != len(n.aliases[j]) {
			return len(n.aliases[i]) > len(n.aliases[j])
		}
		return n.aliases[i] < n.aliases[j]
	})

	return n
}

// Normalize cleans the raw title and maps it to its canonical form when one is known.
func (n *Normalizer) Normalize(raw string) string {
	cleaned := Clean(raw)
	if cleaned == "" {
		return ""
	}

	if canonical, ok := n.canonical[cleaned]; ok {
		return canonical
	}

	for _, alias := range n.aliases {
		if strings.Contains(cleaned, alias) {
			return n.canonical[alias]
		}
	}

	return cleaned
}

// Size returns the number of indexed aliases including canonical titles.
func (n *Normalizer) Size() int {
	return len(n.canonical)
}

func firstLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func normalizeText(s string) string {
	s = nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
