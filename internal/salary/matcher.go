package salary

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/company"
	"github.com/spigell/linkedintel/internal/location"
	"github.com/spigell/linkedintel/internal/title"
)

const fuzzyThreshold = 0.60

// Query holds the features of a job extracted once before the cascade runs.
// Company is the canonical name, so a name made only of punctuation or legal
// suffixes is blank.
type Query struct {
	Title    string
	Role     string
	Company  string
	Location location.Info
}

func (q *Query) hasCompany() bool { return q.Company != "" }

func (q *Query) sameCountry(country string) bool {
	return q.Location.Country == "" || strings.EqualFold(q.Location.Country, country)
}

type row struct {
	entry   *Entry
	title   string
	words   map[string]struct{}
	city    string
	country string
}

type tier struct {
	name      string
	matchType MatchType
	keep      func(q *Query, r *row) bool
}

// tiers run in order; the first one with a non-empty match set wins.
var tiers = []tier{
	{
		name:      "exact",
		matchType: MatchExact,
		keep: func(q *Query, r *row) bool {
			return r.title == q.Title && q.hasCompany() && company.Matches(r.entry.Company, q.Company) &&
				r.city == q.Location.City
		},
	},
	{
		name:      "company",
		matchType: MatchCompany,
		keep: func(q *Query, r *row) bool {
			return r.title == q.Title && q.hasCompany() && company.Matches(r.entry.Company, q.Company) &&
				q.sameCountry(r.country)
		},
	},
	{
		name:      "city",
		matchType: MatchMarket,
		keep: func(q *Query, r *row) bool {
			return r.title == q.Title && q.Location.City != "" && r.city == q.Location.City
		},
	},
	{
		name:      "country",
		matchType: MatchNational,
		keep: func(q *Query, r *row) bool {
			return r.title == q.Title && q.Location.Country != "" && strings.EqualFold(r.country, q.Location.Country)
		},
	},
	{
		name:      "fuzzy",
		matchType: MatchFuzzy,
		keep: func(q *Query, r *row) bool {
			return WordOverlap(q.Title, r.title) >= fuzzyThreshold && q.sameCountry(r.country)
		},
	},
	{
		name:      "role_company",
		matchType: MatchFuzzy,
		keep: func(q *Query, r *row) bool {
			return r.hasWord(q.Role) && q.hasCompany() && company.Matches(r.entry.Company, q.Company) &&
				q.sameCountry(r.country)
		},
	},
	{
		name:      "role_city",
		matchType: MatchFuzzy,
		keep: func(q *Query, r *row) bool {
			return r.hasWord(q.Role) && q.Location.City != "" && r.city == q.Location.City
		},
	},
	{
		name:      "role_country",
		matchType: MatchFuzzy,
		keep: func(q *Query, r *row) bool {
			return r.hasWord(q.Role) && q.sameCountry(r.country)
		},
	},
}

func (r *row) hasWord(word string) bool {
	if word == "" {
		return false
	}
	_, ok := r.words[word]
	return ok
}

// Matcher runs the tier cascade over a read-only set of entries. It is safe for
// concurrent use.
type Matcher struct {
	rows      []row
	titles    *title.Normalizer
	locations *location.Resolver
	logger    *zap.Logger
}

// NewMatcher indexes the entries. The slice must not be modified afterwards.
func NewMatcher(entries []Entry, titles *title.Normalizer, locations *location.Resolver, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if titles == nil {
		titles = title.NewNormalizer(nil)
	}
	if locations == nil {
		locations = location.NewResolver()
	}

	rows := make([]row, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		normalized := strings.ToLower(strings.TrimSpace(e.TitleNormalized))
		words := make(map[string]struct{})
		for _, w := range strings.Fields(normalized) {
			words[w] = struct{}{}
		}
		rows = append(rows, row{
			entry:   e,
			title:   normalized,
			words:   words,
			city:    strings.ToLower(strings.TrimSpace(e.City)),
			country: strings.ToUpper(strings.TrimSpace(e.Country)),
		})
	}

	return &Matcher{rows: rows, titles: titles, locations: locations, logger: logger}
}

// Size returns the number of indexed entries.
func (m *Matcher) Size() int {
	return len(m.rows)
}

// Prepare extracts the normalized features of a raw job.
func (m *Matcher) Prepare(rawTitle, rawCompany, rawLocation string) Query {
	normalized := m.titles.Normalize(rawTitle)
	return Query{
		Title:    normalized,
		Role:     title.RoleKeyword(normalized),
		Company:  company.Clean(rawCompany),
		Location: m.locations.Resolve(rawLocation),
	}
}

// Match resolves a salary for the job. A miss is returned as a not-found result and
// never as an error.
func (m *Matcher) Match(rawTitle, rawCompany, rawLocation string) *Result {
	q := m.Prepare(rawTitle, rawCompany, rawLocation)
	return m.MatchQuery(&q)
}

// MatchQuery runs the cascade for already prepared features.
func (m *Matcher) MatchQuery(q *Query) *Result {
	if q.Title == "" {
		return NotFound(q.Location, LabelUnavailable)
	}

	for _, t := range tiers {
		var matched []*Entry
		for i := range m.rows {
			if t.keep(q, &m.rows[i]) {
				matched = append(matched, m.rows[i].entry)
			}
		}
		if len(matched) == 0 {
			continue
		}

		result := average(matched, q.Location.Currency)
		result.MatchType = t.matchType

		m.logger.Debug("salary tier matched",
			zap.String("tier", t.name),
			zap.String("title", q.Title),
			zap.Int("matched", len(matched)),
			zap.Int("sample_size", result.SampleSize),
		)
		return result
	}

	m.logger.Debug("no salary tier matched",
		zap.String("title", q.Title),
		zap.String("country", q.Location.Country),
	)
	return NotFound(q.Location, LabelUnavailable)
}

// WordOverlap is the share of query words longer than two characters that also
// appear in the candidate.
func WordOverlap(query, candidate string) float64 {
	candidateWords := make(map[string]struct{})
	for _, w := range strings.Fields(candidate) {
		candidateWords[w] = struct{}{}
	}

	total, hits := 0, 0
	for _, w := range strings.Fields(query) {
		if len(w) <= 2 {
			continue
		}
		total++
		if _, ok := candidateWords[w]; ok {
			hits++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// average folds matched rows into a result. Rows in a currency other than the
// chosen one are left out so incompatible amounts are never mixed.
func average(matched []*Entry, preferredCurrency string) *Result {
	currency := matched[0].Currency
	for _, e := range matched {
		if preferredCurrency != "" && strings.EqualFold(e.Currency, preferredCurrency) {
			currency = e.Currency
			break
		}
	}

	var group []*Entry
	for _, e := range matched {
		if strings.EqualFold(e.Currency, currency) {
			group = append(group, e)
		}
	}

	var sumMin, sumMax, sumMedian float64
	for _, e := range group {
		sumMin += float64(e.SalaryMin)
		sumMax += float64(e.SalaryMax)
		sumMedian += float64(e.SalaryMedian)
	}
	n := float64(len(group))

	minValue := int(math.Round(sumMin / n))
	maxValue := int(math.Round(sumMax / n))

	return &Result{
		Found:        true,
		SalaryMin:    minValue,
		SalaryMax:    maxValue,
		SalaryMedian: int(math.Round(sumMedian / n)),
		Currency:     currency,
		Label:        FormatLabel(minValue, maxValue, currency),
		SampleSize:   len(group),
		Source:       group[0].Source,
	}
}
