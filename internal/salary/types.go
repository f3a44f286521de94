// Package salary resolves salary figures for a job from the salary dataset using a
// cascade of progressively looser matching tiers.
package salary

import (
	"github.com/spigell/linkedintel/internal/location"
)

// MatchType names the tier that produced a result.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchCompany  MatchType = "company_average"
	MatchMarket   MatchType = "market_average"
	MatchNational MatchType = "national_average"
	MatchFuzzy    MatchType = "fuzzy_average"
	MatchAI       MatchType = "ai_estimate"
	MatchNone     MatchType = "none"
)

const (
	LabelUnavailable = "Data Unavailable"
	LabelFailed      = "Estimate Failed"
	LabelRateLimited = "Rate limited, try again shortly"
)

// Entry is one row of the salary dataset. An empty Company marks a market entry.
type Entry struct {
	Title           string `json:"title" validate:"required"`
	TitleNormalized string `json:"titleNormalized" validate:"required"`
	Company         string `json:"company"`
	City            string `json:"city"`
	State           string `json:"state,omitempty"`
	Country         string `json:"country" validate:"required,len=2"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
	SalaryMin       int    `json:"salaryMin" validate:"gt=0,ltefield=SalaryMedian"`
	SalaryMax       int    `json:"salaryMax" validate:"gt=0,gtefield=SalaryMedian"`
	SalaryMedian    int    `json:"salaryMedian" validate:"gt=0"`
	Currency        string `json:"currency" validate:"required,currency"`
	Source          string `json:"source,omitempty"`
}

// Result is the answer to a salary lookup. Figures are only set when Found is true.
type Result struct {
	Found        bool           `json:"found"`
	SalaryMin    int            `json:"salaryMin,omitempty"`
	SalaryMax    int            `json:"salaryMax,omitempty"`
	SalaryMedian int            `json:"salaryMedian,omitempty"`
	Currency     string         `json:"currency,omitempty"`
	MatchType    MatchType      `json:"matchType"`
	IsAIEstimate bool           `json:"isAiEstimate"`
	Confidence   string         `json:"confidence,omitempty"`
	Label        string         `json:"label"`
	SampleSize   int            `json:"sampleSize,omitempty"`
	Source       string         `json:"source,omitempty"`
	Location     *location.Info `json:"location,omitempty"`
}

// NotFound builds a miss carrying whatever location was resolved.
func NotFound(loc location.Info, label string) *Result {
	if label == "" {
		label = LabelUnavailable
	}
	info := loc
	return &Result{
		Found:     false,
		Currency:  loc.Currency,
		MatchType: MatchNone,
		Label:     label,
		Location:  &info,
	}
}

// Estimated builds a result from a generative estimate.
func Estimated(minValue, maxValue, median int, currency, confidence string) *Result {
	return &Result{
		Found:        true,
		SalaryMin:    minValue,
		SalaryMax:    maxValue,
		SalaryMedian: median,
		Currency:     currency,
		MatchType:    MatchAI,
		IsAIEstimate: true,
		Confidence:   confidence,
		Label:        FormatLabel(minValue, maxValue, currency),
		Source:       "ai",
	}
}
