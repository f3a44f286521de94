// Package ai declares the generative capabilities used by the lookup service and
// the typed errors shared by their implementations.
package ai

import (
	"context"
)

// SalaryEstimate is a generated salary range in local currency.
type SalaryEstimate struct {
	SalaryMin    int    `json:"salaryMin" mapstructure:"salaryMin"`
	SalaryMax    int    `json:"salaryMax" mapstructure:"salaryMax"`
	SalaryMedian int    `json:"salaryMedian" mapstructure:"salaryMedian"`
	Currency     string `json:"currency" mapstructure:"currency"`
	Confidence   string `json:"confidence" mapstructure:"confidence"`
	Raw          string `json:"-" mapstructure:"-"`
}

// Estimator produces a salary estimate when the dataset has no answer.
type Estimator interface {
	Estimate(ctx context.Context, title, company, location string) (*SalaryEstimate, error)
}

// Match statuses derived from the match percentage.
const (
	StatusStrong   = "strong"
	StatusModerate = "moderate"
	StatusWeak     = "weak"
)

// ResumeMatch is the result of comparing a resume with a job description.
type ResumeMatch struct {
	MatchPercent  int      `json:"matchPercent" mapstructure:"matchPercent"`
	Status        string   `json:"status" mapstructure:"status"`
	Summary       string   `json:"summary" mapstructure:"summary"`
	MatchedSkills []string `json:"matchedSkills" mapstructure:"matchedSkills"`
	MissingSkills []string `json:"missingSkills" mapstructure:"missingSkills"`
}

// ResumeMatcher compares a resume with a job description.
type ResumeMatcher interface {
	MatchResume(ctx context.Context, resume, jobDescription string) (*ResumeMatch, error)
}

// StatusFor maps a match percentage to its status.
func StatusFor(percent int) string {
	switch {
	case percent >= 75:
		return StatusStrong
	case percent >= 50:
		return StatusModerate
	default:
		return StatusWeak
	}
}

// Intent is the purpose of an outreach message.
type Intent string

const (
	IntentReferral Intent = "referral"
	IntentConnect  Intent = "connect"
	IntentBusiness Intent = "business"
)

// Valid reports whether the intent is one of the known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentReferral, IntentConnect, IntentBusiness:
		return true
	}
	return false
}

// Profile is the public profile of the person being contacted.
type Profile struct {
	Name           string   `json:"name" validate:"required"`
	Headline       string   `json:"headline"`
	About          string   `json:"about"`
	CurrentCompany string   `json:"currentCompany"`
	RecentActivity []string `json:"recentActivity"`
	ProfileURL     string   `json:"profileUrl"`
}

// ConnectMessage is a short personalized connection request.
type ConnectMessage struct {
	Message  string   `json:"message" mapstructure:"message"`
	Hashtags []string `json:"hashtags" mapstructure:"hashtags"`
	Intent   Intent   `json:"intent" mapstructure:"intent"`
}

// Connector writes outreach messages.
type Connector interface {
	Connect(ctx context.Context, profile *Profile, intent Intent, resumeContext string) (*ConnectMessage, error)
}
