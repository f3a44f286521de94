package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/ai"
)

const maxSkills = 5

var matchOptions = Options{Temperature: 0.3, MaxOutputTokens: 8192, JSON: true}

var (
	emailPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
)

// ResumeMatcher scores a resume against a job description.
type ResumeMatcher struct {
	generator jsonGenerator
	logger    *zap.Logger
}

var _ ai.ResumeMatcher = (*ResumeMatcher)(nil)

func NewResumeMatcher(generator jsonGenerator, logger *zap.Logger) *ResumeMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResumeMatcher{generator: generator, logger: logger}
}

// MatchResume removes contact details from the resume before it leaves the process.
func (m *ResumeMatcher) MatchResume(ctx context.Context, resume, jobDescription string) (*ai.ResumeMatch, error) {
	if strings.TrimSpace(resume) == "" {
		return nil, errors.New("resume text is required")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, errors.New("job description is required")
	}

	prompt := render(matchPromptTemplate, map[string]string{
		"RESUME":          StripPII(strings.TrimSpace(resume)),
		"JOB_DESCRIPTION": strings.TrimSpace(jobDescription),
	})

	var match *ai.ResumeMatch
	err := m.generator.GenerateJSON(ctx, prompt, matchOptions, func(payload map[string]any) error {
		var parsed ai.ResumeMatch
		if err := decodePayload(payload, &parsed); err != nil {
			return err
		}
		match = normalizeMatch(&parsed)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("match resume: %w", err)
	}

	m.logger.Debug("resume matched",
		zap.Int("match_percent", match.MatchPercent),
		zap.String("status", match.Status),
	)

	return match, nil
}

// StripPII replaces emails, phone numbers and SSNs with placeholders.
func StripPII(text string) string {
	text = emailPattern.ReplaceAllString(text, "[EMAIL]")
	text = phonePattern.ReplaceAllString(text, "[PHONE]")
	return ssnPattern.ReplaceAllString(text, "[SSN]")
}

func normalizeMatch(m *ai.ResumeMatch) *ai.ResumeMatch {
	if m.MatchPercent < 0 {
		m.MatchPercent = 0
	}
	if m.MatchPercent > 100 {
		m.MatchPercent = 100
	}
	m.Status = ai.StatusFor(m.MatchPercent)
	m.Summary = strings.TrimSpace(m.Summary)
	m.MatchedSkills = limitSkills(m.MatchedSkills)
	m.MissingSkills = limitSkills(m.MissingSkills)
	return m
}

func limitSkills(skills []string) []string {
	result := make([]string, 0, maxSkills)
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill == "" {
			continue
		}
		result = append(result, skill)
		if len(result) == maxSkills {
			break
		}
	}
	return result
}
