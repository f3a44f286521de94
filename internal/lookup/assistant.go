package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/ai"
	"github.com/spigell/linkedintel/internal/cache"
)

// Assistant serves the resume match and outreach message features.
type Assistant struct {
	matcher   ai.ResumeMatcher
	connector ai.Connector
	cache     *cache.Cache
	logger    *zap.Logger
}

// NewAssistant builds the assistant. Nil collaborators make the matching
// operations return ErrAIDisabled.
func NewAssistant(matcher ai.ResumeMatcher, connector ai.Connector, matchCache *cache.Cache, log *zap.Logger) *Assistant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{matcher: matcher, connector: connector, cache: matchCache, logger: log}
}

// MatchResume compares a resume with a job description. Results are cached per
// resume and description pair.
func (a *Assistant) MatchResume(ctx context.Context, resume, jobDescription string) (*ai.ResumeMatch, error) {
	if a.matcher == nil {
		return nil, ErrAIDisabled
	}
	if strings.TrimSpace(resume) == "" || strings.TrimSpace(jobDescription) == "" {
		return nil, errors.New("resume and job description are required")
	}

	key := cache.Fingerprint(resume, jobDescription)
	if a.cache != nil {
		var cached ai.ResumeMatch
		if _, ok := a.cache.Get(ctx, key, &cached); ok {
			a.logger.Debug("resume match served from cache", zap.String("fingerprint", key))
			return &cached, nil
		}
	}

	match, err := a.matcher.MatchResume(ctx, resume, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("matching resume: %w", err)
	}

	if a.cache != nil {
		a.cache.Put(ctx, key, cache.TierAI, match)
	}

	a.logger.Info("resume matched",
		zap.Int("match_percent", match.MatchPercent),
		zap.String("status", match.Status),
	)
	return match, nil
}

// Icebreaker writes a connection request for the profile. It is never cached.
func (a *Assistant) Icebreaker(ctx context.Context, profile *ai.Profile, intent ai.Intent, resumeContext string) (*ai.ConnectMessage, error) {
	if a.connector == nil {
		return nil, ErrAIDisabled
	}
	if intent == "" {
		intent = ai.IntentConnect
	}
	if !intent.Valid() {
		return nil, fmt.Errorf("unknown intent %q", intent)
	}

	msg, err := a.connector.Connect(ctx, profile, intent, resumeContext)
	if err != nil {
		return nil, fmt.Errorf("writing icebreaker: %w", err)
	}
	return msg, nil
}
