package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/ai"
)

const (
	maxMessageRunes = 280
	maxHashtags     = 4
)

var connectOptions = Options{Temperature: 0.7, MaxOutputTokens: 2048, JSON: true}

var intentLabels = map[ai.Intent]string{
	ai.IntentReferral: "asking for a job referral",
	ai.IntentConnect:  "general professional networking",
	ai.IntentBusiness: "exploring a business opportunity",
}

// Connector writes short personalized connection requests.
type Connector struct {
	generator jsonGenerator
	logger    *zap.Logger
}

var _ ai.Connector = (*Connector)(nil)

func NewConnector(generator jsonGenerator, logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{generator: generator, logger: logger}
}

func (c *Connector) Connect(ctx context.Context, profile *ai.Profile, intent ai.Intent, resumeContext string) (*ai.ConnectMessage, error) {
	if profile == nil || strings.TrimSpace(profile.Name) == "" {
		return nil, errors.New("profile name is required")
	}
	if !intent.Valid() {
		return nil, fmt.Errorf("unknown intent %q", intent)
	}

	sender := strings.TrimSpace(resumeContext)
	if sender == "" {
		sender = "Not provided"
	}

	prompt := render(connectPromptTemplate, map[string]string{
		"NAME":           strings.TrimSpace(profile.Name),
		"HEADLINE":       strings.TrimSpace(profile.Headline),
		"ABOUT":          strings.TrimSpace(profile.About),
		"COMPANY":        strings.TrimSpace(profile.CurrentCompany),
		"ACTIVITY":       strings.Join(profile.RecentActivity, "; "),
		"SENDER_CONTEXT": StripPII(sender),
		"INTENT":         intentLabels[intent],
	})

	var message *ai.ConnectMessage
	err := c.generator.GenerateJSON(ctx, prompt, connectOptions, func(payload map[string]any) error {
		var parsed ai.ConnectMessage
		if err := decodePayload(payload, &parsed); err != nil {
			return err
		}
		parsed.Message = truncateRunes(strings.TrimSpace(parsed.Message), maxMessageRunes)
		if parsed.Message == "" {
			return errors.New("message is empty")
		}
		parsed.Hashtags = normalizeHashtags(parsed.Hashtags)
		parsed.Intent = intent
		message = &parsed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect message: %w", err)
	}

	c.logger.Debug("connect message generated",
		zap.String("intent", string(intent)),
		zap.Int("message_length", len([]rune(message.Message))),
		zap.Strings("hashtags", message.Hashtags),
	)

	return message, nil
}

func normalizeHashtags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, maxHashtags)
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(strings.TrimLeft(strings.TrimSpace(tag), "#")), "")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, "#"+tag)
		if len(result) == maxHashtags {
			break
		}
	}
	return result
}

// truncateRunes cuts s to at most limit runes, preferring a word boundary.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
