package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/spigell/linkedintel/internal/ai"
	"github.com/spigell/linkedintel/internal/logger"
	"github.com/spigell/linkedintel/internal/utils"
)

const (
	ProviderName = "gemini"

	defaultModel        = "gemini-2.5-flash"
	defaultMaxRetries   = 3
	defaultMaxLogLength = 200

	baseDelay          = time.Second
	rateLimitBaseDelay = 3 * time.Second
	backoffMultiplier  = 3
)

var sleep = utils.WaitFor

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures the Gemini generator.
type Config struct {
	APIKey            string
	Model             string
	MaxRetries        int
	RequestsPerMinute int
	MaxLogLength      int
}

// Options are the generation parameters of a single request.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
	JSON            bool
}

// Generator sends prompts to Gemini with retries, backoff and a client side rate
// limit.
type Generator struct {
	models     contentModels
	model      string
	maxRetries int
	limiter    *rate.Limiter
	logger     *zap.Logger
	maxLogLen  int
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	g := newGenerator(client.Models, model, cfg.MaxRetries, log)
	g.maxLogLen = cfg.MaxLogLength
	if g.maxLogLen <= 0 {
		g.maxLogLen = defaultMaxLogLength
	}
	if cfg.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return g, nil
}

func newGenerator(models contentModels, model string, maxRetries int, log *zap.Logger) *Generator {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Generator{
		models:     models,
		model:      model,
		maxRetries: maxRetries,
		logger:     logger.WithCommonFields(log, ProviderName, model),
		maxLogLen:  defaultMaxLogLength,
	}
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// GenerateJSON sends the prompt and hands the sanitized JSON object to decode.
// Transport failures and undecodable output are retried with exponential backoff.
// Exhausted rate limits surface as *ai.RateLimitedError, undecodable output as
// ai.ErrMalformedResponse and anything else wrapped with ai.ErrUnavailable.
func (g *Generator) GenerateJSON(ctx context.Context, prompt string, opts Options, decode func(map[string]any) error) error {
	if g == nil || g.models == nil {
		return errors.New("gemini generator is not initialized")
	}

	var (
		lastErr     error
		rateLimited bool
	)

	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		if attempt > 1 {
			delay := backoff(attempt-1, rateLimited)
			g.logger.Debug("waiting before retry",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Bool("rate_limited", rateLimited),
			)
			if err := sleep(ctx, delay); err != nil {
				return fmt.Errorf("%w: %w", ai.ErrUnavailable, err)
			}
		}

		raw, err := g.generate(ctx, prompt, opts)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %w", ai.ErrUnavailable, ctx.Err())
			}
			lastErr = err
			rateLimited = isRateLimit(err)
			g.logger.Warn("gemini request failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", g.maxRetries),
				zap.Bool("rate_limited", rateLimited),
				zap.Error(err),
			)
			continue
		}

		payload, err := ParseJSON(raw)
		if err == nil {
			if err = decode(payload); err != nil {
				err = fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
			}
		}
		if err != nil {
			lastErr = err
			rateLimited = false
			g.logger.Warn("gemini response could not be decoded",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", g.maxRetries),
				zap.String("response_preview", utils.TruncateForLog(raw, g.maxLogLen)),
				zap.Error(err),
			)
			continue
		}

		return nil
	}

	switch {
	case rateLimited:
		return ai.NewRateLimitedError(lastErr)
	case errors.Is(lastErr, ai.ErrMalformedResponse):
		return lastErr
	default:
		return fmt.Errorf("%w: %w", ai.ErrUnavailable, lastErr)
	}
}

func (g *Generator) generate(ctx context.Context, prompt string, opts Options) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), opts.config())
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := responseText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

func (o Options) config() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: o.MaxOutputTokens}
	temperature := o.Temperature
	cfg.Temperature = &temperature
	if o.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// Only the first candidate with content is used.
		if builder.Len() > 0 {
			break
		}
	}

	return strings.TrimSpace(builder.String())
}

// backoff returns the delay after the given failed attempt.
func backoff(failedAttempt int, rateLimited bool) time.Duration {
	base := baseDelay
	if rateLimited {
		base = rateLimitBaseDelay
	}
	return base * time.Duration(math.Pow(backoffMultiplier, float64(failedAttempt-1)))
}

func isRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && isRateLimitCode(apiErr.Code) {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && isRateLimitCode(apiErrPtr.Code) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

func isRateLimitCode(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}
