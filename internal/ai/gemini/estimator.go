package gemini

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/ai"
)

var salaryOptions = Options{Temperature: 0.3, MaxOutputTokens: 1024, JSON: true}

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, opts Options, decode func(map[string]any) error) error
	Model() string
}

// Estimator asks Gemini for a salary range when the dataset has no match.
type Estimator struct {
	generator jsonGenerator
	logger    *zap.Logger
}

var _ ai.Estimator = (*Estimator)(nil)

func NewEstimator(generator jsonGenerator, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{generator: generator, logger: logger}
}

func (e *Estimator) Estimate(ctx context.Context, title, company, location string) (*ai.SalaryEstimate, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("title is required")
	}

	prompt := render(salaryPromptTemplate, map[string]string{
		"TITLE":    strings.TrimSpace(title),
		"COMPANY":  orUnknown(company),
		"LOCATION": orUnknown(location),
	})

	var estimate *ai.SalaryEstimate
	err := e.generator.GenerateJSON(ctx, prompt, salaryOptions, func(payload map[string]any) error {
		parsed, err := parseEstimate(payload)
		if err != nil {
			return err
		}
		estimate = parsed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("estimate salary: %w", err)
	}

	e.logger.Debug("salary estimated",
		zap.String("title", title),
		zap.Int("salary_median", estimate.SalaryMedian),
		zap.String("currency", estimate.Currency),
		zap.String("confidence", estimate.Confidence),
	)

	return estimate, nil
}

func parseEstimate(payload map[string]any) (*ai.SalaryEstimate, error) {
	var est ai.SalaryEstimate
	if err := decodePayload(payload, &est); err != nil {
		return nil, err
	}

	figures := []int{est.SalaryMin, est.SalaryMedian, est.SalaryMax}
	for _, v := range figures {
		if v <= 0 {
			return nil, fmt.Errorf("salary figures must be positive, got %v", figures)
		}
	}
	sort.Ints(figures)
	est.SalaryMin, est.SalaryMedian, est.SalaryMax = figures[0], figures[1], figures[2]

	est.Currency = strings.ToUpper(strings.TrimSpace(est.Currency))
	switch c := strings.ToLower(strings.TrimSpace(est.Confidence)); c {
	case "high", "medium", "low":
		est.Confidence = c
	default:
		est.Confidence = "low"
	}

	return &est, nil
}
