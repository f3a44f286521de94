// Package lookup resolves salaries for batches of scraped jobs, consulting the
// cache, the salary cascade and, on a miss, the generative estimator.
package lookup

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/linkedintel/internal/ai"
	"github.com/spigell/linkedintel/internal/cache"
	"github.com/spigell/linkedintel/internal/logger"
	"github.com/spigell/linkedintel/internal/salary"
)

const (
	DefaultConcurrency   = 4
	DefaultBudget        = 25 * time.Second
	DefaultFlightTimeout = 2 * time.Minute

	forceAISuffix = ":ai"
)

// ErrAIDisabled is returned by operations that need a generative backend when
// none is configured.
var ErrAIDisabled = errors.New("ai features are disabled")

// Job is a scraped job listing.
type Job struct {
	Title    string `json:"title" mapstructure:"title" validate:"max=500"`
	Company  string `json:"company" mapstructure:"company" validate:"max=300"`
	Location string `json:"location" mapstructure:"location" validate:"max=300"`
}

// Fingerprint is the cache key of the job.
func (j Job) Fingerprint() string {
	return cache.Fingerprint(j.Title, j.Company, j.Location)
}

// Config tunes the batch fan-out.
type Config struct {
	// Concurrency bounds the number of estimator calls running at once.
	Concurrency int `mapstructure:"concurrency"`
	// Budget is the wall-clock limit of one batch. Jobs unresolved by then are
	// returned as not found.
	Budget time.Duration `mapstructure:"budget"`
	// FlightTimeout bounds a single estimator call, which may outlive the batch
	// that started it so its result can still be cached.
	FlightTimeout time.Duration `mapstructure:"flight-timeout"`
}

// Service answers salary lookups. It is safe for concurrent use.
type Service struct {
	matcher   *salary.Matcher
	estimator ai.Estimator
	cache     *cache.Cache
	group     singleflight.Group
	cfg       Config
	logger    *zap.Logger
}

// NewService wires the lookup pipeline. A nil estimator disables the generative
// fallback.
func NewService(matcher *salary.Matcher, estimator ai.Estimator, c *cache.Cache, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	if cfg.FlightTimeout <= 0 {
		cfg.FlightTimeout = DefaultFlightTimeout
	}

	return &Service{
		matcher:   matcher,
		estimator: estimator,
		cache:     c,
		cfg:       cfg,
		logger:    log,
	}
}

// AIEnabled reports whether misses fall back to the estimator.
func (s *Service) AIEnabled() bool {
	return s.estimator != nil
}

type pending struct {
	indices []int
	key     string
	job     Job
	query   salary.Query
}

// LookupBatch resolves every job and returns the results in input order. Failures
// of individual jobs are reported through their result label and never abort the
// batch.
func (s *Service) LookupBatch(ctx context.Context, jobs []Job) []*salary.Result {
	results := make([]*salary.Result, len(jobs))
	queries := make([]salary.Query, len(jobs))
	var misses []*pending
	byKey := make(map[string]*pending)

	for i, job := range jobs {
		key := job.Fingerprint()
		log := logger.WithJob(s.logger, key, job.Title, job.Company, job.Location)

		if cached, ok := s.cached(ctx, key); ok {
			log.Debug("salary served from cache", zap.String("match_type", string(cached.MatchType)))
			results[i] = cached
			continue
		}

		queries[i] = s.matcher.Prepare(job.Title, job.Company, job.Location)
		result := s.matcher.MatchQuery(&queries[i])
		if result.Found {
			s.cache.Put(ctx, key, cache.TierData, result)
			results[i] = result
			continue
		}

		if s.estimator == nil || queries[i].Title == "" {
			s.cache.Put(ctx, key, cache.TierNotFound, result)
			results[i] = result
			continue
		}

		if p, ok := byKey[key]; ok {
			p.indices = append(p.indices, i)
			continue
		}
		p := &pending{indices: []int{i}, key: key, job: job, query: queries[i]}
		byKey[key] = p
		misses = append(misses, p)
	}

	if len(misses) > 0 {
		s.estimateAll(ctx, misses, results)
	}

	for i, result := range results {
		if result == nil {
			results[i] = salary.NotFound(queries[i].Location, salary.LabelUnavailable)
		}
	}

	return results
}

// LookupForceAI skips the dataset and asks the estimator directly. The result is
// cached separately from regular lookups.
func (s *Service) LookupForceAI(ctx context.Context, job Job) (*salary.Result, error) {
	if s.estimator == nil {
		return nil, ErrAIDisabled
	}

	key := job.Fingerprint() + forceAISuffix
	if cached, ok := s.cached(ctx, key); ok {
		return cached, nil
	}

	query := s.matcher.Prepare(job.Title, job.Company, job.Location)
	budgetCtx, cancel := context.WithTimeout(ctx, s.cfg.Budget)
	defer cancel()

	result := s.estimate(budgetCtx, &pending{key: key, job: job, query: query})
	if result == nil {
		return salary.NotFound(query.Location, salary.LabelUnavailable), nil
	}
	return result, nil
}

// LookupBatchForceAI runs LookupForceAI for every job, preserving input order.
func (s *Service) LookupBatchForceAI(ctx context.Context, jobs []Job) ([]*salary.Result, error) {
	if s.estimator == nil {
		return nil, ErrAIDisabled
	}

	results := make([]*salary.Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			result, err := s.LookupForceAI(gctx, job)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) cached(ctx context.Context, key string) (*salary.Result, bool) {
	var result salary.Result
	if _, ok := s.cache.Get(ctx, key, &result); !ok {
		return nil, false
	}
	return &result, true
}

func (s *Service) estimateAll(ctx context.Context, misses []*pending, results []*salary.Result) {
	budgetCtx, cancel := context.WithTimeout(ctx, s.cfg.Budget)
	defer cancel()

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)

	for _, miss := range misses {
		g.Go(func() error {
			result := s.estimate(budgetCtx, miss)
			if result == nil {
				return nil
			}
			for n, i := range miss.indices {
				if n > 0 {
					copied := *result
					result = &copied
				}
				results[i] = result
			}
			return nil
		})
	}

	_ = g.Wait()

	if errors.Is(budgetCtx.Err(), context.DeadlineExceeded) {
		s.logger.Warn("salary batch budget exhausted", zap.Duration("budget", s.cfg.Budget), zap.Int("pending", len(misses)))
	}
}

// estimate joins the in-flight estimator call for the key, starting one when none
// is running. It returns nil when ctx ends first.
func (s *Service) estimate(ctx context.Context, p *pending) *salary.Result {
	if ctx.Err() != nil {
		return nil
	}

	ch := s.group.DoChan(p.key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FlightTimeout)
		defer cancel()
		return s.fallback(flightCtx, p), nil
	})

	select {
	case <-ctx.Done():
		return nil
	case res := <-ch:
		result := *res.Val.(*salary.Result)
		return &result
	}
}

func (s *Service) fallback(ctx context.Context, p *pending) *salary.Result {
	log := logger.WithJob(s.logger, p.key, p.job.Title, p.job.Company, p.job.Location)

	// A flight for the same key may have completed since the batch checked the cache.
	if cached, ok := s.cached(ctx, p.key); ok {
		return cached
	}

	est, err := s.estimator.Estimate(ctx, p.job.Title, p.job.Company, p.job.Location)
	if err != nil {
		label := salary.LabelFailed
		if ai.IsRateLimited(err) {
			label = salary.LabelRateLimited
		}
		log.Warn("salary estimate failed", zap.String("label", label), zap.Error(err))
		return salary.NotFound(p.query.Location, label)
	}

	currency := strings.ToUpper(strings.TrimSpace(est.Currency))
	if currency == "" {
		currency = p.query.Location.Currency
	}

	result := salary.Estimated(est.SalaryMin, est.SalaryMax, est.SalaryMedian, currency, est.Confidence)
	s.cache.Put(ctx, p.key, cache.TierAI, result)

	log.Info("salary estimated by ai",
		zap.String("label", result.Label),
		zap.String("confidence", result.Confidence),
	)
	return result
}
