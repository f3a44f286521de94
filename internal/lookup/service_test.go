package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/linkedintel/internal/ai"
	"github.com/spigell/linkedintel/internal/cache"
	"github.com/spigell/linkedintel/internal/location"
	"github.com/spigell/linkedintel/internal/salary"
	"github.com/spigell/linkedintel/internal/title"
)

type stubEstimator struct {
	mu    sync.Mutex
	calls int
	est   *ai.SalaryEstimate
	err   error

	started chan struct{}
	release chan struct{}
}

func (s *stubEstimator) Estimate(ctx context.Context, _, _, _ string) (*ai.SalaryEstimate, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.started != nil {
		select {
		case s.started <- struct{}{}:
		default:
		}
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.est, s.err
}

func (s *stubEstimator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func usdEstimate() *ai.SalaryEstimate {
	return &ai.SalaryEstimate{SalaryMin: 100000, SalaryMax: 140000, SalaryMedian: 120000, Currency: "USD", Confidence: "medium"}
}

var (
	hitJob  = Job{Title: "Software Engineer", Company: "SomeUnlistedCo", Location: "Bengaluru, India"}
	missJob = Job{Title: "Head of Growth", Company: "Acme", Location: "San Francisco, CA"}
)

func newTestService(t *testing.T, estimator ai.Estimator, cfg Config, log *zap.Logger) (*Service, *cache.Cache) {
	t.Helper()

	table, err := title.DefaultAliases()
	if err != nil {
		t.Fatalf("loading aliases: %v", err)
	}
	matcher := salary.NewMatcher([]salary.Entry{{
		Title:           "Software Engineer",
		TitleNormalized: "software engineer",
		City:            "bengaluru",
		Country:         "IN",
		SalaryMin:       1200000,
		SalaryMedian:    1800000,
		SalaryMax:       2500000,
		Currency:        "INR",
		Source:          "public",
	}}, title.NewNormalizer(table), location.NewResolver(), zap.NewNop())

	c := cache.New(cache.NewMemoryBackend().Store(cache.NamespaceSalary), cache.Options{TTL: cache.SalaryTTL()}, zap.NewNop())
	return NewService(matcher, estimator, c, cfg, log), c
}

func TestLookupBatchPreservesOrder(t *testing.T) {
	est := &stubEstimator{est: usdEstimate()}
	svc, _ := newTestService(t, est, Config{}, nil)

	results := svc.LookupBatch(context.Background(), []Job{missJob, hitJob, {}})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].MatchType != salary.MatchAI || !results[0].IsAIEstimate || results[0].Label != "$100k - $140k" {
		t.Fatalf("expected ai estimate first, got %+v", results[0])
	}
	if results[1].MatchType != salary.MatchMarket || results[1].Label != "₹12.0L - ₹25.0L" {
		t.Fatalf("expected market average second, got %+v", results[1])
	}
	if results[2].Found || results[2].Label != salary.LabelUnavailable {
		t.Fatalf("expected empty job to be unavailable, got %+v", results[2])
	}
	if est.Calls() != 1 {
		t.Fatalf("expected a single estimator call, got %d", est.Calls())
	}
}

func TestLookupBatchDeduplicatesConcurrentMisses(t *testing.T) {
	est := &stubEstimator{
		est:     usdEstimate(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc, _ := newTestService(t, est, Config{}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]*salary.Result, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = svc.LookupBatch(ctx, []Job{missJob})
	}()

	<-est.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = svc.LookupBatch(ctx, []Job{missJob, missJob})
	}()

	close(est.release)
	wg.Wait()

	if est.Calls() != 1 {
		t.Fatalf("expected one estimator call for identical lookups, got %d", est.Calls())
	}
	for _, batch := range results {
		for _, result := range batch {
			if result.MatchType != salary.MatchAI || result.SalaryMedian != 120000 {
				t.Fatalf("expected shared ai estimate, got %+v", result)
			}
		}
	}
	if results[1][0] == results[1][1] {
		t.Fatalf("duplicate jobs must receive distinct result values")
	}
}

func TestLookupBatchServesCache(t *testing.T) {
	est := &stubEstimator{est: usdEstimate()}
	svc, _ := newTestService(t, est, Config{}, nil)
	ctx := context.Background()

	first := svc.LookupBatch(ctx, []Job{missJob})
	second := svc.LookupBatch(ctx, []Job{{Title: " head of growth ", Company: "ACME", Location: "san francisco, ca"}})

	if est.Calls() != 1 {
		t.Fatalf("expected cached estimate to be reused, got %d calls", est.Calls())
	}
	if second[0].Label != first[0].Label || second[0].MatchType != salary.MatchAI {
		t.Fatalf("unexpected cached result: %+v", second[0])
	}
}

func TestLookupBatchFailureLabels(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		label string
	}{
		{name: "rate limited", err: ai.NewRateLimitedError(errors.New("429 Too Many Requests")), label: salary.LabelRateLimited},
		{name: "unavailable", err: ai.ErrUnavailable, label: salary.LabelFailed},
		{name: "malformed", err: ai.ErrMalformedResponse, label: salary.LabelFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, observed := observer.New(zapcore.WarnLevel)
			est := &stubEstimator{err: tt.err}
			svc, _ := newTestService(t, est, Config{}, zap.New(core))
			ctx := context.Background()

			result := svc.LookupBatch(ctx, []Job{missJob})[0]
			if result.Found || result.Label != tt.label || result.MatchType != salary.MatchNone {
				t.Fatalf("unexpected result: %+v", result)
			}
			if result.Currency != "USD" {
				t.Fatalf("failed lookup must keep the resolved currency, got %+v", result)
			}

			svc.LookupBatch(ctx, []Job{missJob})
			if est.Calls() != 2 {
				t.Fatalf("failures must not be cached, got %d calls", est.Calls())
			}

			if n := observed.FilterMessage("salary estimate failed").Len(); n != 2 {
				t.Fatalf("expected two failure logs, got %d", n)
			}
		})
	}
}

func TestLookupBatchBudget(t *testing.T) {
	est := &stubEstimator{est: usdEstimate(), release: make(chan struct{})}
	t.Cleanup(func() { close(est.release) })

	svc, _ := newTestService(t, est, Config{Budget: 20 * time.Millisecond, FlightTimeout: time.Second}, nil)

	started := time.Now()
	results := svc.LookupBatch(context.Background(), []Job{missJob, hitJob})
	if elapsed := time.Since(started); elapsed > 500*time.Millisecond {
		t.Fatalf("batch must return once the budget is spent, took %v", elapsed)
	}

	if results[0].Found || results[0].Label != salary.LabelUnavailable {
		t.Fatalf("expected unresolved job to be unavailable, got %+v", results[0])
	}
	if results[0].Location == nil || results[0].Location.Country != "US" {
		t.Fatalf("expected resolved location on timeout, got %+v", results[0])
	}
	if !results[1].Found {
		t.Fatalf("dataset hit must not be affected by the budget: %+v", results[1])
	}
}

func TestLookupBatchWithoutEstimator(t *testing.T) {
	svc, c := newTestService(t, nil, Config{}, nil)
	ctx := context.Background()

	if svc.AIEnabled() {
		t.Fatalf("expected ai to be disabled")
	}

	result := svc.LookupBatch(ctx, []Job{missJob})[0]
	if result.Found || result.Label != salary.LabelUnavailable {
		t.Fatalf("unexpected result: %+v", result)
	}

	var cached salary.Result
	tier, ok := c.Get(ctx, missJob.Fingerprint(), &cached)
	if !ok || tier != cache.TierNotFound {
		t.Fatalf("expected miss to be cached as not_found, got %v %v", tier, ok)
	}
}

func TestLookupForceAI(t *testing.T) {
	est := &stubEstimator{est: usdEstimate()}
	svc, c := newTestService(t, est, Config{}, nil)
	ctx := context.Background()

	result, err := svc.LookupForceAI(ctx, hitJob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MatchType != salary.MatchAI {
		t.Fatalf("expected forced ai estimate, got %+v", result)
	}

	if _, err := svc.LookupForceAI(ctx, hitJob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Calls() != 1 {
		t.Fatalf("expected forced estimate to be cached, got %d calls", est.Calls())
	}

	var regular salary.Result
	if _, ok := c.Get(ctx, hitJob.Fingerprint(), &regular); ok {
		t.Fatalf("forced estimate must not populate the regular cache entry")
	}
	if got := svc.LookupBatch(ctx, []Job{hitJob})[0]; got.MatchType != salary.MatchMarket {
		t.Fatalf("regular lookup must still use the dataset, got %+v", got)
	}

	disabled, _ := newTestService(t, nil, Config{}, nil)
	if _, err := disabled.LookupForceAI(ctx, hitJob); !errors.Is(err, ErrAIDisabled) {
		t.Fatalf("expected ErrAIDisabled, got %v", err)
	}
}

func TestLookupBatchForceAIPreservesOrder(t *testing.T) {
	est := &stubEstimator{est: usdEstimate()}
	svc, _ := newTestService(t, est, Config{Concurrency: 2}, nil)

	jobs := []Job{hitJob, missJob, {Title: "Data Scientist", Location: "London, UK"}}
	results, err := svc.LookupBatchForceAI(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, result := range results {
		if result == nil || result.MatchType != salary.MatchAI {
			t.Fatalf("result %d: expected ai estimate, got %+v", i, result)
		}
	}
	if est.Calls() != 3 {
		t.Fatalf("expected one call per distinct job, got %d", est.Calls())
	}
}
