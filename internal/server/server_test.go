package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/ai"
	"github.com/spigell/linkedintel/internal/cache"
	"github.com/spigell/linkedintel/internal/location"
	"github.com/spigell/linkedintel/internal/lookup"
	"github.com/spigell/linkedintel/internal/salary"
	"github.com/spigell/linkedintel/internal/title"
)

type stubMatcher struct {
	match *ai.ResumeMatch
	err   error
}

func (s *stubMatcher) MatchResume(context.Context, string, string) (*ai.ResumeMatch, error) {
	return s.match, s.err
}

type stubConnector struct{}

func (stubConnector) Connect(_ context.Context, profile *ai.Profile, intent ai.Intent, _ string) (*ai.ConnectMessage, error) {
	return &ai.ConnectMessage{Message: "Hi " + profile.Name, Hashtags: []string{"#Go", "#Data"}, Intent: intent}, nil
}

func newTestServer(t *testing.T, matcher ai.ResumeMatcher, connector ai.Connector) http.Handler {
	t.Helper()

	table, err := title.DefaultAliases()
	if err != nil {
		t.Fatalf("loading aliases: %v", err)
	}
	entries := []salary.Entry{{
		Title:           "Software Engineer",
		TitleNormalized: "software engineer",
		City:            "bengaluru",
		Country:         "IN",
		SalaryMin:       1200000,
		SalaryMedian:    1800000,
		SalaryMax:       2500000,
		Currency:        "INR",
	}}
	m := salary.NewMatcher(entries, title.NewNormalizer(table), location.NewResolver(), zap.NewNop())
	backend := cache.NewMemoryBackend()
	salaryCache := cache.New(backend.Store(cache.NamespaceSalary), cache.Options{TTL: cache.SalaryTTL()}, zap.NewNop())

	svc := lookup.NewService(m, nil, salaryCache, lookup.Config{}, zap.NewNop())
	assistant := lookup.NewAssistant(matcher, connector, nil, zap.NewNop())

	return New(Config{MaxBatch: 3}, svc, assistant, Dataset{Entries: len(entries), Version: 7}, zap.NewNop()).Handler()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func TestSalaryLookup(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := post(t, h, "/api/salary-lookup", `{"jobs":[
		{"title":"Head of Growth","company":"Acme","location":"San Francisco, CA"},
		{"title":"Software Engineer","company":"SomeUnlistedCo","location":"Bengaluru, India"}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := uuid.Parse(rec.Header().Get(requestIDHeader)); err != nil {
		t.Fatalf("expected a generated request id, got %q", rec.Header().Get(requestIDHeader))
	}

	var resp struct {
		Results []salary.Result `json:"results"`
	}
	decodeBody(t, rec, &resp)

	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Found || resp.Results[0].Label != salary.LabelUnavailable {
		t.Fatalf("expected first job to be unavailable, got %+v", resp.Results[0])
	}
	if resp.Results[1].MatchType != salary.MatchMarket || resp.Results[1].Label != "₹12.0L - ₹25.0L" {
		t.Fatalf("unexpected second result: %+v", resp.Results[1])
	}
}

func TestSalaryLookupRejectsBadRequests(t *testing.T) {
	h := newTestServer(t, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "invalid json", body: `{"jobs":`},
		{name: "missing jobs", body: `{}`},
		{name: "empty jobs", body: `{"jobs":[]}`},
		{name: "too many jobs", body: `{"jobs":[{"title":"a"},{"title":"b"},{"title":"c"},{"title":"d"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/api/salary-lookup", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body map[string]string
			decodeBody(t, rec, &body)
			if body["error"] == "" {
				t.Fatalf("expected error message in body")
			}
		})
	}
}

func TestSalaryLookupForceAIWithoutBackend(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := post(t, h, "/api/salary-lookup", `{"forceAi":true,"jobs":[{"title":"Software Engineer"}]}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMatch(t *testing.T) {
	h := newTestServer(t, &stubMatcher{match: &ai.ResumeMatch{MatchPercent: 64, Status: ai.StatusModerate}}, nil)

	rec := post(t, h, "/api/match", `{"resumeText":"Go, Kubernetes","jdText":"Go engineer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var match ai.ResumeMatch
	decodeBody(t, rec, &match)
	if match.MatchPercent != 64 || match.Status != ai.StatusModerate {
		t.Fatalf("unexpected match: %+v", match)
	}

	if rec := post(t, h, "/api/match", `{"resumeText":"Go"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing jd, got %d", rec.Code)
	}
}

func TestMatchRateLimited(t *testing.T) {
	h := newTestServer(t, &stubMatcher{err: ai.NewRateLimitedError(errors.New("quota exceeded"))}, nil)

	rec := post(t, h, "/api/match", `{"resumeText":"Go","jdText":"Go engineer"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Rate limited, try again shortly" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestMatchInternalErrorIsHidden(t *testing.T) {
	h := newTestServer(t, &stubMatcher{err: errors.New("dial tcp 10.0.0.1:443: connection refused")}, nil)

	rec := post(t, h, "/api/match", `{"resumeText":"Go","jdText":"Go engineer"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Fatalf("internal error details leaked: %s", rec.Body.String())
	}
}

func TestConnect(t *testing.T) {
	h := newTestServer(t, nil, stubConnector{})

	rec := post(t, h, "/api/connect", `{"profile":{"name":"Priya","headline":"Data Lead"},"intent":"referral"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var msg ai.ConnectMessage
	decodeBody(t, rec, &msg)
	if msg.Message != "Hi Priya" || msg.Intent != ai.IntentReferral {
		t.Fatalf("unexpected message: %+v", msg)
	}

	for _, body := range []string{
		`{"intent":"connect"}`,
		`{"profile":{"headline":"no name"}}`,
		`{"profile":{"name":"Priya"},"intent":"sales"}`,
	} {
		if rec := post(t, h, "/api/connect", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	id := uuid.NewString()
	req.Header.Set(requestIDHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) != id {
		t.Fatalf("expected caller request id to be echoed")
	}

	var body struct {
		Status    string  `json:"status"`
		Dataset   Dataset `json:"dataset"`
		AIEnabled bool    `json:"aiEnabled"`
	}
	decodeBody(t, rec, &body)
	if body.Status != "ok" || body.Dataset.Entries != 1 || body.Dataset.Version != 7 || body.AIEnabled {
		t.Fatalf("unexpected health body: %+v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/salary-lookup", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "validation", err: &ErrValidation{Message: "bad"}, status: http.StatusBadRequest},
		{name: "rate limited", err: ai.NewRateLimitedError(nil), status: http.StatusTooManyRequests},
		{name: "wrapped rate limited", err: errors.Join(errors.New("ctx"), ai.NewRateLimitedError(nil)), status: http.StatusTooManyRequests},
		{name: "disabled", err: lookup.ErrAIDisabled, status: http.StatusServiceUnavailable},
		{name: "other", err: ai.ErrUnavailable, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, got)
			}
		})
	}
}
