package ai

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFor(t *testing.T) {
	cases := map[int]string{100: StatusStrong, 75: StatusStrong, 74: StatusModerate, 50: StatusModerate, 49: StatusWeak, 0: StatusWeak}
	for percent, want := range cases {
		if got := StatusFor(percent); got != want {
			t.Fatalf("StatusFor(%d) = %q, want %q", percent, got, want)
		}
	}
}

func TestIntentValid(t *testing.T) {
	for _, intent := range []Intent{IntentReferral, IntentConnect, IntentBusiness} {
		if !intent.Valid() {
			t.Fatalf("expected %q to be valid", intent)
		}
	}
	if Intent("spam").Valid() {
		t.Fatalf("unexpected valid intent")
	}
}

func TestRateLimitedError(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := fmt.Errorf("estimate: %w", NewRateLimitedError(cause))

	if !IsRateLimited(err) {
		t.Fatalf("expected wrapped rate limit to be detected")
	}

	var rl *RateLimitedError
	if !errors.As(err, &rl) || rl.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %+v", rl)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved")
	}

	if IsRateLimited(fmt.Errorf("%w: boom", ErrUnavailable)) {
		t.Fatalf("unavailable must not be classified as rate limited")
	}
}
