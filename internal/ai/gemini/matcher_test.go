package gemini

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/ai"
)

func TestResumeMatcherMatch(t *testing.T) {
	stub := &stubGenerator{responses: []map[string]any{{
		"matchPercent":  82.0,
		"status":        "weak",
		"summary":       "  Solid Go background.  ",
		"matchedSkills": []any{"Go", "Kubernetes", "", "gRPC", "Postgres", "Redis", "Kafka"},
		"missingSkills": []any{"Rust"},
	}}}

	resume := "Jane Doe\njane.doe@example.com\n+1 415-555-0134\nSSN 123-45-6789\nGo engineer"
	match, err := NewResumeMatcher(stub, zap.NewNop()).MatchResume(context.Background(), resume, "Backend engineer, Go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if match.MatchPercent != 82 || match.Status != ai.StatusStrong {
		t.Fatalf("expected status derived from percent, got %+v", match)
	}
	if match.Summary != "Solid Go background." {
		t.Fatalf("unexpected summary %q", match.Summary)
	}
	if len(match.MatchedSkills) != 5 || match.MatchedSkills[2] != "gRPC" {
		t.Fatalf("expected at most five non-empty skills, got %v", match.MatchedSkills)
	}

	for _, leaked := range []string{"jane.doe@example.com", "415-555-0134", "123-45-6789"} {
		if strings.Contains(stub.lastPrompt, leaked) {
			t.Fatalf("prompt leaked %q", leaked)
		}
	}
	for _, placeholder := range []string{"[EMAIL]", "[PHONE]", "[SSN]"} {
		if !strings.Contains(stub.lastPrompt, placeholder) {
			t.Fatalf("expected %s placeholder in prompt", placeholder)
		}
	}
}

func TestResumeMatcherClampsPercent(t *testing.T) {
	stub := &stubGenerator{responses: []map[string]any{{"matchPercent": "140", "summary": "x"}}}

	match, err := NewResumeMatcher(stub, nil).MatchResume(context.Background(), "resume", "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match.MatchPercent != 100 || match.Status != ai.StatusStrong {
		t.Fatalf("unexpected match: %+v", match)
	}
	if match.MatchedSkills == nil || match.MissingSkills == nil {
		t.Fatalf("skills must be empty slices, not nil")
	}
}

func TestResumeMatcherRequiresInput(t *testing.T) {
	m := NewResumeMatcher(&stubGenerator{}, nil)
	if _, err := m.MatchResume(context.Background(), " ", "jd"); err == nil {
		t.Fatalf("expected error for empty resume")
	}
	if _, err := m.MatchResume(context.Background(), "resume", ""); err == nil {
		t.Fatalf("expected error for empty job description")
	}
}

func TestStripPII(t *testing.T) {
	cases := map[string]string{
		"mail me at a.b+c@mail.example.org": "mail me at [EMAIL]",
		"call (415) 555-0134 today":         "call [PHONE] today",
		"ssn 123-45-6789":                   "ssn [SSN]",
		"nothing to hide":                   "nothing to hide",
	}
	for input, want := range cases {
		if got := StripPII(input); got != want {
			t.Fatalf("StripPII(%q) = %q, want %q", input, got, want)
		}
	}
}
