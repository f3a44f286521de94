package gemini

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/spigell/linkedintel/internal/ai"
)

func TestConnectorConnect(t *testing.T) {
	stub := &stubGenerator{responses: []map[string]any{{
		"message":  "Hi Priya, your talk on payments infra at Razorpay was great. I work on similar ledgers and would value your view on a backend role.",
		"hashtags": []any{"#Payments", "fintech", "payments", "Distributed Systems", "golang"},
	}}}

	profile := &ai.Profile{
		Name:           "Priya",
		Headline:       "Staff Engineer at Razorpay",
		CurrentCompany: "Razorpay",
		RecentActivity: []string{"Spoke at GopherCon India", "Posted about ledgers"},
	}

	msg, err := NewConnector(stub, nil).Connect(context.Background(), profile, ai.IntentReferral, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Intent != ai.IntentReferral {
		t.Fatalf("unexpected intent %q", msg.Intent)
	}
	want := []string{"#Payments", "#fintech", "#DistributedSystems", "#golang"}
	if strings.Join(msg.Hashtags, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected hashtags %v", msg.Hashtags)
	}

	for _, fragment := range []string{"asking for a job referral", "Spoke at GopherCon India; Posted about ledgers", "Not provided", "Name: Priya"} {
		if !strings.Contains(stub.lastPrompt, fragment) {
			t.Fatalf("expected prompt to contain %q", fragment)
		}
	}
	if stub.lastOpts.Temperature != 0.7 {
		t.Fatalf("unexpected temperature %v", stub.lastOpts.Temperature)
	}
}

func TestConnectorTruncatesLongMessages(t *testing.T) {
	stub := &stubGenerator{responses: []map[string]any{{
		"message":  strings.Repeat("word ", 100),
		"hashtags": []any{"a", "b"},
	}}}

	msg, err := NewConnector(stub, nil).Connect(context.Background(), &ai.Profile{Name: "Sam"}, ai.IntentConnect, "Go developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := utf8.RuneCountInString(msg.Message); n > maxMessageRunes {
		t.Fatalf("message too long: %d runes", n)
	}
	if strings.HasSuffix(msg.Message, " ") {
		t.Fatalf("message must be trimmed")
	}
}

func TestConnectorValidatesInput(t *testing.T) {
	c := NewConnector(&stubGenerator{}, nil)
	if _, err := c.Connect(context.Background(), nil, ai.IntentConnect, ""); err == nil {
		t.Fatalf("expected error for missing profile")
	}
	if _, err := c.Connect(context.Background(), &ai.Profile{Name: "Sam"}, ai.Intent("sales"), ""); err == nil {
		t.Fatalf("expected error for unknown intent")
	}
}
