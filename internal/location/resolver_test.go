package location

import "testing"

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Info
	}{
		{
			name:  "empty",
			input: "   ",
			want:  Info{},
		},
		{
			name:  "city state country",
			input: "Bengaluru, Karnataka, India",
			want:  Info{City: "bengaluru", State: "karnataka", Country: "IN", Currency: "INR", Symbol: "₹", Format: FormatLakh},
		},
		{
			name:  "us state abbreviation",
			input: "San Francisco, CA",
			want:  Info{City: "san francisco", State: "ca", Country: "US", Currency: "USD", Symbol: "$", Format: FormatThousand},
		},
		{
			name:  "state abbreviation only identifies country",
			input: "Smalltown, TX",
			want:  Info{City: "smalltown", State: "tx", Country: "US", Currency: "USD", Symbol: "$", Format: FormatThousand},
		},
		{
			name:  "parenthetical is stripped",
			input: "London, England, United Kingdom (Hybrid)",
			want:  Info{City: "london", Country: "GB", Currency: "GBP", Symbol: "£", Format: FormatThousand},
		},
		{
			name:  "country only",
			input: "India",
			want:  Info{City: "india", Country: "IN", Currency: "INR", Symbol: "₹", Format: FormatLakh},
		},
		{
			name:  "city found by scanning all parts",
			input: "Greater Area, Pune",
			want:  Info{City: "pune", Country: "IN", Currency: "INR", Symbol: "₹", Format: FormatLakh},
		},
		{
			name:  "unknown location keeps city without country",
			input: "Atlantis, Ocean",
			want:  Info{City: "atlantis"},
		},
	}

	resolver := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := resolver.Resolve(tt.input)
			if got != tt.want {
				t.Fatalf("Resolve(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveCountryImpliesCurrency(t *testing.T) {
	resolver := NewResolver()
	inputs := []string{"Remote", "Somewhere, Nowhere", "Dubai", "Toronto, Ontario, Canada", "Karnataka"}

	for _, input := range inputs {
		info := resolver.Resolve(input)
		if info.Country == "" && (info.Currency != "" || info.Symbol != "" || info.Format != "") {
			t.Fatalf("unresolved country must not carry currency data: %+v", info)
		}
		if info.Country != "" && info.Currency == "" {
			t.Fatalf("resolved country must carry a currency: %+v", info)
		}
	}
}

func TestSymbolFor(t *testing.T) {
	cases := map[string]string{
		"INR": "₹",
		"usd": "$",
		"GBP": "£",
		"EUR": "€",
		"XYZ": "XYZ",
	}

	for currency, want := range cases {
		if got := SymbolFor(currency); got != want {
			t.Fatalf("SymbolFor(%q) = %q, want %q", currency, got, want)
		}
	}
}

func TestKnownCurrencies(t *testing.T) {
	known := KnownCurrencies()
	for _, currency := range []string{"INR", "USD", "GBP", "EUR", "CAD", "SGD", "AED", "AUD"} {
		if !IsKnownCurrency(currency) {
			t.Fatalf("expected %s to be known", currency)
		}
	}

	seen := map[string]bool{}
	for _, currency := range known {
		if seen[currency] {
			t.Fatalf("duplicate currency %s", currency)
		}
		seen[currency] = true
	}

	if IsKnownCurrency("BTC") {
		t.Fatalf("BTC must not be a known currency")
	}
}

func TestFormatFor(t *testing.T) {
	if got := FormatFor("inr"); got != FormatLakh {
		t.Fatalf("expected lakh format for INR, got %q", got)
	}
	if got := FormatFor("USD"); got != FormatThousand {
		t.Fatalf("expected thousand format for USD, got %q", got)
	}
	if got := FormatFor("XYZ"); got != FormatThousand {
		t.Fatalf("expected thousand format for unknown currency, got %q", got)
	}
}
