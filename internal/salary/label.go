package salary

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/linkedintel/internal/location"
)

const lakh = 100000

// FormatLabel renders a salary range for display, e.g. "₹12.0L - ₹18.5L" or "$120k - $150k".
func FormatLabel(minValue, maxValue int, currency string) string {
	if minValue == maxValue {
		return formatAmount(minValue, currency)
	}
	return formatAmount(minValue, currency) + " - " + formatAmount(maxValue, currency)
}

func formatAmount(n int, currency string) string {
	symbol := location.SymbolFor(currency)
	if strings.TrimSpace(currency) == "" {
		symbol = ""
	}

	if location.FormatFor(currency) == location.FormatLakh {
		if n >= lakh {
			return fmt.Sprintf("%s%.1fL", symbol, float64(n)/lakh)
		}
		return fmt.Sprintf("%s%dk", symbol, thousands(n))
	}

	if n >= 1000 {
		return fmt.Sprintf("%s%dk", symbol, thousands(n))
	}
	return fmt.Sprintf("%s%d", symbol, n)
}

func thousands(n int) int {
	return int(math.Round(float64(n) / 1000))
}
