package salarydb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/linkedintel/internal/location"
	"github.com/spigell/linkedintel/internal/salary"
)

// NewValidator returns a validator that understands the "currency" tag.
func NewValidator() *validator.Validate {
	validate := validator.New()
	// Registration only fails for empty tags or nil functions.
	_ = validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return location.IsKnownCurrency(fl.Field().String())
	})
	return validate
}

// Validate checks every entry: positive figures, min <= median <= max and a known
// currency. All problems are reported together.
func Validate(entries []salary.Entry) error {
	validate := NewValidator()

	var errs []error
	for i := range entries {
		if err := validate.Struct(&entries[i]); err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s, %s): %s", i+1, entries[i].Title, entries[i].Company, describe(err)))
		}
	}

	return errors.Join(errs...)
}

func describe(err error) string {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return err.Error()
	}

	parts := make([]string, 0, len(invalid))
	for _, fe := range invalid {
		switch fe.Tag() {
		case "currency":
			parts = append(parts, fmt.Sprintf("invalid currency %q", fe.Value()))
		case "ltefield":
			parts = append(parts, "salaryMin > salaryMedian")
		case "gtefield":
			parts = append(parts, "salaryMedian > salaryMax")
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be > 0", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
