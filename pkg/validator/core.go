package validator

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation failure for one field.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors represents a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Rule represents a single validation rule.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply executes the rules in order and returns the collected
// ValidationErrors, or nil when every rule passes.
func Apply(rules ...Rule) error {
	var errs ValidationErrors

	for _, rule := range rules {
		if !rule.Check() {
			errs = append(errs, rule.Error)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
