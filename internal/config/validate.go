package config

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxAttemptsLimit bounds max_attempts so a misconfigured run cannot retry forever.
const MaxAttemptsLimit = 100

// Suite identifiers double as executable and log file names.
var suiteIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration for errors and returns warnings for non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if cfg.Suites.Len() == 0 {
		return nil, &ValidationError{Field: "suites", Message: "at least one suite is required"}
	}

	for _, e := range cfg.Suites.Entries() {
		if err := ValidateSuiteID(e.ID); err != nil {
			return nil, err
		}
		if _, err := NewSelection(e.ID, e.Patterns); err != nil {
			return nil, err
		}
	}

	if err := validateRun(cfg); err != nil {
		return nil, err
	}

	if cfg.MaxAttempts < 1 || cfg.MaxAttempts > MaxAttemptsLimit {
		return nil, &ValidationError{
			Field:   "max_attempts",
			Message: fmt.Sprintf("must be between 1 and %d", MaxAttemptsLimit),
		}
	}

	if !strings.HasPrefix(cfg.FilterFlag, "-") {
		return nil, &ValidationError{Field: "filter_flag", Message: `must start with "-"`}
	}

	for key := range cfg.Env {
		if key == "" || strings.ContainsAny(key, "=\x00") {
			return nil, &ValidationError{Field: "env." + key, Message: "invalid environment variable name"}
		}
	}

	if cfg.MaxAttempts == 1 {
		warnings = append(warnings, "max_attempts is 1: each failing test gets a single retry")
	}

	return warnings, nil
}

func validateRun(cfg *Config) error {
	for i, id := range cfg.Run {
		if id == Wildcard {
			continue
		}
		if _, ok := cfg.Suites.Get(id); !ok {
			return &ValidationError{
				Field:   fmt.Sprintf("run[%d]", i),
				Message: fmt.Sprintf("suite %q is not configured", id),
			}
		}
	}
	return nil
}

// ValidateSuiteID checks if a suite identifier is valid.
func ValidateSuiteID(id string) error {
	if id == "" {
		return &ValidationError{Field: "suite id", Message: "is required"}
	}
	if !suiteIDPattern.MatchString(id) {
		return &ValidationError{
			Field:   fmt.Sprintf("suites.%s", id),
			Message: "suite id must match pattern ^[A-Za-z0-9][A-Za-z0-9_.-]*$",
		}
	}
	return nil
}
