package config

import "runtime"

// Default configuration values.
const (
	DefaultMaxAttempts = 5
	DefaultFilterFlag  = "--gtest_filter"
	DefaultSummaryDir  = "."
)

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	if len(cfg.Run) == 0 {
		cfg.Run = []string{Wildcard}
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.FilterFlag == "" {
		cfg.FilterFlag = DefaultFilterFlag
	}
	if cfg.SummaryDir == "" {
		cfg.SummaryDir = DefaultSummaryDir
	}
	if cfg.Context == "" {
		cfg.Context = DefaultContext()
	}
}

// DefaultContext returns the summary label used when none is configured.
func DefaultContext() string {
	return runtime.GOOS + "_" + runtime.GOARCH
}
