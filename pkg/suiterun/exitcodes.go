// Package suiterun provides public constants for build drivers integrating with suiterun.
package suiterun

// Exit codes returned by the suiterun CLI.
// These constants allow external tools to check exit codes symbolically
// rather than using magic numbers.
const (
	// ExitSuccess indicates every selected suite ran and no failure survived retries.
	ExitSuccess = 0

	// ExitFailure indicates unresolved test failures, crashed invocations or an aborted run.
	ExitFailure = 1

	// ExitConfigError indicates a configuration error (invalid config, unknown suite, etc.).
	ExitConfigError = 2

	// ExitEnvError indicates an environment error (working directory with test binaries missing).
	ExitEnvError = 3
)
