// Package errors provides structured error types, result codes and exit codes for suiterun.
package errors

import (
	"errors"
	"fmt"

	"github.com/AndreyAkinshin/suiterun/pkg/suiterun"
)

// Exit codes returned by the suiterun process.
const (
	ExitSuccess          = suiterun.ExitSuccess     // Success
	ExitFailure          = suiterun.ExitFailure     // Tests failed, suites crashed or run aborted
	ExitConfigError      = suiterun.ExitConfigError // Invalid config, unknown suite and the like
	ExitEnvironmentError = suiterun.ExitEnvError    // Working directory missing
)

// Code is the engine result code reported to the calling build driver.
type Code int

const (
	NoError Code = iota
	ErrWorkingDirNotExist
	ErrLogDeletionFailed
	ErrExecutionFailed
	ErrSummaryFailed
	ErrConfig
)

var codeNames = map[Code]string{
	NoError:               "NO_ERROR",
	ErrWorkingDirNotExist: "ERROR_WORKING_DIR_NOT_EXIST",
	ErrLogDeletionFailed:  "ERROR_LOG_DELETION_FAILED",
	ErrExecutionFailed:    "ERROR_EXECUTION_FAILED",
	ErrSummaryFailed:      "ERROR_SUMMARY_FAILED",
	ErrConfig:             "ERROR_CONFIG",
}

var codeMessages = map[Code]string{
	NoError:               "no error",
	ErrWorkingDirNotExist: "working directory with test binaries doesn't exist",
	ErrLogDeletionFailed:  "failed deleting a stale log file",
	ErrExecutionFailed:    "test executable could not be started",
	ErrSummaryFailed:      "failed writing the summary log",
	ErrConfig:             "invalid configuration",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_UNKNOWN(%d)", int(c))
}

// Message returns a human-readable description of the code.
func (c Code) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "unknown error"
}

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindValidation
	KindEnvironment
	KindLogHygiene
	KindInvocation
)

// SuiterunError is the base error type for suiterun.
type SuiterunError struct {
	Kind    ErrorKind
	Code    Code
	Message string
	Suite   string // Suite identifier if applicable
	Cause   error  // Underlying error
}

func (e *SuiterunError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Suite != "" {
		return fmt.Sprintf("[%s] %s", e.Suite, msg)
	}
	return msg
}

func (e *SuiterunError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *SuiterunError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation, KindNotFound:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitFailure
	}
}

// Config creates a new configuration error.
func Config(message string) *SuiterunError {
	return &SuiterunError{
		Kind:    KindConfig,
		Code:    ErrConfig,
		Message: message,
	}
}

// Environment creates a new environment error. Environment errors abort the whole run.
func Environment(code Code, message string) *SuiterunError {
	return &SuiterunError{
		Kind:    KindEnvironment,
		Code:    code,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(code Code, format string, args ...interface{}) *SuiterunError {
	return Environment(code, fmt.Sprintf(format, args...))
}

// WithCause sets the underlying error and returns e.
func (e *SuiterunError) WithCause(cause error) *SuiterunError {
	e.Cause = cause
	return e
}

// LogHygiene creates an error for a stale log that could not be removed.
// It is fatal for the suite only.
func LogHygiene(suite, path string, cause error) *SuiterunError {
	return &SuiterunError{
		Kind:    KindLogHygiene,
		Code:    ErrLogDeletionFailed,
		Suite:   suite,
		Message: fmt.Sprintf("cannot delete stale log %s", path),
		Cause:   cause,
	}
}

// Invocation creates an error for a test executable that could not be started.
func Invocation(suite, commandLine string, cause error) *SuiterunError {
	return &SuiterunError{
		Kind:    KindInvocation,
		Code:    ErrExecutionFailed,
		Suite:   suite,
		Message: fmt.Sprintf("failed to launch %q", commandLine),
		Cause:   cause,
	}
}

// Summary creates an error for a summary log that could not be written.
func Summary(path string, cause error) *SuiterunError {
	return &SuiterunError{
		Kind:    KindRuntime,
		Code:    ErrSummaryFailed,
		Message: fmt.Sprintf("cannot write summary %s", path),
		Cause:   cause,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *SuiterunError {
	return &SuiterunError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// WrapConfig wraps a configuration loading or validation failure.
// Errors that already carry a kind are returned unchanged.
func WrapConfig(err error, message string) error {
	var se *SuiterunError
	if errors.As(err, &se) {
		return err
	}
	return &SuiterunError{
		Kind:    KindConfig,
		Code:    ErrConfig,
		Message: message,
		Cause:   err,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *SuiterunError {
	return &SuiterunError{
		Kind:    KindNotFound,
		Code:    ErrConfig,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var se *SuiterunError
	if errors.As(err, &se) {
		return se.ExitCode()
	}
	return ExitFailure
}

// GetCode returns the result code carried by err, or NoError for nil.
// Errors that are not *SuiterunError map to ErrExecutionFailed.
func GetCode(err error) Code {
	if err == nil {
		return NoError
	}
	var se *SuiterunError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrExecutionFailed
}

// IsKind reports whether err is a *SuiterunError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *SuiterunError
	return errors.As(err, &se) && se.Kind == kind
}
