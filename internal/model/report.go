// Package model provides shared data types used across multiple internal packages.
// This package exists to break import cycles between runner, summary and output,
// which all need the per-suite report types.
package model

import "time"

// SuiteReport is the final result of running one suite.
type SuiteReport struct {
	SuiteID    string
	TotalTests int
	// FailedTestNames lists failures still unresolved after retries, in
	// the order they were parsed. Duplicates are kept.
	FailedTestNames []string
	// Crashes describes invocations that exited non-zero without reporting
	// any results, e.g. "rtc_unittests --gtest_filter=Foo.*".
	Crashes  []string
	Retries  []RetryOutcome
	Duration time.Duration
	// Err is set when the suite could not be processed completely. The
	// remaining fields then hold whatever was gathered before the failure.
	Err error
}

// Failed reports whether the suite has unresolved failures, crashes or an error.
func (r SuiteReport) Failed() bool {
	return len(r.FailedTestNames) > 0 || len(r.Crashes) > 0 || r.Err != nil
}

// RetryOutcome records the recovery of one failing test.
type RetryOutcome struct {
	TestName     string
	AttemptsMade int
	Resolved     bool
}

// RunSummary contains the aggregated results of a run.
type RunSummary struct {
	Suites      []SuiteReport
	TotalTests  int
	TotalFailed int
	Crashes     int
	// SummaryPath is the summary log written for the run, if any.
	SummaryPath   string
	TotalDuration time.Duration
}

// Add folds a suite report into the run totals.
func (s *RunSummary) Add(r SuiteReport) {
	s.Suites = append(s.Suites, r)
	s.TotalTests += r.TotalTests
	s.TotalFailed += len(r.FailedTestNames)
	s.Crashes += len(r.Crashes)
}

// FailedSuites returns the number of suites that did not pass cleanly.
func (s *RunSummary) FailedSuites() int {
	n := 0
	for _, r := range s.Suites {
		if r.Failed() {
			n++
		}
	}
	return n
}
