package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/AndreyAkinshin/suiterun/internal/config"
	suiterunerrors "github.com/AndreyAkinshin/suiterun/internal/errors"
	"github.com/AndreyAkinshin/suiterun/internal/metrics"
	"github.com/AndreyAkinshin/suiterun/internal/model"
	"github.com/AndreyAkinshin/suiterun/internal/testparser"
)

const (
	logSuffix      = ".txt"
	retryLogSuffix = "_retry.txt"

	// exclusionPrefix negates a filter expression.
	exclusionPrefix = "-"
	// patternSeparator joins patterns inside one filter expression.
	patternSeparator = ":"
)

// Step is one planned invocation of a suite.
type Step struct {
	Filter string // empty for an unfiltered run
	Kind   string
}

// Plan returns the invocations needed for sel, in execution order.
//
//	ModeAll        one unfiltered run
//	ModeAllExcept  one run excluding every pattern, then each pattern alone
//	ModeExplicit   each pattern alone
func Plan(sel config.SuiteSelection) []Step {
	var steps []Step
	switch sel.Mode {
	case config.ModeAll:
		return []Step{{Kind: metrics.KindBundle}}
	case config.ModeAllExcept:
		steps = append(steps, Step{
			Filter: ExclusionFilter(sel.Patterns),
			Kind:   metrics.KindBundle,
		})
	}
	for _, p := range sel.Patterns {
		steps = append(steps, Step{Filter: p, Kind: metrics.KindIndividual})
	}
	return steps
}

// ExclusionFilter builds a filter expression that runs everything except patterns.
func ExclusionFilter(patterns []string) string {
	return exclusionPrefix + strings.Join(patterns, patternSeparator)
}

// Driver runs one suite at a time: it performs the planned invocations,
// parses the accumulated log, and retries every failing test.
type Driver struct {
	invoker *Invoker
	retrier *Retrier
	parser  testparser.Parser
	fs      afero.Fs
	log     *zap.Logger
	metrics *metrics.Recorder

	workDir             string
	executableExtension string
}

// LogPath returns the raw log path of a suite.
func (d *Driver) LogPath(suiteID string) string {
	return filepath.Join(d.workDir, suiteID+logSuffix)
}

// RetryLogPath returns the path of the log that collects retry attempts.
func (d *Driver) RetryLogPath(suiteID string) string {
	return filepath.Join(d.workDir, suiteID+retryLogSuffix)
}

// Executable returns the path of a suite executable.
func (d *Driver) Executable(suiteID string) string {
	return filepath.Join(d.workDir, suiteID+d.executableExtension)
}

// RunSuite executes sel and returns its report. Errors never escape: a
// suite that cannot be processed yields a degraded report with Err set and
// whatever data was gathered before the failure.
func (d *Driver) RunSuite(ctx context.Context, sel config.SuiteSelection) model.SuiteReport {
	start := time.Now()
	report := d.runSuite(ctx, sel)
	report.Duration = time.Since(start)

	d.metrics.Suite(sel.SuiteID, report.TotalTests, len(report.FailedTestNames),
		len(report.Crashes), report.Duration.Seconds())

	log := d.log.With(zap.String("suite", sel.SuiteID))
	fields := []zap.Field{
		zap.Int("tests", report.TotalTests),
		zap.Int("failed", len(report.FailedTestNames)),
		zap.Int("crashes", len(report.Crashes)),
		zap.Duration("duration", report.Duration),
	}
	if report.Err != nil {
		log.Error("suite finished with errors", append(fields, zap.Error(report.Err))...)
	} else {
		log.Info("suite finished", fields...)
	}
	return report
}

func (d *Driver) runSuite(ctx context.Context, sel config.SuiteSelection) model.SuiteReport {
	report := model.SuiteReport{SuiteID: sel.SuiteID}
	log := d.log.With(zap.String("suite", sel.SuiteID), zap.Stringer("mode", sel.Mode))

	logPath := d.LogPath(sel.SuiteID)
	if err := d.removeStale(sel.SuiteID, logPath); err != nil {
		report.Err = err
		return report
	}

	exe := d.Executable(sel.SuiteID)
	steps := Plan(sel)
	outcomes := make([]Outcome, 0, len(steps))
	var launchErrs []error

	log.Debug("running suite", zap.Int("invocations", len(steps)))
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			report.Err = err
			return report
		}
		out, err := d.invoker.RunOne(ctx, Request{
			Suite:      sel.SuiteID,
			Executable: exe,
			Filter:     step.Filter,
			LogPath:    logPath,
			Append:     i > 0,
			Kind:       step.Kind,
		})
		if err != nil {
			report.Err = err
			return report
		}
		if out.LaunchErr != nil && ctx.Err() == nil {
			launchErrs = append(launchErrs,
				suiterunerrors.Invocation(sel.SuiteID, out.Command.String(), out.LaunchErr))
		}
		outcomes = append(outcomes, out)
	}

	raw, err := afero.ReadFile(d.fs, logPath)
	if err != nil {
		report.Err = suiterunerrors.Wrap(err, "cannot read suite log "+logPath)
		return report
	}
	parsed := d.parser.Parse(string(raw))
	report.TotalTests = parsed.Total
	report.Crashes = d.crashes(log, sel.SuiteID, outcomes, parsed.Segments)

	unresolved, retries, err := d.retryFailures(ctx, sel.SuiteID, exe, parsed.Failed)
	report.FailedTestNames = unresolved
	report.Retries = retries

	launchErr := combineErrors(launchErrs)
	report.Err = combineErrors(nonNil(err, launchErr))
	return report
}

// crashes returns a description of every invocation that started, exited
// non-zero and left no test results in its log segment.
func (d *Driver) crashes(log *zap.Logger, suiteID string, outcomes []Outcome, segments []testparser.Segment) []string {
	if len(segments) != len(outcomes) {
		log.Warn("suite log segments do not match invocations",
			zap.Int("segments", len(segments)),
			zap.Int("invocations", len(outcomes)))
	}

	var crashes []string
	for i, out := range outcomes {
		if !out.Launched() || out.ExitCode == 0 || i >= len(segments) {
			continue
		}
		if seg := segments[i]; seg.Completed && seg.Total > 0 {
			continue
		}
		desc := describe(suiteID, out)
		log.Warn("test executable crashed without reporting results",
			zap.String("invocation", desc), zap.Int("exit_code", out.ExitCode))
		crashes = append(crashes, desc)
	}
	return crashes
}

// retryFailures recovers every failing test in order. Names are retried
// once per occurrence, so duplicates stay duplicates when unresolved.
func (d *Driver) retryFailures(ctx context.Context, suiteID, exe string, failed []string) ([]string, []model.RetryOutcome, error) {
	if len(failed) == 0 {
		return nil, nil, nil
	}

	retryLog := d.RetryLogPath(suiteID)
	if err := d.removeStale(suiteID, retryLog); err != nil {
		return append([]string(nil), failed...), nil, err
	}

	var unresolved []string
	var outcomes []model.RetryOutcome
	for i, name := range failed {
		outcome, err := d.retrier.Recover(ctx, suiteID, exe, name, retryLog)
		outcomes = append(outcomes, outcome)
		if !outcome.Resolved {
			unresolved = append(unresolved, name)
		}
		if err != nil {
			return append(unresolved, failed[i+1:]...), outcomes, err
		}
	}
	return unresolved, outcomes, nil
}

// removeStale deletes a log left over from a previous run.
func (d *Driver) removeStale(suiteID, path string) error {
	err := d.fs.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return suiterunerrors.LogHygiene(suiteID, path, err)
}

// describe renders an invocation as "<suite> [<filter argument>]".
func describe(suiteID string, out Outcome) string {
	parts := append([]string{suiteID}, out.Command.Args...)
	return strings.Join(parts, " ")
}

func nonNil(errs ...error) []error {
	var result []error
	for _, err := range errs {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}
