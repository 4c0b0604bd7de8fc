// Package summary writes the aggregated summary log of a run.
package summary

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"

	suiterunerrors "github.com/AndreyAkinshin/suiterun/internal/errors"
	"github.com/AndreyAkinshin/suiterun/internal/model"
)

const (
	suiteSeparator   = "========================"
	detailsSeparator = "-----------------------------"
	totalsSeparator  = "***********************************"

	// TimestampLayout is appended to the file name when the default name is taken.
	TimestampLayout = "2006-01-02_15-04-05"
)

// FileName returns the default summary file name for a run context.
func FileName(context string) string {
	if context == "" {
		return "UnitTests.txt"
	}
	return "UnitTests_" + context + ".txt"
}

// Accumulator aggregates suite reports into running totals and writes them
// to the summary log. One Accumulator serves exactly one run.
type Accumulator struct {
	fs     afero.Fs
	path   string
	file   afero.File
	w      *bufio.Writer
	totals model.RunSummary
	closed bool
}

// Open creates the summary log in dir. An existing file is never
// overwritten: a timestamp suffix derived from now is added instead.
func Open(fsys afero.Fs, dir, context string, now time.Time) (*Accumulator, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, suiterunerrors.Summary(dir, err)
	}

	path, err := freePath(fsys, dir, context, now)
	if err != nil {
		return nil, err
	}

	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, suiterunerrors.Summary(path, err)
	}

	return &Accumulator{
		fs:     fsys,
		path:   path,
		file:   f,
		w:      bufio.NewWriter(f),
		totals: model.RunSummary{SummaryPath: path},
	}, nil
}

// freePath picks the first unused summary path: the default name, then the
// timestamped name, then the timestamped name with a counter.
func freePath(fsys afero.Fs, dir, context string, now time.Time) (string, error) {
	name := FileName(context)
	candidate := filepath.Join(dir, name)

	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)] + "_" + now.Format(TimestampLayout)

	for i := 0; ; i++ {
		exists, err := afero.Exists(fsys, candidate)
		if err != nil {
			return "", suiterunerrors.Summary(candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		suffix := ""
		if i > 0 {
			suffix = "_" + strconv.Itoa(i)
		}
		candidate = filepath.Join(dir, stem+suffix+ext)
	}
}

// Path returns the path of the summary log.
func (a *Accumulator) Path() string {
	return a.path
}

// Totals returns the running test and failure totals.
func (a *Accumulator) Totals() (tests, failed int) {
	return a.totals.TotalTests, a.totals.TotalFailed
}

// Summary returns a copy of the aggregated results recorded so far.
func (a *Accumulator) Summary() model.RunSummary {
	s := a.totals
	s.Suites = append([]model.SuiteReport(nil), a.totals.Suites...)
	return s
}

// Record adds a suite report to the totals and appends its block to the log.
// Totals are updated even if writing fails.
func (a *Accumulator) Record(r model.SuiteReport) error {
	if a.closed {
		return suiterunerrors.Summary(a.path, os.ErrClosed)
	}
	a.totals.Add(r)

	a.line(r.SuiteID)
	a.line(suiteSeparator)
	details := 0
	for _, name := range r.FailedTestNames {
		a.line(name)
		details++
	}
	for _, c := range r.Crashes {
		a.line("CRASHED: " + c)
		details++
	}
	if r.Err != nil {
		a.line("ERROR: " + r.Err.Error())
		details++
	}
	if details > 0 {
		a.line(detailsSeparator)
	}
	a.line(fmt.Sprintf("Total number of tests: %d", r.TotalTests))
	a.line(fmt.Sprintf("Total number of failed tests: %d", len(r.FailedTestNames)))
	a.line(suiteSeparator)
	a.line("\n\n")

	if err := a.w.Flush(); err != nil {
		return suiterunerrors.Summary(a.path, err)
	}
	return nil
}

// Finalize writes the grand totals and closes the log. Calls after the
// first are no-ops.
func (a *Accumulator) Finalize(elapsed time.Duration) error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.totals.TotalDuration = elapsed

	a.line(totalsSeparator)
	a.line(fmt.Sprintf("TOTAL NUMBER OF TESTS: %d", a.totals.TotalTests))
	a.line(fmt.Sprintf("TOTAL NUMBER OF FAILED TESTS: %d", a.totals.TotalFailed))

	flushErr := a.w.Flush()
	closeErr := a.file.Close()
	if flushErr != nil {
		return suiterunerrors.Summary(a.path, flushErr)
	}
	if closeErr != nil {
		return suiterunerrors.Summary(a.path, closeErr)
	}
	return nil
}

// line buffers s followed by a newline. Write errors surface on Flush.
func (a *Accumulator) line(s string) {
	_, _ = a.w.WriteString(s)
	_ = a.w.WriteByte('\n')
}
