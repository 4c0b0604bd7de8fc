// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/suiterun/internal/config"
	"github.com/AndreyAkinshin/suiterun/internal/model"
)

// Writer handles CLI output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	w.colored(green, format, args...)
}

// ErrorPrefix prints an error message with suiterun prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%ssuiterun:%s %s", red, reset, msg)
	} else {
		w.Errorln("suiterun: %s", msg)
	}
}

// WarningSimple prints a warning message to stderr.
func (w *Writer) WarningSimple(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%swarning:%s %s", yellow, reset, msg)
	} else {
		w.Errorln("warning: %s", msg)
	}
}

// SuiteStart prints the start of a suite with enhanced visibility.
func (w *Writer) SuiteStart(sel config.SuiteSelection) {
	if w.quiet {
		return
	}
	// Empty line for visual separation
	w.Println("")
	label := fmt.Sprintf("─── [%s] %s ───", sel.SuiteID, DescribeSelection(sel))
	if w.color {
		w.Println("%s%s%s", bold+cyan, label, reset)
	} else {
		w.Println("%s", label)
	}
}

// SuiteResult prints the outcome of a single suite.
func (w *Writer) SuiteResult(r model.SuiteReport) {
	if w.quiet && !r.Failed() {
		return
	}
	counts := fmt.Sprintf("%d tests, %d failed", r.TotalTests, len(r.FailedTestNames))
	switch {
	case r.Err != nil:
		if w.color {
			w.Errorln("%s[%s] failed:%s %v", red, r.SuiteID, reset, r.Err)
		} else {
			w.Errorln("[%s] failed: %v", r.SuiteID, r.Err)
		}
	case r.Failed():
		if w.color {
			w.Println("%s[%s]%s %s %s✗%s", red, r.SuiteID, reset, counts, red, reset)
		} else {
			w.Println("[%s] %s", r.SuiteID, counts)
		}
	default:
		if w.color {
			w.Println("%s[%s]%s %s %s✓%s", green, r.SuiteID, reset, counts, green, reset)
		} else {
			w.Println("[%s] %s done", r.SuiteID, counts)
		}
	}
	for _, name := range r.FailedTestNames {
		w.Println("    x %s", name)
	}
	for _, c := range r.Crashes {
		w.Println("    crashed: %s", c)
	}
}

// SummaryHeader prints a summary section header.
func (w *Writer) SummaryHeader(title string) {
	w.Println("")
	if w.color {
		w.Println("%s=== %s ===%s", bold+cyan, title, reset)
	} else {
		w.Println("=== %s ===", title)
	}
	w.Println("")
}

// SummaryItem prints a labeled summary item with value.
func (w *Writer) SummaryItem(label, value string) {
	if w.color {
		w.Println("  %s%s:%s %s", dim, label, reset, value)
	} else {
		w.Println("  %s: %s", label, value)
	}
}

// SuiteTable renders one row per suite.
func (w *Writer) SuiteTable(s model.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w.out)
	if w.color {
		t.SetStyle(table.StyleColoredBright)
	} else {
		t.SetStyle(table.StyleLight)
	}
	t.AppendHeader(table.Row{"Suite", "Tests", "Failed", "Recovered", "Crashes", "Duration"})
	for _, r := range s.Suites {
		recovered := 0
		for _, o := range r.Retries {
			if o.Resolved {
				recovered++
			}
		}
		t.AppendRow(table.Row{r.SuiteID, r.TotalTests, len(r.FailedTestNames), recovered, len(r.Crashes), formatDuration(r.Duration)})
	}
	t.AppendFooter(table.Row{"Total", s.TotalTests, s.TotalFailed, "", s.Crashes, formatDuration(s.TotalDuration)})
	t.Render()
}

// RunSummary prints the run header, the suite table and totals.
func (w *Writer) RunSummary(runContext string, s model.RunSummary) {
	title := "Test Results"
	if runContext != "" {
		title = cases.Title(language.English).String(strings.ReplaceAll(runContext, "_", " ")) + " Test Results"
	}
	w.SummaryHeader(title)
	if len(s.Suites) > 0 {
		w.SuiteTable(s)
		w.Println("")
	}
	w.SummaryItem("Suites", fmt.Sprintf("%d run, %d failed", len(s.Suites), s.FailedSuites()))
	if s.SummaryPath != "" {
		w.SummaryItem("Summary log", s.SummaryPath)
	}
}

// FinalVerdict prints the closing message of a run. summaryPath should be
// absolute so the operator can open it directly.
func (w *Writer) FinalVerdict(s model.RunSummary, summaryPath string, elapsed time.Duration) {
	w.Println("")
	switch {
	case s.TotalFailed == 1:
		w.colored(red, "1 unit test has failed. You can see the details in file %s", summaryPath)
	case s.TotalFailed > 1:
		w.colored(red, "%d unit tests have failed. You can see the details in file %s", s.TotalFailed, summaryPath)
	case s.FailedSuites() == 0:
		w.colored(green, "All unit tests passed.")
	}
	if s.Crashes > 0 {
		w.colored(red, "%d invocation(s) crashed without reporting results.", s.Crashes)
	}
	if n := erroredSuites(s); n > 0 {
		w.colored(red, "%d suite(s) could not be processed completely.", n)
	}
	w.Println("Total execution time: %s", formatDuration(elapsed))
}

func erroredSuites(s model.RunSummary) int {
	n := 0
	for _, r := range s.Suites {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// SuiteList prints the configured suites with their selection.
func (w *Writer) SuiteList(selections []config.SuiteSelection) {
	t := table.NewWriter()
	t.SetOutputMirror(w.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Suite", "Mode", "Patterns"})
	for _, sel := range selections {
		t.AppendRow(table.Row{sel.SuiteID, sel.Mode.String(), strings.Join(sel.Patterns, ", ")})
	}
	t.Render()
}

// ValidationSuccess prints a validation success message.
func (w *Writer) ValidationSuccess(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s%s%s %s", green, "✓", reset, msg)
	} else {
		w.Println("%s", msg)
	}
}

// DescribeSelection renders a selection for humans.
func DescribeSelection(sel config.SuiteSelection) string {
	switch sel.Mode {
	case config.ModeAll:
		return "all tests"
	case config.ModeAllExcept:
		return fmt.Sprintf("all tests except %s", strings.Join(sel.Patterns, ", "))
	default:
		return strings.Join(sel.Patterns, ", ")
	}
}

func (w *Writer) colored(color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s%s%s", color, msg, reset)
	} else {
		w.Println("%s", msg)
	}
}

// formatDuration rounds d for display.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	// Simple check - could be enhanced with golang.org/x/term
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)
