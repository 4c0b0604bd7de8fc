package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AndreyAkinshin/suiterun/internal/config"
	"github.com/AndreyAkinshin/suiterun/internal/model"
)

// newTestWriter creates a Writer with captured output for testing.
func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	w := &Writer{
		out:   stdout,
		err:   stderr,
		color: false, // Disable color for predictable test output
		quiet: false,
	}
	return w, stdout, stderr
}

func TestNew(t *testing.T) {
	w := New()
	if w == nil {
		t.Fatal("New() returned nil")
	}
	if w.out == nil {
		t.Error("out writer is nil")
	}
	if w.err == nil {
		t.Error("err writer is nil")
	}
}

func TestWriter_SetQuiet(t *testing.T) {
	w, _, _ := newTestWriter()

	w.SetQuiet(true)
	if !w.quiet {
		t.Error("SetQuiet(true) did not set quiet")
	}

	w.SetQuiet(false)
	if w.quiet {
		t.Error("SetQuiet(false) did not unset quiet")
	}
}

func TestWriter_Print(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Print("hello %s", "world")

	if got := stdout.String(); got != "hello world" {
		t.Errorf("Print() = %q, want %q", got, "hello world")
	}
}

func TestWriter_Info_Quiet(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.SetQuiet(true)

	w.Info("should not appear")

	if stdout.Len() != 0 {
		t.Errorf("Info() in quiet mode wrote %q", stdout.String())
	}
}

func TestWriter_ErrorPrefix(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.ErrorPrefix("config not found: %s", "suiterun.yaml")

	want := "suiterun: config not found: suiterun.yaml\n"
	if got := stderr.String(); got != want {
		t.Errorf("ErrorPrefix() = %q, want %q", got, want)
	}
}

func TestWriter_WarningSimple(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.WarningSimple("unknown field %q", "legacy")

	if got := stderr.String(); got != "warning: unknown field \"legacy\"\n" {
		t.Errorf("WarningSimple() = %q", got)
	}
}

func TestWriter_SuiteStart(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.SuiteStart(config.SuiteSelection{SuiteID: "rtc_unittests", Mode: config.ModeAllExcept, Patterns: []string{"A.b", "C.d"}})

	if !strings.Contains(stdout.String(), "[rtc_unittests] all tests except A.b, C.d") {
		t.Errorf("SuiteStart() = %q", stdout.String())
	}
}

func TestWriter_SuiteResult(t *testing.T) {
	tests := []struct {
		name       string
		report     model.SuiteReport
		wantStdout string
		wantStderr string
	}{
		{
			name:       "passed",
			report:     model.SuiteReport{SuiteID: "a", TotalTests: 12},
			wantStdout: "[a] 12 tests, 0 failed done\n",
		},
		{
			name:       "failed",
			report:     model.SuiteReport{SuiteID: "b", TotalTests: 3, FailedTestNames: []string{"Foo.Bar"}},
			wantStdout: "[b] 3 tests, 1 failed\n    x Foo.Bar\n",
		},
		{
			name:       "crashed",
			report:     model.SuiteReport{SuiteID: "c", Crashes: []string{"c"}},
			wantStdout: "[c] 0 tests, 0 failed\n    crashed: c\n",
		},
		{
			name:       "error",
			report:     model.SuiteReport{SuiteID: "d", Err: errors.New("cannot delete stale log")},
			wantStderr: "[d] failed: cannot delete stale log\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, stdout, stderr := newTestWriter()
			w.SuiteResult(tt.report)
			if got := stdout.String(); got != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", got, tt.wantStdout)
			}
			if got := stderr.String(); got != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", got, tt.wantStderr)
			}
		})
	}
}

func TestWriter_SuiteResult_QuietHidesPassing(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.SetQuiet(true)

	w.SuiteResult(model.SuiteReport{SuiteID: "a", TotalTests: 1})

	if stdout.Len() != 0 {
		t.Errorf("SuiteResult() in quiet mode wrote %q", stdout.String())
	}
}

func TestWriter_FinalVerdict(t *testing.T) {
	tests := []struct {
		name    string
		summary model.RunSummary
		want    string
	}{
		{
			name:    "all passed",
			summary: model.RunSummary{Suites: []model.SuiteReport{{SuiteID: "a", TotalTests: 5}}, TotalTests: 5},
			want:    "All unit tests passed.",
		},
		{
			name:    "one failure",
			summary: model.RunSummary{Suites: []model.SuiteReport{{SuiteID: "a", FailedTestNames: []string{"X.y"}}}, TotalFailed: 1},
			want:    "1 unit test has failed. You can see the details in file /logs/UnitTests_x.txt",
		},
		{
			name:    "several failures",
			summary: model.RunSummary{Suites: []model.SuiteReport{{SuiteID: "a", FailedTestNames: []string{"X.y", "X.z"}}}, TotalFailed: 2},
			want:    "2 unit tests have failed. You can see the details in file /logs/UnitTests_x.txt",
		},
		{
			name:    "crash",
			summary: model.RunSummary{Suites: []model.SuiteReport{{SuiteID: "a", Crashes: []string{"a"}}}, Crashes: 1},
			want:    "1 invocation(s) crashed without reporting results.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, stdout, _ := newTestWriter()
			w.FinalVerdict(tt.summary, "/logs/UnitTests_x.txt", 1500*time.Millisecond)
			got := stdout.String()
			if !strings.Contains(got, tt.want) {
				t.Errorf("FinalVerdict() = %q, want to contain %q", got, tt.want)
			}
			if !strings.Contains(got, "Total execution time: 1.5s") {
				t.Errorf("FinalVerdict() = %q, missing execution time", got)
			}
		})
	}
}

func TestWriter_FinalVerdict_CrashIsNotAPass(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.FinalVerdict(model.RunSummary{Suites: []model.SuiteReport{{SuiteID: "a", Crashes: []string{"a"}}}, Crashes: 1}, "x", 0)

	if strings.Contains(stdout.String(), "All unit tests passed.") {
		t.Errorf("FinalVerdict() reported success for a crashed run: %q", stdout.String())
	}
}

func TestWriter_RunSummary(t *testing.T) {
	w, stdout, _ := newTestWriter()
	s := model.RunSummary{SummaryPath: "logs/UnitTests_win_x64_Release.txt"}
	s.Add(model.SuiteReport{
		SuiteID:    "rtc_unittests",
		TotalTests: 50,
		Retries:    []model.RetryOutcome{{TestName: "A.b", AttemptsMade: 2, Resolved: true}},
	})
	s.Add(model.SuiteReport{SuiteID: "modules_unittests", TotalTests: 10, FailedTestNames: []string{"X.y"}})

	w.RunSummary("win_x64_Release", s)

	got := stdout.String()
	for _, want := range []string{
		"=== Win X64 Release Test Results ===",
		"rtc_unittests",
		"modules_unittests",
		"Suites: 2 run, 1 failed",
		"Summary log: logs/UnitTests_win_x64_Release.txt",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RunSummary() output missing %q:\n%s", want, got)
		}
	}
}

func TestWriter_SuiteList(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.SuiteList([]config.SuiteSelection{
		{SuiteID: "rtc_unittests", Mode: config.ModeAll},
		{SuiteID: "modules_unittests", Mode: config.ModeExplicit, Patterns: []string{"A.*", "B.c"}},
	})

	got := stdout.String()
	for _, want := range []string{"rtc_unittests", "all", "explicit", "A.*, B.c"} {
		if !strings.Contains(got, want) {
			t.Errorf("SuiteList() output missing %q:\n%s", want, got)
		}
	}
}

func TestDescribeSelection(t *testing.T) {
	tests := []struct {
		sel  config.SuiteSelection
		want string
	}{
		{config.SuiteSelection{Mode: config.ModeAll}, "all tests"},
		{config.SuiteSelection{Mode: config.ModeAllExcept, Patterns: []string{"a"}}, "all tests except a"},
		{config.SuiteSelection{Mode: config.ModeExplicit, Patterns: []string{"a", "b"}}, "a, b"},
	}
	for _, tt := range tests {
		if got := DescribeSelection(tt.sel); got != tt.want {
			t.Errorf("DescribeSelection(%v) = %q, want %q", tt.sel, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{1234 * time.Microsecond, "1ms"},
		{1500 * time.Millisecond, "1.5s"},
		{61234 * time.Millisecond, "1m1.2s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
