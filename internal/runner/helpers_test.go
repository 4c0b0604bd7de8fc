package runner

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/AndreyAkinshin/suiterun/internal/config"
	"github.com/AndreyAkinshin/suiterun/internal/metrics"
	"github.com/AndreyAkinshin/suiterun/internal/testing/mocks"
)

const (
	testWorkDir = "/work"
	testFlag    = "--gtest_filter"
)

var testNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

type harness struct {
	fs       afero.Fs
	launcher *mocks.Launcher
	metrics  *metrics.Recorder
	runner   *Runner
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(testWorkDir, 0o755))
	return newHarnessFS(t, fsys, opts)
}

func newHarnessFS(t *testing.T, fsys afero.Fs, opts Options) *harness {
	t.Helper()
	if opts.WorkDir == "" {
		opts.WorkDir = testWorkDir
	}
	if opts.SummaryDir == "" {
		opts.SummaryDir = "/summary"
	}
	if opts.Context == "" {
		opts.Context = "test"
	}
	m := mocks.NewLauncher(testFlag)
	rec := metrics.New("test-run")
	r := New(m, fsys, zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel)), rec, opts)
	r.now = func() time.Time { return testNow }
	return &harness{fs: fsys, launcher: m, metrics: rec, runner: r}
}

func (h *harness) readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(h.fs, path)
	require.NoError(t, err)
	return string(data)
}

func selection(t *testing.T, id string, patterns ...string) config.SuiteSelection {
	t.Helper()
	sel, err := config.NewSelection(id, patterns)
	require.NoError(t, err)
	return sel
}
