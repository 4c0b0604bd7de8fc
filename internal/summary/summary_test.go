package summary

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	suiterunerrors "github.com/AndreyAkinshin/suiterun/internal/errors"
	"github.com/AndreyAkinshin/suiterun/internal/model"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(data)
}

func TestFileName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "UnitTests_win_x64_Release.txt", FileName("win_x64_Release"))
	assert.Equal(t, "UnitTests.txt", FileName(""))
}

func TestAccumulator_TwoSuites(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()

	acc, err := Open(fsys, "logs", "linux_x64", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("logs", "UnitTests_linux_x64.txt"), acc.Path())

	require.NoError(t, acc.Record(model.SuiteReport{SuiteID: "rtc_unittests", TotalTests: 50}))
	require.NoError(t, acc.Record(model.SuiteReport{
		SuiteID:         "modules_unittests",
		TotalTests:      10,
		FailedTestNames: []string{"AudioDeviceTest.StartStop"},
	}))
	require.NoError(t, acc.Finalize(time.Second))

	tests, failed := acc.Totals()
	assert.Equal(t, 60, tests)
	assert.Equal(t, 1, failed)

	want := "rtc_unittests\n" +
		"========================\n" +
		"Total number of tests: 50\n" +
		"Total number of failed tests: 0\n" +
		"========================\n" +
		"\n\n\n" +
		"modules_unittests\n" +
		"========================\n" +
		"AudioDeviceTest.StartStop\n" +
		"-----------------------------\n" +
		"Total number of tests: 10\n" +
		"Total number of failed tests: 1\n" +
		"========================\n" +
		"\n\n\n" +
		"***********************************\n" +
		"TOTAL NUMBER OF TESTS: 60\n" +
		"TOTAL NUMBER OF FAILED TESTS: 1\n"
	assert.Equal(t, want, readFile(t, fsys, acc.Path()))
}

func TestAccumulator_CrashesAndErrors(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	acc, err := Open(fsys, ".", "ctx", fixedNow)
	require.NoError(t, err)

	require.NoError(t, acc.Record(model.SuiteReport{
		SuiteID: "video_unittests",
		Crashes: []string{"video_unittests --gtest_filter=Capture.*"},
		Err:     errors.New("cannot delete stale log"),
	}))
	require.NoError(t, acc.Finalize(0))

	content := readFile(t, fsys, acc.Path())
	assert.Contains(t, content, "CRASHED: video_unittests --gtest_filter=Capture.*\n")
	assert.Contains(t, content, "ERROR: cannot delete stale log\n-----------------------------\n")
	assert.Contains(t, content, "TOTAL NUMBER OF FAILED TESTS: 0\n")
	assert.Equal(t, 1, acc.Summary().Crashes)
}

func TestAccumulator_MonotonicTotals(t *testing.T) {
	t.Parallel()
	acc, err := Open(afero.NewMemMapFs(), ".", "ctx", fixedNow)
	require.NoError(t, err)

	reports := []model.SuiteReport{
		{SuiteID: "a", TotalTests: 7, FailedTestNames: []string{"A.x", "A.x"}},
		{SuiteID: "b", TotalTests: 0},
		{SuiteID: "c", TotalTests: 13, FailedTestNames: []string{"C.y"}},
	}
	sumTests, sumFailed := 0, 0
	for _, r := range reports {
		require.NoError(t, acc.Record(r))
		sumTests += r.TotalTests
		sumFailed += len(r.FailedTestNames)

		tests, failed := acc.Totals()
		assert.Equal(t, sumTests, tests)
		assert.Equal(t, sumFailed, failed)
	}
	require.NoError(t, acc.Finalize(0))
}

func TestOpen_RenameOnConflict(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "UnitTests_ctx.txt", []byte("previous run"), 0o644))

	acc, err := Open(fsys, ".", "ctx", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "UnitTests_ctx_2024-03-05_14-07-09.txt", acc.Path())
	require.NoError(t, acc.Finalize(0))

	assert.Equal(t, "previous run", readFile(t, fsys, "UnitTests_ctx.txt"))

	// Same second again: a counter disambiguates.
	acc2, err := Open(fsys, ".", "ctx", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "UnitTests_ctx_2024-03-05_14-07-09_1.txt", acc2.Path())
	require.NoError(t, acc2.Finalize(0))
}

func TestOpen_CreatesDirectory(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	acc, err := Open(fsys, filepath.Join("out", "summaries"), "ctx", fixedNow)
	require.NoError(t, err)
	require.NoError(t, acc.Finalize(0))

	exists, err := afero.Exists(fsys, filepath.Join("out", "summaries", "UnitTests_ctx.txt"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOpen_ReadOnlyFs(t *testing.T) {
	t.Parallel()
	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, err := Open(fsys, ".", "ctx", fixedNow)
	require.Error(t, err)
	assert.Equal(t, suiterunerrors.ErrSummaryFailed, suiterunerrors.GetCode(err))
}

func TestFinalize_Once(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	acc, err := Open(fsys, ".", "ctx", fixedNow)
	require.NoError(t, err)

	require.NoError(t, acc.Finalize(0))
	require.NoError(t, acc.Finalize(0))

	content := readFile(t, fsys, acc.Path())
	assert.Equal(t, 1, strings.Count(content, "TOTAL NUMBER OF TESTS"))

	err = acc.Record(model.SuiteReport{SuiteID: "late"})
	assert.Error(t, err)
}
