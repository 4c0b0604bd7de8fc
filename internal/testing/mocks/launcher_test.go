package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/suiterun/internal/launcher"
	"github.com/AndreyAkinshin/suiterun/internal/testparser"
)

const flag = "--gtest_filter"

func TestLauncher_ScriptedSequence(t *testing.T) {
	t.Parallel()
	m := NewLauncher(flag).On("Foo.Bar", Failing(1, "Foo.Bar"), Passing(1))
	cmd := launcher.Command{Path: "suite", Args: []string{flag + "=Foo.Bar"}}

	first, err := m.Launch(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ExitCode)

	second, err := m.Launch(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ExitCode)

	// Exhausted scripts repeat the last response.
	third, err := m.Launch(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 0, third.ExitCode)

	assert.Equal(t, 3, m.CallCount("Foo.Bar"))
}

func TestLauncher_UnscriptedPasses(t *testing.T) {
	t.Parallel()
	m := NewLauncher(flag)
	res, err := m.Launch(context.Background(), launcher.Command{Path: "suite"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{Unfiltered}, m.Filters())
}

func TestLauncher_LaunchError(t *testing.T) {
	t.Parallel()
	boom := errors.New("exec format error")
	m := NewLauncher(flag).On(Unfiltered, Response{Err: boom})

	res, err := m.Launch(context.Background(), launcher.Command{Path: "suite"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, -1, res.ExitCode)
}

func TestLauncher_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLauncher(flag).Launch(ctx, launcher.Command{Path: "suite"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLauncher_Reset(t *testing.T) {
	t.Parallel()
	m := NewLauncher(flag).On(Unfiltered, Failing(2, "A.b"), Passing(2))
	_, _ = m.Launch(context.Background(), launcher.Command{Path: "suite"})
	m.Reset()

	assert.Empty(t, m.Calls())
	res, _ := m.Launch(context.Background(), launcher.Command{Path: "suite"})
	assert.Equal(t, 1, res.ExitCode, "script restarts after Reset")
}

func TestGTestOutput_Parses(t *testing.T) {
	t.Parallel()
	p := testparser.NewGTestParser(nil)

	report := p.Parse(GTestOutput(10, "A.b", "C.d"))
	assert.Equal(t, 10, report.Total)
	assert.Equal(t, []string{"A.b", "C.d"}, report.Failed)

	crash := p.Parse(Crash().Stdout)
	assert.Equal(t, 0, crash.Total)
	require.Len(t, crash.Segments, 1)
	assert.False(t, crash.Segments[0].Completed)
}
