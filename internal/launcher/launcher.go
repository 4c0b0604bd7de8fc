// Package launcher runs external test executables and captures their output.
package launcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// Command describes a single process launch.
type Command struct {
	Path string   // executable path
	Args []string // arguments, not including Path
	Dir  string   // working directory; empty means the current directory
	Env  []string // additional KEY=VALUE pairs appended to the inherited environment
}

// String returns the command line as it would be typed in a shell.
func (c Command) String() string {
	parts := append([]string{c.Path}, c.Args...)
	return strings.Join(parts, " ")
}

// Result is the outcome of a process that started and terminated.
// A non-zero ExitCode is data, not an error.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Launcher runs a command to completion.
//
// Launch returns an error only if the process could not be started or its
// output could not be collected. A process that ran and exited non-zero is
// reported through Result.ExitCode with a nil error.
type Launcher interface {
	Launch(ctx context.Context, cmd Command) (Result, error)
}

// ExecLauncher launches processes with os/exec.
type ExecLauncher struct{}

// New creates a launcher backed by os/exec.
func New() *ExecLauncher {
	return &ExecLauncher{}
}

// Launch executes cmd and blocks until it exits and its output is fully captured.
func (l *ExecLauncher) Launch(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		// Not started, killed by cancellation, or I/O failure while copying output.
		res.ExitCode = -1
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, err
	}
}
