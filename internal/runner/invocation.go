package runner

import (
	"bytes"
	"context"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	suiterunerrors "github.com/AndreyAkinshin/suiterun/internal/errors"
	"github.com/AndreyAkinshin/suiterun/internal/launcher"
	"github.com/AndreyAkinshin/suiterun/internal/metrics"
	"github.com/AndreyAkinshin/suiterun/internal/testparser"
)

// maxStderrLogBytes caps how much stderr of a failing invocation is logged.
const maxStderrLogBytes = 4096

// Request describes one invocation of a suite executable.
type Request struct {
	Suite      string
	Executable string
	// Filter restricts the tests to run. Empty runs the suite unfiltered
	// and omits the filter argument entirely.
	Filter  string
	LogPath string
	// Append adds to LogPath instead of truncating it first.
	Append bool
	Kind   string // metrics.KindBundle, KindIndividual or KindRetry
}

// Outcome is the result of one invocation.
type Outcome struct {
	Command  launcher.Command
	ExitCode int
	// LaunchErr is set when the process could not be started. ExitCode
	// is -1 in that case.
	LaunchErr error
}

// Launched reports whether the process started.
func (o Outcome) Launched() bool {
	return o.LaunchErr == nil
}

// Passed reports whether the process started and exited with code 0.
func (o Outcome) Passed() bool {
	return o.Launched() && o.ExitCode == 0
}

// Invoker runs single suite invocations and records their output in a log.
type Invoker struct {
	launcher   launcher.Launcher
	fs         afero.Fs
	log        *zap.Logger
	metrics    *metrics.Recorder
	workDir    string
	filterFlag string
	extraArgs  []string
	env        []string // KEY=VALUE, sorted by key
}

// Command builds the command line for req.
func (iv *Invoker) Command(req Request) launcher.Command {
	var args []string
	if req.Filter != "" {
		args = append(args, iv.filterFlag+"="+req.Filter)
	}
	args = append(args, iv.extraArgs...)
	return launcher.Command{Path: req.Executable, Args: args, Dir: iv.workDir, Env: iv.env}
}

// environ renders vars as KEY=VALUE pairs in key order.
func environ(vars map[string]string) []string {
	if len(vars) == 0 {
		return nil
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}

// RunOne launches req and appends its stdout followed by the invocation
// boundary marker to req.LogPath. The log entry is written even when the
// process could not be started, so every invocation yields exactly one
// log segment.
//
// A non-zero exit and a launch failure are reported through Outcome and
// logged as warnings. The returned error is non-nil only if the log could
// not be written.
func (iv *Invoker) RunOne(ctx context.Context, req Request) (Outcome, error) {
	cmd := iv.Command(req)
	log := iv.log.With(zap.String("suite", req.Suite), zap.String("command", cmd.String()))
	log.Debug("launching test executable")

	res, err := iv.launcher.Launch(ctx, cmd)
	out := Outcome{Command: cmd, ExitCode: res.ExitCode, LaunchErr: err}
	iv.metrics.Invocation(req.Suite, req.Kind, err == nil)

	switch {
	case err != nil:
		log.Warn("test executable could not be launched", zap.Error(err))
	case res.ExitCode != 0:
		log.Warn("test executable exited with non-zero code",
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", truncate(strings.TrimSpace(string(res.Stderr)), maxStderrLogBytes)))
	}

	if werr := iv.writeLog(req.LogPath, req.Append, res.Stdout); werr != nil {
		return out, suiterunerrors.Wrap(werr, "cannot write suite log "+req.LogPath)
	}
	return out, nil
}

func (iv *Invoker) writeLog(path string, appendMode bool, stdout []byte) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := iv.fs.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Write(stdout)
	if len(stdout) > 0 && stdout[len(stdout)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(testparser.BoundaryMarker)
	buf.WriteByte('\n')

	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
