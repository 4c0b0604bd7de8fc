// Package cli provides the command-line interface of suiterun.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	suiterunerrors "github.com/AndreyAkinshin/suiterun/internal/errors"
	"github.com/AndreyAkinshin/suiterun/internal/launcher"
	"github.com/AndreyAkinshin/suiterun/internal/output"
)

// Version is set at build time.
var Version = "dev"

// env bundles the collaborators of a CLI invocation so tests can replace them.
type env struct {
	fs       afero.Fs
	launcher launcher.Launcher
	out      *output.Writer
	stdout   io.Writer
	stderr   io.Writer
	stdin    io.Reader
	// logOut receives zap output. Nil means stderr.
	logOut io.Writer
}

func defaultEnv() *env {
	return &env{
		fs:       afero.NewOsFs(),
		launcher: launcher.New(),
		out:      output.New(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stdin:    os.Stdin,
	}
}

// Run executes the CLI with the given arguments (including the program
// name) and returns an exit code. SIGINT and SIGTERM cancel the run; the
// summary is still written for the suites completed before the signal.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, defaultEnv())
}

func run(ctx context.Context, args []string, e *env) int {
	if err := loadEnvFile(args); err != nil {
		e.out.ErrorPrefix("%v", err)
		return suiterunerrors.ExitConfigError
	}

	err := newApp(e).RunContext(ctx, args)
	return exitCode(e, err)
}

// exitCode reports err to the operator and maps it to a process exit code.
func exitCode(e *env, err error) int {
	if err == nil {
		return suiterunerrors.ExitSuccess
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			e.out.ErrorPrefix("%s", msg)
		}
		return exitErr.ExitCode()
	}

	e.out.ErrorPrefix("%v", err)
	var se *suiterunerrors.SuiterunError
	if errors.As(err, &se) {
		return se.ExitCode()
	}
	// Anything else comes from argument parsing.
	return suiterunerrors.ExitConfigError
}

func newApp(e *env) *cli.App {
	app := cli.NewApp()
	app.Name = "suiterun"
	app.Usage = "Run native test suites and retry flaky tests"
	app.Description = "suiterun runs the configured test executables, parses their googletest output, " +
		"re-runs every failing test on its own up to max_attempts times and writes a summary log."
	app.Version = Version
	app.Writer = e.stdout
	app.ErrWriter = e.stderr
	app.Flags = globalFlags
	// Exit codes are mapped by run; never let the library call os.Exit.
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Before = func(c *cli.Context) error {
		e.out.SetQuiet(c.Bool(QuietFlag.Name))
		return nil
	}
	app.Commands = []*cli.Command{
		runCommand(e),
		parseCommand(e),
		suitesCommand(e),
		configCommand(e),
	}
	return app
}
