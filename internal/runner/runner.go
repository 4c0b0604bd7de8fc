// Package runner executes test suites sequentially, retries failing tests
// and aggregates the results into the run summary.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/AndreyAkinshin/suiterun/internal/config"
	suiterunerrors "github.com/AndreyAkinshin/suiterun/internal/errors"
	"github.com/AndreyAkinshin/suiterun/internal/launcher"
	"github.com/AndreyAkinshin/suiterun/internal/metrics"
	"github.com/AndreyAkinshin/suiterun/internal/model"
	"github.com/AndreyAkinshin/suiterun/internal/summary"
	"github.com/AndreyAkinshin/suiterun/internal/testparser"
)

// Options configures a run.
type Options struct {
	// WorkDir holds the suite executables and receives the raw suite logs.
	WorkDir     string
	SummaryDir  string
	Context     string
	MaxAttempts int
	FilterFlag  string
	ExtraArgs   []string
	// Env holds variables added to the inherited environment of every invocation.
	Env                 map[string]string
	ExecutableExtension string
}

// OptionsFromConfig maps a loaded configuration onto run options.
func OptionsFromConfig(cfg *config.Config, workDir string) Options {
	return Options{
		WorkDir:             workDir,
		SummaryDir:          cfg.SummaryDir,
		Context:             cfg.Context,
		MaxAttempts:         cfg.MaxAttempts,
		FilterFlag:          cfg.FilterFlag,
		ExtraArgs:           cfg.ExtraArgs,
		Env:                 cfg.Env,
		ExecutableExtension: cfg.ExecutableExtension,
	}
}

// Observer is notified as suites start and finish.
type Observer interface {
	SuiteStart(sel config.SuiteSelection)
	SuiteResult(report model.SuiteReport)
}

type nopObserver struct{}

func (nopObserver) SuiteStart(config.SuiteSelection) {}
func (nopObserver) SuiteResult(model.SuiteReport)    {}

// Runner orchestrates a run across multiple suites. Suites run strictly
// one after another in selection order because test executables are
// assumed to need exclusive access to shared devices.
type Runner struct {
	fs       afero.Fs
	log      *zap.Logger
	metrics  *metrics.Recorder
	driver   *Driver
	opts     Options
	observer Observer

	// now is the clock used for summary naming and timing.
	now func() time.Time
}

// New creates a Runner. A nil logger discards diagnostics and a nil
// recorder disables metrics.
func New(l launcher.Launcher, fsys afero.Fs, log *zap.Logger, rec *metrics.Recorder, opts Options) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = config.DefaultMaxAttempts
	}
	if opts.FilterFlag == "" {
		opts.FilterFlag = config.DefaultFilterFlag
	}
	if opts.SummaryDir == "" {
		opts.SummaryDir = config.DefaultSummaryDir
	}

	invoker := &Invoker{
		launcher:   l,
		fs:         fsys,
		log:        log,
		metrics:    rec,
		workDir:    opts.WorkDir,
		filterFlag: opts.FilterFlag,
		extraArgs:  opts.ExtraArgs,
		env:        environ(opts.Env),
	}
	return &Runner{
		fs:       fsys,
		log:      log,
		metrics:  rec,
		opts:     opts,
		observer: nopObserver{},
		now:      time.Now,
		driver: &Driver{
			invoker: invoker,
			retrier: &Retrier{
				invoker:     invoker,
				maxAttempts: opts.MaxAttempts,
				log:         log,
				metrics:     rec,
			},
			parser:              testparser.NewGTestParser(log),
			fs:                  fsys,
			log:                 log,
			metrics:             rec,
			workDir:             opts.WorkDir,
			executableExtension: opts.ExecutableExtension,
		},
	}
}

// SetObserver registers o for suite progress notifications.
func (r *Runner) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	r.observer = o
}

// Driver returns the suite driver used by the runner.
func (r *Runner) Driver() *Driver {
	return r.driver
}

// Run executes every selection in order and writes the summary log.
//
// A missing working directory aborts the run before anything is written.
// Problems of a single suite are recorded in its report and never stop
// the run. If ctx is canceled, the summary is finalized with the suites
// completed so far and the returned error wraps ctx.Err().
//
// Test failures are not errors: inspect the returned summary.
func (r *Runner) Run(ctx context.Context, selections []config.SuiteSelection) (model.RunSummary, error) {
	start := r.now()

	if err := r.checkWorkDir(); err != nil {
		return model.RunSummary{}, err
	}

	acc, err := summary.Open(r.fs, r.opts.SummaryDir, r.opts.Context, start)
	if err != nil {
		return model.RunSummary{}, err
	}
	r.log.Info("starting run",
		zap.Int("suites", len(selections)),
		zap.Int("max_attempts", r.opts.MaxAttempts),
		zap.String("summary", acc.Path()))

	var errs []error
	for _, sel := range selections {
		// Early exit if context is canceled before starting the next suite
		if ctx.Err() != nil {
			break
		}

		r.observer.SuiteStart(sel)
		report := r.driver.RunSuite(ctx, sel)
		if ctx.Err() != nil {
			// Interrupted mid-suite: its partial data would be misleading.
			r.log.Warn("suite interrupted", zap.String("suite", sel.SuiteID))
			break
		}
		r.observer.SuiteResult(report)
		if err := acc.Record(report); err != nil {
			errs = append(errs, err)
		}
	}

	if err := acc.Finalize(r.now().Sub(start)); err != nil {
		errs = append(errs, err)
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, interrupted(err))
	}

	result := acc.Summary()
	return result, combineErrors(errs)
}

// checkWorkDir verifies that the directory with suite executables exists.
func (r *Runner) checkWorkDir() error {
	info, err := r.fs.Stat(r.opts.WorkDir)
	if err != nil {
		return suiterunerrors.Environmentf(suiterunerrors.ErrWorkingDirNotExist,
			"working directory %s does not exist", r.opts.WorkDir).WithCause(err)
	}
	if !info.IsDir() {
		return suiterunerrors.Environmentf(suiterunerrors.ErrWorkingDirNotExist,
			"working directory %s is not a directory", r.opts.WorkDir)
	}
	return nil
}

func interrupted(cause error) error {
	err := suiterunerrors.Wrap(cause, "run interrupted")
	err.Code = suiterunerrors.ErrExecutionFailed
	return err
}

// ResultCode returns the engine result code for a finished run: the code
// of the run error if any, else the code of the first failed suite, else
// NoError. Unresolved test failures alone are not an engine error.
func ResultCode(s model.RunSummary, err error) suiterunerrors.Code {
	if err != nil {
		return suiterunerrors.GetCode(err)
	}
	for _, r := range s.Suites {
		if r.Err != nil {
			return suiterunerrors.GetCode(r.Err)
		}
	}
	return suiterunerrors.NoError
}

// ExitCode maps a finished run onto the process exit code.
func ExitCode(s model.RunSummary, err error) int {
	if err != nil {
		return suiterunerrors.GetExitCode(err)
	}
	if s.FailedSuites() > 0 {
		return suiterunerrors.ExitFailure
	}
	return suiterunerrors.ExitSuccess
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}
