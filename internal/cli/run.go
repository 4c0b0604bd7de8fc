package cli

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/AndreyAkinshin/suiterun/internal/config"
	suiterunerrors "github.com/AndreyAkinshin/suiterun/internal/errors"
	"github.com/AndreyAkinshin/suiterun/internal/logging"
	"github.com/AndreyAkinshin/suiterun/internal/metrics"
	"github.com/AndreyAkinshin/suiterun/internal/runner"
)

func runCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the configured suites and write the summary log",
		ArgsUsage: "[suite...]",
		Flags:     runFlags,
		Action: func(c *cli.Context) error {
			return cmdRun(c, e)
		},
	}
}

func cmdRun(c *cli.Context, e *env) error {
	start := time.Now()

	cfg, err := loadConfig(c, e)
	if err != nil {
		return err
	}
	if err := applyRunOverrides(c, cfg); err != nil {
		return err
	}
	selections, err := cfg.Selections()
	if err != nil {
		return suiterunerrors.WrapConfig(err, "invalid run list")
	}

	runID := uuid.NewString()
	log, err := newLogger(c, e)
	if err != nil {
		return err
	}
	log = log.With(zap.String("run_id", runID))
	defer func() { _ = log.Sync() }()

	rec := metrics.New(runID)
	r := runner.New(e.launcher, e.fs, log, rec, runner.OptionsFromConfig(cfg, absPath(c.String(WorkDirFlag.Name))))
	r.SetObserver(e.out)

	summary, runErr := r.Run(c.Context, selections)
	elapsed := time.Since(start)

	if path := c.String(MetricsFileFlag.Name); path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			e.out.WarningSimple("%v", err)
		}
	}

	log.Info("run finished",
		zap.String("result", runner.ResultCode(summary, runErr).String()),
		zap.Int("tests", summary.TotalTests),
		zap.Int("failed", summary.TotalFailed),
		zap.Int("crashes", summary.Crashes),
		zap.Duration("elapsed", elapsed))

	if summary.SummaryPath != "" {
		e.out.RunSummary(cfg.Context, summary)
		e.out.FinalVerdict(summary, absPath(summary.SummaryPath), elapsed)
	}

	if runErr != nil {
		return runErr
	}
	if code := runner.ExitCode(summary, nil); code != suiterunerrors.ExitSuccess {
		return cli.Exit("", code)
	}
	return nil
}

// applyRunOverrides lets flags and positional suite ids replace file values.
func applyRunOverrides(c *cli.Context, cfg *config.Config) error {
	if c.IsSet(MaxAttemptsFlag.Name) {
		cfg.MaxAttempts = c.Int(MaxAttemptsFlag.Name)
	}
	if c.IsSet(ContextFlag.Name) {
		cfg.Context = c.String(ContextFlag.Name)
	}
	if c.IsSet(SummaryDirFlag.Name) {
		cfg.SummaryDir = c.String(SummaryDirFlag.Name)
	}
	if c.IsSet(FilterFlagFlag.Name) {
		cfg.FilterFlag = c.String(FilterFlagFlag.Name)
	}

	suites := append([]string(nil), c.StringSlice(SuiteFlag.Name)...)
	suites = append(suites, c.Args().Slice()...)
	if len(suites) > 0 {
		cfg.Run = suites
	}

	if _, err := config.Validate(cfg); err != nil {
		return suiterunerrors.WrapConfig(err, "invalid run options")
	}
	return nil
}

func loadConfig(c *cli.Context, e *env) (*config.Config, error) {
	path := c.String(ConfigFlag.Name)
	cfg, warnings, err := config.LoadAndValidate(e.fs, path)
	for _, w := range warnings {
		e.out.WarningSimple("%s: %s", path, w)
	}
	if err != nil {
		return nil, suiterunerrors.WrapConfig(err, "cannot load "+path)
	}
	return cfg, nil
}

func newLogger(c *cli.Context, e *env) (*zap.Logger, error) {
	log, err := logging.New(logging.Options{
		Verbose: c.Bool(VerboseFlag.Name),
		Quiet:   c.Bool(QuietFlag.Name),
		Format:  logging.Format(c.String(LogFormatFlag.Name)),
		Output:  e.logOut,
	})
	if err != nil {
		return nil, suiterunerrors.WrapConfig(err, "invalid logging options")
	}
	return log, nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
