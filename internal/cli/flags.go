package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/AndreyAkinshin/suiterun/internal/config"
)

// EnvVarPrefix prefixes the environment variable of every flag.
const EnvVarPrefix = "SUITERUN"

func prefixEnvVar(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

// DefaultConfigFile is looked up in the current directory.
const DefaultConfigFile = "suiterun.yaml"

// DefaultEnvFile is loaded when present and no other env file is named.
const DefaultEnvFile = ".env"

var (
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   DefaultConfigFile,
		EnvVars: prefixEnvVar("CONFIG"),
		Usage:   "Path to the suite configuration file (YAML or JSON)",
	}
	EnvFileFlag = &cli.StringFlag{
		Name:    "env-file",
		Value:   DefaultEnvFile,
		EnvVars: prefixEnvVar("ENV_FILE"),
		Usage:   "File with KEY=VALUE lines loaded into the environment before flags are read",
	}
	VerboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		EnvVars: prefixEnvVar("VERBOSE"),
		Usage:   "Enable debug logging",
	}
	QuietFlag = &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		EnvVars: prefixEnvVar("QUIET"),
		Usage:   "Only print failures and the final verdict",
	}
	LogFormatFlag = &cli.StringFlag{
		Name:    "log-format",
		Value:   "console",
		EnvVars: prefixEnvVar("LOG_FORMAT"),
		Usage:   "Log encoding: console or json",
	}
)

var globalFlags = []cli.Flag{
	ConfigFlag,
	EnvFileFlag,
	VerboseFlag,
	QuietFlag,
	LogFormatFlag,
}

var (
	WorkDirFlag = &cli.StringFlag{
		Name:    "workdir",
		Aliases: []string{"w"},
		Value:   ".",
		EnvVars: prefixEnvVar("WORKDIR"),
		Usage:   "Directory containing the test executables; raw suite logs are written here",
	}
	SuiteFlag = &cli.StringSliceFlag{
		Name:    "suite",
		Aliases: []string{"s"},
		EnvVars: prefixEnvVar("SUITES"),
		Usage:   "Suite to run (repeatable); overrides the run list of the configuration",
	}
	MaxAttemptsFlag = &cli.IntFlag{
		Name:    "max-attempts",
		Value:   config.DefaultMaxAttempts,
		EnvVars: prefixEnvVar("MAX_ATTEMPTS"),
		Usage:   "Times a failing test is re-run on its own before it counts as failed",
	}
	ContextFlag = &cli.StringFlag{
		Name:    "context",
		EnvVars: prefixEnvVar("CONTEXT"),
		Usage:   "Label of the summary log, e.g. win_x64_Release",
	}
	SummaryDirFlag = &cli.StringFlag{
		Name:    "summary-dir",
		EnvVars: prefixEnvVar("SUMMARY_DIR"),
		Usage:   "Directory receiving the summary log",
	}
	FilterFlagFlag = &cli.StringFlag{
		Name:    "filter-flag",
		EnvVars: prefixEnvVar("FILTER_FLAG"),
		Usage:   "Argument used to pass filter expressions to test executables",
	}
	MetricsFileFlag = &cli.StringFlag{
		Name:    "metrics-file",
		EnvVars: prefixEnvVar("METRICS_FILE"),
		Usage:   "Write Prometheus metrics of the run to this file (textfile collector format)",
	}
)

var runFlags = []cli.Flag{
	WorkDirFlag,
	SuiteFlag,
	MaxAttemptsFlag,
	ContextFlag,
	SummaryDirFlag,
	FilterFlagFlag,
	MetricsFileFlag,
}
