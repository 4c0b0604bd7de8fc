// Package logging builds the zap loggers used by the engine.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Options configures logger construction.
type Options struct {
	Verbose bool   // debug level instead of info
	Quiet   bool   // warnings and errors only
	Format  Format // console (default) or json
	// Output receives log entries. Defaults to stderr when nil.
	Output io.Writer
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch opts.Format {
	case FormatJSON:
		cfg = zap.NewProductionConfig()
	case FormatConsole, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.Development = false
	default:
		return nil, fmt.Errorf("unknown log format %q (expected console or json)", opts.Format)
	}

	switch {
	case opts.Verbose:
		cfg.Level.SetLevel(zap.DebugLevel)
	case opts.Quiet:
		cfg.Level.SetLevel(zap.WarnLevel)
	default:
		cfg.Level.SetLevel(zap.InfoLevel)
	}
	cfg.DisableStacktrace = !opts.Verbose

	if opts.Output == nil {
		return cfg.Build()
	}

	// Custom sink: build the core directly so entries go to opts.Output.
	var enc zapcore.Encoder
	if opts.Format == FormatJSON {
		enc = zapcore.NewJSONEncoder(cfg.EncoderConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(cfg.EncoderConfig)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(opts.Output), cfg.Level)
	return zap.New(core), nil
}
