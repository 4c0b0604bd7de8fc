package cli

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	suiterunerrors "github.com/AndreyAkinshin/suiterun/internal/errors"
	"github.com/AndreyAkinshin/suiterun/internal/testparser"
)

func parseCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse an existing raw suite log and print its totals",
		ArgsUsage: "<log|->",
		Action: func(c *cli.Context) error {
			return cmdParse(c, e)
		},
	}
}

// cmdParse parses a raw suite log (or stdin with "-") and prints a summary.
// It exits non-zero when the log contains failures or crashed invocations.
func cmdParse(c *cli.Context, e *env) error {
	if c.NArg() != 1 {
		return suiterunerrors.Config("parse expects exactly one argument: a log file or -")
	}
	source := c.Args().First()

	var data []byte
	var err error
	if source == "-" {
		data, err = io.ReadAll(e.stdin)
	} else {
		data, err = afero.ReadFile(e.fs, source)
	}
	if err != nil {
		return suiterunerrors.Wrap(err, "cannot read "+source)
	}

	log, err := newLogger(c, e)
	if err != nil {
		return err
	}
	report := testparser.NewGTestParser(log).Parse(string(data))

	crashed := 0
	for _, seg := range report.Segments {
		if !seg.Completed {
			crashed++
		}
	}

	e.out.SummaryHeader("Log Summary")
	e.out.SummaryItem("Invocations", fmt.Sprintf("%d", len(report.Segments)))
	e.out.SummaryItem("Tests", fmt.Sprintf("%d", report.Total))
	e.out.SummaryItem("Failed", fmt.Sprintf("%d", len(report.Failed)))
	if crashed > 0 {
		e.out.SummaryItem("Without results", fmt.Sprintf("%d", crashed))
	}
	for _, name := range report.Failed {
		e.out.Println("    x %s", name)
	}

	if len(report.Failed) > 0 || crashed > 0 {
		return cli.Exit("", suiterunerrors.ExitFailure)
	}
	return nil
}
