package cli

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/AndreyAkinshin/suiterun/internal/config"
	suiterunerrors "github.com/AndreyAkinshin/suiterun/internal/errors"
)

func suitesCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "suites",
		Usage: "List configured suites and how they are invoked",
		Action: func(c *cli.Context) error {
			return cmdSuites(c, e)
		},
	}
}

func cmdSuites(c *cli.Context, e *env) error {
	cfg, err := loadConfig(c, e)
	if err != nil {
		return err
	}

	all := make([]config.SuiteSelection, 0, cfg.Suites.Len())
	for _, entry := range cfg.Suites.Entries() {
		sel, err := config.NewSelection(entry.ID, entry.Patterns)
		if err != nil {
			return suiterunerrors.WrapConfig(err, "invalid suite")
		}
		all = append(all, sel)
	}
	e.out.SuiteList(all)

	selected, err := cfg.Selections()
	if err != nil {
		return suiterunerrors.WrapConfig(err, "invalid run list")
	}
	ids := make([]string, len(selected))
	for i, sel := range selected {
		ids[i] = sel.SuiteID
	}
	e.out.Println("")
	e.out.Println("Run list: %s", strings.Join(ids, ", "))
	return nil
}

func configCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration utilities",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate the configuration file",
				Action: func(c *cli.Context) error {
					return cmdConfigValidate(c, e)
				},
			},
		},
	}
}

func cmdConfigValidate(c *cli.Context, e *env) error {
	cfg, err := loadConfig(c, e)
	if err != nil {
		return err
	}
	if _, err := cfg.Selections(); err != nil {
		return suiterunerrors.WrapConfig(err, "invalid run list")
	}
	e.out.ValidationSuccess("%s is valid (%d suites)", c.String(ConfigFlag.Name), cfg.Suites.Len())
	return nil
}
