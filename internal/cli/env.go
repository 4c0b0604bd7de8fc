package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// loadEnvFile loads KEY=VALUE pairs before flags are parsed, so that
// SUITERUN_* variables defined in the file behave like real environment
// variables. Variables already set in the environment win.
//
// The file is taken from --env-file, then SUITERUN_ENV_FILE. The default
// file is optional; an explicitly named file must exist.
func loadEnvFile(args []string) error {
	path, explicit := envFileFromArgs(args)
	if !explicit {
		if v, ok := os.LookupEnv(EnvFileFlag.EnvVars[0]); ok && v != "" {
			path, explicit = v, true
		}
	}
	if path == "" {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cannot load env file %s: %w", path, err)
	}
	return nil
}

// envFileFromArgs finds --env-file in args, which still include the program name.
func envFileFromArgs(args []string) (string, bool) {
	flag := "--" + EnvFileFlag.Name
	for i := 1; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return "", false
		case arg == flag && i+1 < len(args):
			return args[i+1], true
		case strings.HasPrefix(arg, flag+"="):
			return strings.TrimPrefix(arg, flag+"="), true
		}
	}
	return "", false
}
