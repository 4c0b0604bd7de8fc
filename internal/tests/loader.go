package tests

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// rawCase mirrors the on-disk layout of a case file. "log" is either an
// inline string or a {"$file": "name.log"} reference relative to the case.
type rawCase struct {
	Log      json.RawMessage `json:"log"`
	Expected *Expectation    `json:"expected"`
}

type fileRef struct {
	File string `json:"$file"`
}

// LoadSuite loads every *.json case under dir/suite, sorted by name.
func LoadSuite(fsys afero.Fs, dir, suite string) ([]Case, error) {
	suiteDir := filepath.Join(dir, suite)

	if ok, err := afero.DirExists(fsys, suiteDir); err != nil || !ok {
		return nil, fmt.Errorf("case directory not found: %s", suiteDir)
	}

	matches, err := afero.Glob(fsys, filepath.Join(suiteDir, "*.json"))
	if err != nil {
		return nil, err
	}

	cases := make([]Case, 0, len(matches))
	for _, path := range matches {
		c, err := LoadCase(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("suite %q: %w (file: %s)", suite, err, path)
		}
		c.Suite = suite
		cases = append(cases, *c)
	}

	sort.Slice(cases, func(i, j int) bool {
		return cases[i].Name < cases[j].Name
	})
	return cases, nil
}

// LoadCase loads a single case file.
func LoadCase(fsys afero.Fs, path string) (*Case, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	var raw rawCase
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(raw.Log) == 0 {
		return nil, fmt.Errorf("missing required field \"log\"")
	}
	if raw.Expected == nil {
		return nil, fmt.Errorf("missing required field \"expected\"")
	}

	text, err := resolveLog(fsys, raw.Log, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	return &Case{
		Name:     strings.TrimSuffix(filepath.Base(path), ".json"),
		Path:     path,
		Log:      text,
		Expected: *raw.Expected,
	}, nil
}

func resolveLog(fsys afero.Fs, msg json.RawMessage, baseDir string) (string, error) {
	var inline string
	if err := json.Unmarshal(msg, &inline); err == nil {
		return inline, nil
	}

	var ref fileRef
	if err := json.Unmarshal(msg, &ref); err != nil || ref.File == "" {
		return "", fmt.Errorf("must be a string or a $file reference")
	}
	return loadFileRef(fsys, ref.File, baseDir)
}

// loadFileRef reads a file referenced by $file. References may not leave
// the case directory.
func loadFileRef(fsys afero.Fs, ref, baseDir string) (string, error) {
	if strings.Contains(ref, "..") || filepath.IsAbs(ref) {
		return "", fmt.Errorf("$file path escapes case directory: %s", ref)
	}

	data, err := afero.ReadFile(fsys, filepath.Join(baseDir, ref))
	if err != nil {
		return "", fmt.Errorf("$file %q: %w", ref, err)
	}
	return string(data), nil
}
