package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "test", "fixtures", name)
}

func TestLoad_Minimal(t *testing.T) {
	t.Parallel()
	cfg, err := Load(fixture("minimal.yaml"))
	require.NoError(t, err)

	require.Equal(t, 1, cfg.Suites.Len())
	patterns, ok := cfg.Suites.Get("rtc_unittests")
	require.True(t, ok)
	assert.Equal(t, []string{"*"}, patterns)
	// Load does not apply defaults.
	assert.Zero(t, cfg.MaxAttempts)
}

func TestLoad_PreservesSuiteOrder(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"full.yaml", "full.json"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Load(fixture(name))
			require.NoError(t, err)

			var ids []string
			for _, e := range cfg.Suites.Entries() {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, []string{"rtc_unittests", "modules_unittests", "peerconnection_unittests"}, ids)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadFS(afero.NewMemMapFs(), "suiterun.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_Malformed(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "suiterun.yaml", []byte("suites: [\n"), 0o644))

	_, err := LoadFS(fsys, "suiterun.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_SuitesNotMapping(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "suiterun.yaml", []byte("suites: [a, b]\n"), 0o644))

	_, err := LoadFS(fsys, "suiterun.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suites must be a mapping")
}

func TestLoadAndValidate_AppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg, warnings, err := LoadAndValidate(afero.NewOsFs(), fixture("minimal.yaml"))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, []string{Wildcard}, cfg.Run)
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, DefaultFilterFlag, cfg.FilterFlag)
	assert.Equal(t, DefaultSummaryDir, cfg.SummaryDir)
	assert.Equal(t, DefaultContext(), cfg.Context)
}

func TestLoadAndValidate_Full(t *testing.T) {
	t.Parallel()
	cfg, _, err := LoadAndValidate(afero.NewOsFs(), fixture("full.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, []string{"--gtest_color=no"}, cfg.ExtraArgs)
	assert.Equal(t, map[string]string{"GTEST_SHUFFLE": "0", "WEBRTC_TEST_DEVICE": "loopback"}, cfg.Env)
	assert.Equal(t, "win_x64_Release", cfg.Context)
	assert.Equal(t, "logs", cfg.SummaryDir)
}

func TestLoadAndValidate_UnknownFieldWarns(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	data := "$schema: ./config.schema.json\nsuites:\n  a: [\"*\"]\nlegacy_option: true\n"
	require.NoError(t, afero.WriteFile(fsys, "suiterun.yaml", []byte(data), 0o644))

	cfg, warnings, err := LoadAndValidate(fsys, "suiterun.yaml")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, []string{`unknown field "legacy_option" at root level (ignored)`}, warnings)
}

func TestLoadAndValidate_SchemaError(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "suiterun.yaml", []byte("suites:\n  a: []\n"), 0o644))

	_, _, err := LoadAndValidate(fsys, "suiterun.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadAndValidate_UnknownRunSuite(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "suiterun.yaml", []byte("suites:\n  a: [\"*\"]\nrun: [b]\n"), 0o644))

	_, _, err := LoadAndValidate(fsys, "suiterun.yaml")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "run[0]", verr.Field)
}

func TestSuitesMarshalRoundTripOrder(t *testing.T) {
	t.Parallel()
	s := NewSuites(
		SuiteEntry{ID: "z_unittests", Patterns: []string{"*"}},
		SuiteEntry{ID: "a_unittests", Patterns: []string{"Foo.*"}},
	)
	out, err := s.MarshalYAML()
	require.NoError(t, err)
	require.NotNil(t, out)

	entries := s.Entries()
	assert.Equal(t, "z_unittests", entries[0].ID)
	assert.Equal(t, "a_unittests", entries[1].ID)
}

func TestSuitesDuplicateKeyLastWins(t *testing.T) {
	t.Parallel()
	s := NewSuites(
		SuiteEntry{ID: "a", Patterns: []string{"*"}},
		SuiteEntry{ID: "b", Patterns: []string{"*"}},
		SuiteEntry{ID: "a", Patterns: []string{"Foo.*"}},
	)
	require.Equal(t, 2, s.Len())
	p, _ := s.Get("a")
	assert.Equal(t, []string{"Foo.*"}, p)
	assert.Equal(t, "a", s.Entries()[0].ID)
}
