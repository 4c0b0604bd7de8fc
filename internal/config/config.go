package config

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/suiterun/internal/schema"
)

// Load reads and parses a configuration file without defaults or validation.
// Both YAML and JSON files are accepted.
func Load(path string) (*Config, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS reads and parses a configuration file from fsys.
func LoadFS(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, _, err := parse(data)
	return cfg, err
}

// LoadAndValidate reads a config file, checks it against the embedded schema,
// applies defaults, validates it and returns warnings for non-fatal issues.
func LoadAndValidate(fsys afero.Fs, path string) (*Config, []string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := schema.ValidateConfig(data); err != nil {
		return nil, nil, err
	}

	cfg, unknownWarnings, err := parse(data)
	if err != nil {
		return nil, nil, err
	}

	applyDefaults(cfg)

	validationWarnings, err := Validate(cfg)

	allWarnings := make([]string, 0, len(unknownWarnings)+len(validationWarnings))
	allWarnings = append(allWarnings, unknownWarnings...)
	allWarnings = append(allWarnings, validationWarnings...)

	if err != nil {
		return nil, allWarnings, err
	}

	return cfg, allWarnings, nil
}

// parse decodes data and reports unknown top-level keys as warnings.
func parse(data []byte) (*Config, []string, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	var cfg Config
	if err := doc.Decode(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, detectUnknownFields(&doc), nil
}
