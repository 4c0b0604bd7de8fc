// Package config provides loading and validation of the suite configuration file.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config represents the complete suite configuration file.
type Config struct {
	Suites              Suites            `yaml:"suites"`
	Run                 []string          `yaml:"run,omitempty"`
	MaxAttempts         int               `yaml:"max_attempts,omitempty"`
	FilterFlag          string            `yaml:"filter_flag,omitempty"`
	ExtraArgs           []string          `yaml:"extra_args,omitempty"`
	Env                 map[string]string `yaml:"env,omitempty"`
	ExecutableExtension string            `yaml:"executable_extension,omitempty"`
	Context             string            `yaml:"context,omitempty"`
	SummaryDir          string            `yaml:"summary_dir,omitempty"`
}

// SuiteEntry is a single configured suite and its raw pattern list.
type SuiteEntry struct {
	ID       string
	Patterns []string
}

// Suites is the ordered "suites" mapping. Order follows the configuration
// file and determines the order in which suites run.
type Suites struct {
	entries []SuiteEntry
	index   map[string]int
}

// NewSuites builds Suites from entries, keeping their order.
func NewSuites(entries ...SuiteEntry) Suites {
	var s Suites
	for _, e := range entries {
		s.set(e.ID, e.Patterns)
	}
	return s
}

// Entries returns the suites in configuration order.
func (s Suites) Entries() []SuiteEntry {
	return s.entries
}

// Len returns the number of configured suites.
func (s Suites) Len() int {
	return len(s.entries)
}

// Get returns the patterns configured for id.
func (s Suites) Get(id string) ([]string, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.entries[i].Patterns, true
}

func (s *Suites) set(id string, patterns []string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[id]; ok {
		s.entries[i].Patterns = patterns
		return
	}
	s.index[id] = len(s.entries)
	s.entries = append(s.entries, SuiteEntry{ID: id, Patterns: patterns})
}

// UnmarshalYAML decodes the mapping while preserving key order.
func (s *Suites) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: suites must be a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		var patterns []string
		if err := val.Decode(&patterns); err != nil {
			return fmt.Errorf("line %d: suite %q: %w", val.Line, key.Value, err)
		}
		s.set(key.Value, patterns)
	}
	return nil
}

// MarshalYAML encodes the suites as an ordered mapping.
func (s Suites) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range s.entries {
		var val yaml.Node
		if err := val.Encode(e.Patterns); err != nil {
			return nil, err
		}
		val.Style = yaml.FlowStyle
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e.ID}, &val)
	}
	return node, nil
}
