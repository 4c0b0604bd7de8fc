package config

import (
	"fmt"
	"strings"

	suiterunerrors "github.com/AndreyAkinshin/suiterun/internal/errors"
)

// Wildcard selects every test of a suite, or every suite in the run list.
const Wildcard = "*"

// Mode determines how a suite is invoked.
type Mode int

const (
	// ModeAll runs the suite unfiltered in a single invocation.
	ModeAll Mode = iota
	// ModeAllExcept runs the suite excluding Patterns, then each pattern on its own.
	ModeAllExcept
	// ModeExplicit runs only Patterns, each on its own.
	ModeExplicit
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeAllExcept:
		return "all-except"
	case ModeExplicit:
		return "explicit"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// SuiteSelection is the resolved, immutable selection for one suite.
// Patterns is non-empty whenever Mode is not ModeAll.
type SuiteSelection struct {
	SuiteID  string
	Mode     Mode
	Patterns []string
}

// NewSelection decides the mode from a configured pattern list:
//
//	["*"]          -> ModeAll
//	["*", a, b]    -> ModeAllExcept{a, b}
//	[a, b]         -> ModeExplicit{a, b}
func NewSelection(id string, patterns []string) (SuiteSelection, error) {
	field := fmt.Sprintf("suites.%s", id)
	if len(patterns) == 0 {
		return SuiteSelection{}, &ValidationError{Field: field, Message: "pattern list must not be empty"}
	}
	for i, p := range patterns {
		if strings.TrimSpace(p) == "" {
			return SuiteSelection{}, &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "pattern must not be empty",
			}
		}
		if p == Wildcard && i > 0 {
			return SuiteSelection{}, &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: `"*" is only allowed as the first pattern`,
			}
		}
		if strings.Contains(p, ":") {
			return SuiteSelection{}, &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: `pattern must not contain ":"`,
			}
		}
	}

	if patterns[0] != Wildcard {
		return SuiteSelection{SuiteID: id, Mode: ModeExplicit, Patterns: clone(patterns)}, nil
	}
	if len(patterns) == 1 {
		return SuiteSelection{SuiteID: id, Mode: ModeAll}, nil
	}
	return SuiteSelection{SuiteID: id, Mode: ModeAllExcept, Patterns: clone(patterns[1:])}, nil
}

// Selections resolves the run list into suite selections in execution order.
// A "*" entry expands to every configured suite in configuration order.
// Each suite appears at most once.
func (c *Config) Selections() ([]SuiteSelection, error) {
	run := c.Run
	if len(run) == 0 {
		run = []string{Wildcard}
	}

	var ids []string
	for _, id := range run {
		if id == Wildcard {
			for _, e := range c.Suites.Entries() {
				ids = append(ids, e.ID)
			}
			continue
		}
		ids = append(ids, id)
	}

	seen := make(map[string]bool, len(ids))
	selections := make([]SuiteSelection, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		patterns, ok := c.Suites.Get(id)
		if !ok {
			return nil, suiterunerrors.NotFound("suite", id)
		}
		sel, err := NewSelection(id, patterns)
		if err != nil {
			return nil, err
		}
		selections = append(selections, sel)
	}
	return selections, nil
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
