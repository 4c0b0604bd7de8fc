// Package mocks provides shared test doubles for suiterun packages.
package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/AndreyAkinshin/suiterun/internal/launcher"
)

// Unfiltered is the script key for invocations without a filter argument.
const Unfiltered = ""

// Response is one scripted process outcome.
type Response struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Err makes Launch fail as if the process could not be started.
	Err error
}

// Launcher implements launcher.Launcher for testing.
// Responses are scripted per filter value with a fluent builder API:
// each invocation with that filter consumes the next response, and the
// last response repeats once the script is exhausted. Filters without a
// script get a passing empty run.
type Launcher struct {
	filterFlag string

	mu      sync.Mutex
	scripts map[string][]Response
	served  map[string]int
	calls   []launcher.Command
	// LaunchFunc, if set, replaces scripted responses entirely.
	LaunchFunc func(ctx context.Context, cmd launcher.Command) (launcher.Result, error)
}

// NewLauncher creates a mock that recognizes filter arguments of the form
// <filterFlag>=<expression>.
func NewLauncher(filterFlag string) *Launcher {
	return &Launcher{
		filterFlag: filterFlag,
		scripts:    make(map[string][]Response),
		served:     make(map[string]int),
	}
}

// On scripts the responses for invocations filtered by filter.
// Use Unfiltered for the bare suite invocation.
func (m *Launcher) On(filter string, responses ...Response) *Launcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[filter] = append(m.scripts[filter], responses...)
	return m
}

// Launch implements launcher.Launcher.
func (m *Launcher) Launch(ctx context.Context, cmd launcher.Command) (launcher.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	fn := m.LaunchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, cmd)
	}
	if err := ctx.Err(); err != nil {
		return launcher.Result{ExitCode: -1}, err
	}

	resp := m.next(m.filterOf(cmd))
	if resp.Err != nil {
		return launcher.Result{ExitCode: -1}, resp.Err
	}
	return launcher.Result{
		ExitCode: resp.ExitCode,
		Stdout:   []byte(resp.Stdout),
		Stderr:   []byte(resp.Stderr),
	}, nil
}

func (m *Launcher) next(filter string) Response {
	m.mu.Lock()
	defer m.mu.Unlock()

	script := m.scripts[filter]
	if len(script) == 0 {
		return Response{Stdout: GTestOutput(0)}
	}
	i := m.served[filter]
	m.served[filter]++
	if i >= len(script) {
		i = len(script) - 1
	}
	return script[i]
}

func (m *Launcher) filterOf(cmd launcher.Command) string {
	prefix := m.filterFlag + "="
	for _, arg := range cmd.Args {
		if strings.HasPrefix(arg, prefix) {
			return strings.TrimPrefix(arg, prefix)
		}
	}
	return Unfiltered
}

// Test inspection methods

// Calls returns every command launched, in order.
func (m *Launcher) Calls() []launcher.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]launcher.Command, len(m.calls))
	copy(result, m.calls)
	return result
}

// Filters returns the filter of every launched command, in order.
// Unfiltered invocations appear as Unfiltered.
func (m *Launcher) Filters() []string {
	calls := m.Calls()
	filters := make([]string, len(calls))
	for i, c := range calls {
		filters[i] = m.filterOf(c)
	}
	return filters
}

// CallCount returns how many times filter was launched.
func (m *Launcher) CallCount(filter string) int {
	n := 0
	for _, f := range m.Filters() {
		if f == filter {
			n++
		}
	}
	return n
}

// Reset clears recorded calls and script positions.
func (m *Launcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.served = make(map[string]int)
}

// GTestOutput renders googletest-style output for a run of total tests
// with the given failures.
func GTestOutput(total int, failed ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[==========] Running %d tests from 1 test suite.\n", total)
	b.WriteString("[----------] Global test environment set-up.\n")
	for _, name := range failed {
		fmt.Fprintf(&b, "[ RUN      ] %s\n", name)
		fmt.Fprintf(&b, "[  FAILED  ] %s (3 ms)\n", name)
	}
	b.WriteString("[----------] Global test environment tear-down\n")
	fmt.Fprintf(&b, "[==========] %d tests from 1 test suite ran. (12 ms total)\n", total)
	fmt.Fprintf(&b, "[  PASSED  ] %d tests.\n", total-len(failed))
	if len(failed) > 0 {
		fmt.Fprintf(&b, "[  FAILED  ] %d tests, listed below:\n", len(failed))
		for _, name := range failed {
			fmt.Fprintf(&b, "[  FAILED  ] %s\n", name)
		}
	}
	return b.String()
}

// Passing returns a successful response reporting total tests.
func Passing(total int) Response {
	return Response{Stdout: GTestOutput(total)}
}

// Failing returns a response with exit code 1 reporting total tests of
// which names failed.
func Failing(total int, names ...string) Response {
	return Response{ExitCode: 1, Stdout: GTestOutput(total, names...), Stderr: "some tests failed"}
}

// Crash returns a response of a process that died before reporting results.
func Crash() Response {
	return Response{ExitCode: 3, Stdout: "[==========] Running 10 tests from 1 test suite.\n", Stderr: "Segmentation fault"}
}
