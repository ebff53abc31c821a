// Package execxtest provides a scripted execx.Runner for tests.
package execxtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shinji-kodama/dicom-mcp/internal/execx"
)

// FakeResult is the scripted outcome of one command line.
type FakeResult struct {
	Stdout string
	Stderr string
	// ExitCode non-zero makes Run return an *ExecError.
	ExitCode int
	// Err, when set, is returned as the ExecError's underlying error
	// (e.g., exec.ErrNotFound to simulate a missing binary).
	Err error
}

// FakeRunner is a scripted execx.Runner for tests. Results are keyed by the
// rendered command line ("python3 --version"). Unscripted commands fail
// as if the executable did not exist.
type FakeRunner struct {
	mu      sync.Mutex
	results map[string]FakeResult
	calls   []execx.Command
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{results: make(map[string]FakeResult)}
}

// On scripts the result for a command line.
func (f *FakeRunner) On(commandLine string, result FakeResult) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[commandLine] = result
	return f
}

// Calls returns the commands run so far, in order.
func (f *FakeRunner) Calls() []execx.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]execx.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// CommandLines returns the rendered command lines run so far.
func (f *FakeRunner) CommandLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Run implements execx.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd execx.Command) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	res, ok := f.results[cmd.String()]
	f.mu.Unlock()

	if !ok {
		return "", &execx.ExecError{
			Command:  cmd.String(),
			ExitCode: -1,
			Err:      fmt.Errorf("exec: %q: executable file not found in $PATH", cmd.Name),
		}
	}

	if cmd.Stdout != nil && res.Stdout != "" {
		_, _ = cmd.Stdout.Write([]byte(res.Stdout))
	}
	if cmd.Stderr != nil && res.Stderr != "" {
		_, _ = cmd.Stderr.Write([]byte(res.Stderr))
	}

	if res.ExitCode != 0 || res.Err != nil {
		err := res.Err
		if err == nil {
			err = fmt.Errorf("exit status %d", res.ExitCode)
		}
		stderr := ""
		if cmd.Stderr == nil {
			stderr = strings.TrimSpace(res.Stderr)
		}
		return res.Stdout, &execx.ExecError{
			Command:  cmd.String(),
			ExitCode: res.ExitCode,
			Stderr:   stderr,
			Err:      err,
		}
	}

	return res.Stdout, nil
}
