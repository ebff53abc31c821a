package execx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command describes a single external command invocation.
type Command struct {
	// Name is the executable to run (looked up in PATH).
	Name string

	// Args are the arguments passed after Name.
	Args []string

	// Env is appended to the current process environment. Nil means the
	// environment is inherited unchanged.
	Env []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Stdout and Stderr, when set, receive the command's output directly.
	// When nil, the output is captured: stdout is returned from Run and
	// stderr is attached to the error on failure.
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for diagnostics.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes commands. ExecRunner is the production implementation.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecError reports a command that could not be started or exited non-zero.
type ExecError struct {
	// Command is the rendered command line.
	Command string

	// ExitCode is the process exit code, or -1 if the process never ran
	// or was terminated by a signal.
	ExitCode int

	// Stderr is the captured standard error, trimmed. Empty when stderr
	// was streamed to a writer.
	Stderr string

	// Err is the underlying error from os/exec.
	Err error
}

// Error includes the captured stderr so pip and Python tracebacks reach
// the user.
func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	return msg
}

// Unwrap returns the underlying os/exec error.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner instance.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes cmd and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	// #nosec G204 -- command names come from configuration, not remote input
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if cmd.Env != nil {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr strings.Builder
	c.Stdout = &stdout
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	}
	c.Stderr = &stderr
	if cmd.Stderr != nil {
		c.Stderr = cmd.Stderr
	}

	if err := c.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return stdout.String(), &ExecError{
			Command:  cmd.String(),
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	return stdout.String(), nil
}
