package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/shinji-kodama/dicom-mcp/internal/ctxlog"
	"github.com/shinji-kodama/dicom-mcp/internal/model"
	"github.com/shinji-kodama/dicom-mcp/internal/ui"
)

// DefaultGracePeriod is how long a signalled child may take to exit before
// it is killed outright.
const DefaultGracePeriod = 5 * time.Second

// Launcher spawns and supervises one child process.
type Launcher struct {
	// Command and Args form the child's command line.
	Command string
	Args    []string

	// Env is the child's full environment. Nil inherits the launcher's.
	Env []string

	// Stdin, Stdout and Stderr are handed to the child. Use *os.File values
	// to give the child the real descriptors.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Signals delivers shutdown requests. Nil subscribes to SIGINT and
	// SIGTERM for the duration of Run.
	Signals <-chan os.Signal

	// GracePeriod bounds the wait between forwarding a signal and killing.
	GracePeriod time.Duration

	// Status receives the shutdown notice. Nil writes to os.Stderr.
	Status *ui.Printer
}

// NewServer returns a Launcher for `py -m module` with unbuffered Python
// output and the launcher's own stdio.
func NewServer(py, module string) *Launcher {
	return &Launcher{
		Command:     py,
		Args:        []string{"-m", module},
		Env:         append(os.Environ(), "PYTHONUNBUFFERED=1"),
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		GracePeriod: DefaultGracePeriod,
	}
}

// Run starts the child and blocks until it exits or a shutdown signal
// arrives.
//
// It returns nil when the child exits 0 or is shut down on request. A child
// exiting with code N yields a CLIError carrying N; a failed spawn yields a
// CLIError with ExitServerStartFailed.
func (l *Launcher) Run(ctx context.Context) error {
	log := ctxlog.FromContext(ctx)

	signals := l.Signals
	if signals == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		signals = ch
	}

	grace := l.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	// #nosec G204 -- the interpreter comes from local discovery/configuration
	cmd := exec.Command(l.Command, l.Args...)
	cmd.Env = l.Env
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	cmd.WaitDelay = grace
	setPlatformAttrs(cmd)

	if err := cmd.Start(); err != nil {
		return model.WrapCLIError(model.ExitServerStartFailed, "Failed to start server", err)
	}
	log.Debug("server started", "pid", cmd.Process.Pid, "command", cmd.String())

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		return l.exited(ctx, err, signals)

	case sig := <-signals:
		log.Debug("forwarding signal", "signal", sig.String())
		l.shuttingDown()
		l.stop(cmd, done, grace)
		return nil

	case <-ctx.Done():
		log.Debug("context cancelled, stopping server", "error", ctx.Err())
		l.stop(cmd, done, grace)
		return nil
	}
}

// exited maps the child's exit to the launcher's result. A Ctrl+C reaches
// the whole process group, so the child may exit from it before the
// launcher's own signal is read; a pending signal means a requested
// shutdown.
func (l *Launcher) exited(ctx context.Context, err error, signals <-chan os.Signal) error {
	select {
	case sig := <-signals:
		ctxlog.FromContext(ctx).Debug("server exited on signal", "signal", sig.String(), "error", err)
		l.shuttingDown()
		return nil
	default:
		return exitError(err)
	}
}

func (l *Launcher) shuttingDown() {
	l.status().Blank()
	l.status().Blank()
	l.status().Println("Shutting down DICOM MCP Server...")
}

// stop asks the child to terminate, escalating to a kill after grace, and
// waits for it to be reaped.
func (l *Launcher) stop(cmd *exec.Cmd, done <-chan error, grace time.Duration) {
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		_ = cmd.Process.Kill()
		<-done
		return
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		_ = cmd.Process.Kill()
		<-done
	}
}

func (l *Launcher) status() *ui.Printer {
	if l.Status == nil {
		l.Status = ui.NewPrinter(os.Stderr)
	}
	return l.Status
}

// exitError converts the result of cmd.Wait into the launcher's error.
func exitError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Terminated by a signal the launcher did not send.
			return model.WrapCLIError(model.ExitGeneralError, "Server terminated", err)
		}
		return model.NewCLIError(model.ExitCode(code), fmt.Sprintf("Server exited with code %d", code))
	}

	return model.WrapCLIError(model.ExitGeneralError, "Server failed", err)
}
