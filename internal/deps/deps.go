package deps

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shinji-kodama/dicom-mcp/internal/ctxlog"
	"github.com/shinji-kodama/dicom-mcp/internal/execx"
	"github.com/shinji-kodama/dicom-mcp/internal/model"
)

// ImportScript builds the `python -c` program that imports every module.
func ImportScript(modules []string) string {
	parts := make([]string, len(modules))
	for i, m := range modules {
		parts[i] = "import " + m
	}
	return strings.Join(parts, "; ")
}

// Checker verifies that required modules import in the interpreter.
type Checker struct {
	runner execx.Runner
}

// NewChecker creates a Checker.
func NewChecker(runner execx.Runner) *Checker {
	return &Checker{runner: runner}
}

// Check runs `py -c "import a; import b"` and returns a CLIError with
// ExitDependenciesMissing when any import fails.
func (c *Checker) Check(ctx context.Context, py string, modules []string, browser string) error {
	if len(modules) == 0 {
		return nil
	}

	_, err := c.runner.Run(ctx, execx.Command{
		Name: py,
		Args: []string{"-c", ImportScript(modules)},
	})
	if err != nil {
		ctxlog.FromContext(ctx).Debug("import check failed", "error", err)
		return model.WrapCLIError(
			model.ExitDependenciesMissing,
			"Required Python packages are not installed",
			err,
		).WithHints(
			"Please install the dependencies:",
			"  pip install "+strings.Join(modules, " "),
			"  playwright install "+browser,
		)
	}
	return nil
}

// Report summarises a best-effort installation run.
type Report struct {
	// Installed lists requirements pip accepted.
	Installed []model.Requirement

	// Failed lists requirements pip rejected. Installation continued past them.
	Failed []model.Requirement

	// BrowserErr is non-nil when the Playwright browser install failed.
	BrowserErr error
}

// OK reports whether every step succeeded.
func (r *Report) OK() bool {
	return len(r.Failed) == 0 && r.BrowserErr == nil
}

// Installer installs Python requirements through pip.
type Installer struct {
	runner execx.Runner

	// Output receives pip's output when set (verbose mode). Nil keeps pip quiet.
	Output io.Writer

	// OnResult is called after each requirement is attempted.
	OnResult func(req model.Requirement, err error)
}

// NewInstaller creates an Installer.
func NewInstaller(runner execx.Runner) *Installer {
	return &Installer{runner: runner}
}

// InstallRequirements runs `py -m pip install "<req>"` for each requirement
// in order. A failure is recorded and the loop moves on.
func (i *Installer) InstallRequirements(ctx context.Context, py string, reqs []model.Requirement) *Report {
	log := ctxlog.FromContext(ctx)
	report := &Report{}

	for _, req := range reqs {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, req)
			continue
		}

		_, err := i.runner.Run(ctx, execx.Command{
			Name:   py,
			Args:   []string{"-m", "pip", "install", req.String()},
			Stdout: i.Output,
			Stderr: i.Output,
		})
		if err != nil {
			log.Debug("pip install failed", "requirement", req.String(), "error", err)
			report.Failed = append(report.Failed, req)
		} else {
			report.Installed = append(report.Installed, req)
		}
		if i.OnResult != nil {
			i.OnResult(req, err)
		}
	}

	return report
}

// InstallBrowser runs `py -m playwright install <browser>`. The error is
// returned for reporting; callers treat it as non-fatal.
func (i *Installer) InstallBrowser(ctx context.Context, py, browser string) error {
	_, err := i.runner.Run(ctx, execx.Command{
		Name:   py,
		Args:   []string{"-m", "playwright", "install", browser},
		Stdout: i.Output,
		Stderr: i.Output,
	})
	if err != nil {
		return fmt.Errorf("install playwright %s: %w", browser, err)
	}
	return nil
}

// Install installs every requirement and then the browser, collecting the
// outcome of both steps in one report.
func (i *Installer) Install(ctx context.Context, py string, reqs []model.Requirement, browser string) *Report {
	report := i.InstallRequirements(ctx, py, reqs)
	if browser != "" {
		report.BrowserErr = i.InstallBrowser(ctx, py, browser)
	}
	return report
}
