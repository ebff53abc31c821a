// Package cli: setup.go implements `dicom-mcp setup`, the post-install
// step that installs the server's Python requirements and the Playwright
// browser.
//
// Setup runs from package-manager hooks, so a missing interpreter or a
// failing pip step is reported but never fails the command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/dicom-mcp/internal/ctxlog"
	"github.com/shinji-kodama/dicom-mcp/internal/deps"
	"github.com/shinji-kodama/dicom-mcp/internal/model"
	"github.com/shinji-kodama/dicom-mcp/internal/python"
	"github.com/shinji-kodama/dicom-mcp/internal/ui"
)

// NewSetupCommand creates the "setup" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewSetupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Install the Python dependencies and Playwright browser",
		Long: `Install each Python requirement with pip, then the Playwright browser.

Failures are reported as warnings; setup always exits 0 so it can run as a
post-install hook. With --verbose, pip output is streamed to stderr instead
of showing a spinner.`,
		Args: cobra.NoArgs,
		RunE: runSetup,
	}
}

// runSetup is the main logic function for the setup command.
// It resolves the interpreter, runs the best-effort installer and prints a
// line per requirement followed by the browser outcome.
func runSetup(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := ctxlog.WithLogger(cmd.Context(), ctxlog.New(cmd.ErrOrStderr(), cfg.Verbose))
	runner := newRunner()

	interp, err := python.NewResolver(runner, cfg.Interpreters, cfg.MinPython).Resolve(ctx)
	if err != nil {
		var cliErr *model.CLIError
		if !errors.As(err, &cliErr) || cliErr.Code != model.ExitInterpreterNotFound {
			return err
		}
		if errors.Is(err, python.ErrTooOld) {
			p.Warning("Warning: %s", cliErr.Message)
		} else {
			p.Warning("Warning: Python 3 is not installed")
		}
		p.Println("Please install Python %d.%d or later from %s",
			cfg.MinPython.Major(), cfg.MinPython.Minor(), python.DownloadURL)
		p.Println("Then run: %s", p.Command("dicom-mcp setup"))
		return nil
	}

	p.Println("%s Installing Python dependencies for DICOM MCP...", ui.SymbolBox)
	p.Blank()

	report := installAll(ctx, p, deps.NewInstaller(runner), interp, cfg.Requirements, cfg.Browser,
		cfg.Verbose, cmd.ErrOrStderr())

	if cfg.Browser != "" {
		p.Blank()
		if report.BrowserErr != nil {
			p.Warning("Could not install Playwright browsers")
			p.Println("Run manually: %s", p.Command("playwright install "+cfg.Browser))
		} else {
			p.Success("%s browser installed", cfg.Browser)
		}
	}

	ctxlog.FromContext(ctx).Debug("setup finished",
		"installed", len(report.Installed), "failed", len(report.Failed), "browser_error", report.BrowserErr)

	p.Blank()
	if !report.OK() {
		p.Hint("Some steps did not succeed. Rerun with %s to see pip output.", p.Command("dicom-mcp setup --verbose"))
	}
	p.Println("%s Setup complete!", ui.SymbolDone)
	p.Println("You can now run: %s", p.Command("dicom-mcp"))
	return nil
}

// installAll runs the installer and prints one line per requirement as it
// finishes. In verbose mode pip output is streamed to pipOut and no spinner
// is drawn, so the two never interleave on a terminal.
func installAll(ctx context.Context, p *ui.Printer, inst *deps.Installer, interp model.Interpreter,
	reqs []model.Requirement, browser string, verbose bool, pipOut io.Writer) *deps.Report {
	var report *deps.Report
	install := func(out io.Writer) error {
		lines := p.WithWriter(out)
		inst.OnResult = func(req model.Requirement, err error) {
			if err != nil {
				lines.Item(false, "%s (may already be installed)", req)
				return
			}
			lines.Item(true, "%s", req)
		}
		report = inst.Install(ctx, interp.Command, reqs, browser)
		return nil
	}

	if verbose {
		inst.Output = pipOut
		_ = install(p.Writer())
		return report
	}

	message := fmt.Sprintf("Installing with %s...", interp)
	_ = ui.WithSpinner(p.Writer(), message, install)
	return report
}
