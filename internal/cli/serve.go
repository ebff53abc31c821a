// Package cli: serve.go implements the default action, `dicom-mcp` /
// `dicom-mcp serve`.
//
// Steps:
//  1. Resolve the Python interpreter
//  2. Check that the server's modules import
//  3. Install the local dicom_mcp package (pip install -e)
//  4. Run `python -m dicom_mcp.server` with inherited stdio
//
// Everything here writes to stderr: once step 4 starts, stdout carries MCP
// traffic between the client and the Python server.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/dicom-mcp/internal/ctxlog"
	"github.com/shinji-kodama/dicom-mcp/internal/deps"
	"github.com/shinji-kodama/dicom-mcp/internal/pkginstall"
	"github.com/shinji-kodama/dicom-mcp/internal/python"
	"github.com/shinji-kodama/dicom-mcp/internal/ui"
)

// NewServeCommand creates the "serve" cobra command. The root command runs
// the same logic when invoked without a subcommand.
// It is called from NewRootCommand to register as a subcommand.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Check dependencies and run the DICOM MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

// runServe is the main logic function for the default command.
// It runs the preparation steps in order and hands the terminal to the
// server. Every step failure is a CLIError whose code becomes the exit
// status; once the server runs, its own exit code is propagated.
func runServe(cmd *cobra.Command) error {
	errOut := cmd.ErrOrStderr()
	p := ui.NewPrinter(errOut)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := ctxlog.WithLogger(cmd.Context(), ctxlog.New(errOut, cfg.Verbose))
	log := ctxlog.FromContext(ctx)
	log.Debug("configuration loaded", "root", cfg.Root, "file", cfg.File, "interpreters", cfg.Interpreters)

	p.Title("DICOM MCP Server - Go Launcher")
	p.Blank()

	runner := newRunner()

	interp, err := python.NewResolver(runner, cfg.Interpreters, cfg.MinPython).Resolve(ctx)
	if err != nil {
		return err
	}
	p.Success("Found Python: %s", interp)

	if err := deps.NewChecker(runner).Check(ctx, interp.Command, cfg.Imports, cfg.Browser); err != nil {
		return err
	}
	p.Success("All Python dependencies are installed")

	p.Println("Setting up local dicom_mcp package...")
	inst := pkginstall.NewInstaller(runner)
	inst.Verbose = cfg.Verbose
	inst.Output = errOut
	if err := inst.Install(ctx, interp.Command, cfg.Root); err != nil {
		return err
	}
	p.Success("Local dicom_mcp package installed")

	p.Banner(ui.SymbolRocket + " Starting DICOM MCP Server")
	p.Info("Listening on stdio transport")
	p.Blank()

	l := newServerLauncher(interp.Command, cfg.ServerModule)
	l.Status = p
	return l.Run(ctx)
}
