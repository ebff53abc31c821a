// Package cli: probe.go implements `dicom-mcp probe`, a smoke test that
// starts the server as an MCP client would, lists its tools and optionally
// calls one.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/dicom-mcp/internal/ctxlog"
	"github.com/shinji-kodama/dicom-mcp/internal/model"
	"github.com/shinji-kodama/dicom-mcp/internal/probe"
	"github.com/shinji-kodama/dicom-mcp/internal/python"
	"github.com/shinji-kodama/dicom-mcp/internal/ui"
)

// Flags for the probe command.
var (
	probeCall    string
	probeArgs    []string
	probeTimeout time.Duration
)

// newProbeTransport is replaced in tests with an in-memory transport.
var newProbeTransport = func(py, module string, stderr io.Writer) mcp.Transport {
	return probe.CommandTransport(py, module, stderr)
}

// NewProbeCommand creates the "probe" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewProbeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Start the server and list its MCP tools",
		Long: `Start the DICOM MCP server over stdio, list the tools it exposes and
optionally call one of them.

Dependencies are not installed; run "dicom-mcp setup" first.`,
		Example: `  # List tools
  dicom-mcp probe

  # Call a tool with arguments
  dicom-mcp probe --call validate_url --arg url=https://viewer.example.com/study/1

  # Machine-readable output
  dicom-mcp probe --json`,
		Args: cobra.NoArgs,
		RunE: runProbe,
	}

	cmd.Flags().StringVar(&probeCall, "call", "", "Tool to call after listing")
	cmd.Flags().StringArrayVar(&probeArgs, "arg", nil, "Tool argument as key=value (repeatable)")
	cmd.Flags().DurationVar(&probeTimeout, "timeout", 30*time.Second, "Overall probe timeout")

	return cmd
}

// runProbe is the main logic function for the probe command.
// It resolves the interpreter, starts the server through newProbeTransport
// and prints the report. Dependencies are not checked first: an import
// failure surfaces as a failed MCP handshake.
func runProbe(cmd *cobra.Command, args []string) error {
	arguments, err := probe.ParseArguments(probeArgs)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid --arg", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := ctxlog.WithLogger(cmd.Context(), ctxlog.New(cmd.ErrOrStderr(), cfg.Verbose))
	if probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, probeTimeout)
		defer cancel()
	}

	interp, err := python.NewResolver(newRunner(), cfg.Interpreters, cfg.MinPython).Resolve(ctx)
	if err != nil {
		return err
	}

	transport := newProbeTransport(interp.Command, cfg.ServerModule, cmd.ErrOrStderr())
	report, err := probe.Run(ctx, transport, Version, probe.Options{Call: probeCall, Arguments: arguments})
	if err != nil {
		return model.WrapCLIError(model.ExitServerStartFailed, "MCP probe failed", err).
			WithHints("Check that the server starts: "+interp.Command+" -m "+cfg.ServerModule,
				"Install missing dependencies with: dicom-mcp setup")
	}

	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		printProbeReport(ui.NewPrinter(cmd.OutOrStdout()), report)
	}

	if report.Call != nil && report.Call.IsError {
		return model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("tool %s returned an error", report.Call.Tool))
	}
	return nil
}

// printProbeReport prints the tool list and, when a tool was called, its
// status and text output.
//
// Output format:
//
//	Available tools (2)
//	  - validate_url: Validate a medical imaging viewer URL
//	  - list_supported_providers: List supported hospital providers
func printProbeReport(p *ui.Printer, report *probe.Report) {
	p.Title("Available tools (%d)", len(report.Tools))
	for _, tool := range report.Tools {
		if tool.Description != "" {
			p.Println("  - %s: %s", tool.Name, tool.Description)
		} else {
			p.Println("  - %s", tool.Name)
		}
	}

	if report.Call == nil {
		return
	}
	p.Blank()
	p.Item(!report.Call.IsError, "%s", report.Call.Tool)
	if report.Call.Text != "" {
		p.Println("%s", report.Call.Text)
	}
}
