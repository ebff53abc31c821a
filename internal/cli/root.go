// Package cli implements the cobra-based CLI commands for dicom-mcp.
//
// Running the binary with no subcommand launches the DICOM MCP server
// (see serve.go). The setup, validate and probe subcommands are defined in
// their own files. This file defines the root command, global flags and the
// translation of errors into exit codes.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/dicom-mcp/internal/config"
	"github.com/shinji-kodama/dicom-mcp/internal/execx"
	"github.com/shinji-kodama/dicom-mcp/internal/launcher"
	"github.com/shinji-kodama/dicom-mcp/internal/model"
	"github.com/shinji-kodama/dicom-mcp/internal/ui"
)

// Global flag variables shared across all subcommands.
var (
	// jsonOutput switches validate/probe output and error reports to JSON.
	jsonOutput bool

	// verbose streams pip output and enables debug logging.
	verbose bool

	// rootDir overrides the package root (default: parent of the binary's directory).
	rootDir string

	// pythonCmd pins the interpreter instead of trying python3 then python.
	pythonCmd string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Constructors for the external processes the commands drive. Tests swap
// them for a scripted runner and a shell child.
var (
	// newRunner returns the runner used for python --version, the import
	// check and pip.
	newRunner = func() execx.Runner { return execx.NewExecRunner() }

	// newServerLauncher builds the launcher for `python -m <module>`.
	newServerLauncher = launcher.NewServer
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command runs the server launcher itself, so `dicom-mcp` can be
// registered directly as an MCP stdio server in client configurations.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dicom-mcp",
		Short: "Launcher for the DICOM MCP server",
		Long: `dicom-mcp finds a Python interpreter, verifies the DICOM MCP server's
dependencies, installs the bundled dicom_mcp package and then runs the
server over stdio.

Register it as a stdio MCP server in your client; all launcher messages go
to stderr so stdout stays reserved for the protocol.`,

		Args: cobra.NoArgs,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors lets Execute format errors (text or JSON).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Stream pip output and log debug details (env: DICOM_MCP_VERBOSE)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Package root containing pyproject.toml (env: DICOM_MCP_ROOT)")
	rootCmd.PersistentFlags().StringVar(&pythonCmd, "python", "", "Python interpreter to use (env: DICOM_MCP_PYTHON)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewSetupCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewProbeCommand())

	return rootCmd
}

// Execute runs the root command and exits with the code carried by any
// returned CLIError; other errors exit 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(int(reportError(rootCmd.ErrOrStderr(), err)))
	}
}

// reportError prints err and returns the exit code it maps to.
func reportError(w io.Writer, err error) model.ExitCode {
	var cliErr *model.CLIError
	if !errors.As(err, &cliErr) {
		cliErr = model.WrapCLIError(model.ExitGeneralError, err.Error(), nil)
	}
	printError(w, cliErr)
	return cliErr.Code
}

// printError outputs a CLIError in the appropriate format (JSON or text)
// based on the --json global flag.
func printError(w io.Writer, e *model.CLIError) {
	if jsonOutput {
		body := map[string]any{
			"message": e.Message,
			"code":    int(e.Code),
		}
		if e.Err != nil {
			body["detail"] = e.Err.Error()
		}
		if len(e.Hints) > 0 {
			body["hints"] = e.Hints
		}
		data, _ := json.MarshalIndent(map[string]any{"error": body}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	p := ui.NewPrinter(w)
	p.Error("Error: %s", e.Message)
	for _, hint := range e.Hints {
		p.Println("%s", hint)
	}
	if e.Err != nil {
		p.Hint("%v", e.Err)
	}
}

// loadConfig resolves configuration from flags, environment and file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Overrides{
		Root:    rootDir,
		Python:  pythonCmd,
		Verbose: verbose,
	})
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid configuration", err)
	}
	return cfg, nil
}
