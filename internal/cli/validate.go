// Package cli: validate.go implements `dicom-mcp validate`, which checks
// that a package root holds every file the published package needs and
// that package.json carries the expected name and version.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/dicom-mcp/internal/ui"
	"github.com/shinji-kodama/dicom-mcp/internal/validate"
)

// expectVersion is the package.json version validate requires.
var expectVersion string

// NewValidateCommand creates the "validate" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the package layout before publishing",
		Long: `Check that the package root contains every required file and that
package.json names the expected package and version.

The first missing file stops validation. The file list can be replaced with
the requiredFiles key of dicom-mcp.yaml.`,
		Example: `  # Validate the installed package
  dicom-mcp validate

  # Validate a checkout against a release version
  dicom-mcp validate --root . --expect-version 1.1.0`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}

	cmd.Flags().StringVar(&expectVersion, "expect-version", validate.DefaultPackageVersion, "Required package.json version")

	return cmd
}

// runValidate is the main logic function for the validate command.
// It validates the configured package root and prints the per-file checks
// in text or JSON. The partial result is printed before a failure is
// returned, so the files checked so far stay visible in both formats.
func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	v := validate.NewValidator()
	v.RequiredFiles = cfg.RequiredFiles
	v.ExpectedVersion = expectVersion

	res, verr := v.Validate(cfg.Root)

	if jsonOutput {
		if err := printValidateResultJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		return verr
	}

	printValidateResultText(ui.NewPrinter(cmd.OutOrStdout()), res)
	return verr
}

// printValidateResultJSON writes the result, including the failure message
// when validation stopped early.
func printValidateResultJSON(w io.Writer, res *validate.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printValidateResultText prints a ✓ line per file found and, on success,
// the package identity. The failure itself is reported by Execute.
//
// Output format:
//
//	Validating DICOM MCP package...
//
//	✓ package.json
//	✓ README.md
//	...
//	✓ package.json valid (dicom-mcp@1.0.0)
func printValidateResultText(p *ui.Printer, res *validate.Result) {
	p.Println("Validating DICOM MCP package...")
	p.Blank()
	for _, f := range res.Files {
		if f.Exists {
			p.Success("%s", f.Path)
		}
	}
	if !res.Valid {
		return
	}
	p.Success("package.json valid (%s@%s)", res.Manifest.Name, res.Manifest.Version)
	p.Blank()
	p.Println("%s Package structure is valid", ui.SymbolDone)
}
