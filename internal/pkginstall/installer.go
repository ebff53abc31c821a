// Package pkginstall installs the local dicom_mcp Python package from the
// launcher's package root in editable mode.
package pkginstall

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shinji-kodama/dicom-mcp/internal/ctxlog"
	"github.com/shinji-kodama/dicom-mcp/internal/execx"
	"github.com/shinji-kodama/dicom-mcp/internal/model"
)

// Installer runs `pip install -e` against the package root.
type Installer struct {
	runner execx.Runner

	// Verbose drops pip's -q flag and streams its output to Output.
	Verbose bool

	// Output receives pip output in verbose mode.
	Output io.Writer
}

// NewInstaller creates an Installer.
func NewInstaller(runner execx.Runner) *Installer {
	return &Installer{runner: runner}
}

// Args returns the pip arguments used for root.
func (i *Installer) Args(root string) []string {
	args := []string{"-m", "pip", "install"}
	if !i.Verbose {
		args = append(args, "-q")
	}
	return append(args, "-e", root)
}

// Install verifies that root contains pyproject.toml and installs it.
//
// Returns a CLIError with ExitManifestNotFound when the manifest is
// missing, or ExitInstallFailed when pip fails.
func (i *Installer) Install(ctx context.Context, py, root string) error {
	manifest := filepath.Join(root, model.ManifestFile)
	info, err := os.Stat(manifest)
	if err != nil || info.IsDir() {
		return model.NewCLIError(
			model.ExitManifestNotFound,
			fmt.Sprintf("%s not found in %s", model.ManifestFile, root),
		).WithHints(
			"This might be a packaging issue.",
			"Make sure dicom_mcp and pyproject.toml are included in the package.",
		)
	}

	cmd := execx.Command{Name: py, Args: i.Args(root)}
	if i.Verbose && i.Output != nil {
		cmd.Stdout = i.Output
		cmd.Stderr = i.Output
	}

	ctxlog.FromContext(ctx).Debug("installing local package", "command", cmd.String())
	if _, err := i.runner.Run(ctx, cmd); err != nil {
		return model.WrapCLIError(
			model.ExitInstallFailed,
			"Failed to install dicom_mcp",
			err,
		).WithHints(
			"Make sure:",
			"  1. Python 3.9+ is installed",
			"  2. You have internet connection for pip downloads",
			"  3. The dicom_mcp and pyproject.toml files are present",
		)
	}
	return nil
}
