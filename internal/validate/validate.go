// Package validate checks that a dicom-mcp distribution contains every file
// the launcher needs and that its package.json identifies the expected
// release.
//
// package.json is read through github.com/tidwall/jsonc so hand-edited
// manifests with comments or trailing commas still validate.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/dicom-mcp/internal/model"
)

// DefaultRequiredFiles are checked relative to the package root. The list
// can be replaced through the requiredFiles key of dicom-mcp.yaml.
var DefaultRequiredFiles = []string{
	"package.json",
	"README.md",
	"README_CN.md",
	"LICENSE",
	"bin/dicom-mcp",
	"pyproject.toml",
	"dicom_mcp/server.py",
}

const (
	// DefaultPackageName is the expected package.json "name".
	DefaultPackageName = "dicom-mcp"

	// DefaultPackageVersion is the expected package.json "version".
	DefaultPackageVersion = "1.0.0"
)

// PackageManifest is the subset of package.json inspected here.
type PackageManifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FileCheck is the outcome for one required file.
type FileCheck struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// Result describes a validation run.
type Result struct {
	Root     string           `json:"root"`
	Valid    bool             `json:"valid"`
	Files    []FileCheck      `json:"files"`
	Manifest *PackageManifest `json:"manifest,omitempty"`

	// Error is the failure message when Valid is false.
	Error string `json:"error,omitempty"`
}

// Validator validates a package root.
type Validator struct {
	RequiredFiles   []string
	ExpectedName    string
	ExpectedVersion string
}

// NewValidator returns a Validator with the default file list and
// expected identity.
func NewValidator() *Validator {
	return &Validator{
		RequiredFiles:   append([]string(nil), DefaultRequiredFiles...),
		ExpectedName:    DefaultPackageName,
		ExpectedVersion: DefaultPackageVersion,
	}
}

// Validate checks the required files in order and stops at the first
// missing one, then validates package.json.
//
// The returned Result is populated up to the point of failure so callers
// can render partial progress. Failures are CLIErrors with
// ExitValidationFailed.
func (v *Validator) Validate(root string) (*Result, error) {
	res := &Result{Root: root}
	if err := v.run(res); err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.Valid = true
	return res, nil
}

// run fills res and returns the first failure.
func (v *Validator) run(res *Result) error {
	root := res.Root

	for _, rel := range v.RequiredFiles {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		check := FileCheck{Path: rel, Exists: err == nil}
		res.Files = append(res.Files, check)
		if !check.Exists {
			return model.NewCLIError(
				model.ExitValidationFailed,
				fmt.Sprintf("%s NOT FOUND", rel),
			)
		}
	}

	manifest, err := ReadManifest(filepath.Join(root, "package.json"))
	if err != nil {
		return model.WrapCLIError(model.ExitValidationFailed, "Invalid package.json", err)
	}
	res.Manifest = manifest

	if manifest.Name != v.ExpectedName || manifest.Version != v.ExpectedVersion {
		return model.NewCLIError(
			model.ExitValidationFailed,
			fmt.Sprintf("package.json version mismatch: got %s@%s, want %s@%s",
				manifest.Name, manifest.Version, v.ExpectedName, v.ExpectedVersion),
		)
	}

	return nil
}

// ReadManifest parses package.json, tolerating JSONC syntax.
func ReadManifest(path string) (*PackageManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var m PackageManifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}
