// Package model defines the domain types for the dicom-mcp launcher.
package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Interpreter identifies the Python interpreter chosen at startup.
type Interpreter struct {
	// Command is the executable name or path used to invoke Python
	// (e.g., "python3").
	Command string `json:"command"`

	// Version is the version reported by `<command> --version`.
	Version *semver.Version `json:"-"`
}

// String returns "Python 3.11.4 (python3)" style text for status lines.
func (i Interpreter) String() string {
	if i.Version == nil {
		return i.Command
	}
	return fmt.Sprintf("Python %s (%s)", i.Version.String(), i.Command)
}

// DefaultRequirements is the fixed list of Python packages the DICOM MCP
// server needs at runtime.
var DefaultRequirements = []string{
	"mcp>=0.8.0",
	"pydantic>=2.0",
	"playwright>=1.40.0",
	"httpx>=0.24.0",
	"aiofiles>=23.0.0",
	"pydicom>=2.3.0",
}

// DefaultImportCheck lists the modules that must import cleanly before the
// server is launched.
var DefaultImportCheck = []string{"mcp", "pydantic", "playwright"}

// DefaultBrowser is the Playwright browser installed by setup.
const DefaultBrowser = "chromium"

// DefaultServerModule is the Python module run with `python -m`.
const DefaultServerModule = "dicom_mcp.server"

// ManifestFile is the Python project manifest expected in the package root.
const ManifestFile = "pyproject.toml"

// Requirement is a single pip requirement specifier such as "mcp>=0.8.0".
//
// The text is checked for PEP 508 shape (a distribution name, optional
// extras, optional PEP 440 version clauses or a direct URL, and an optional
// environment marker) and then handed to pip unchanged. Version semantics
// are left to pip.
type Requirement struct {
	// Name is the distribution name (e.g., "pydantic"), including extras
	// such as "mcp[cli]".
	Name string `json:"name" yaml:"name"`

	// Specifier is the version clause (e.g., ">=2.0") or "@ <url>". Empty
	// means any version.
	Specifier string `json:"specifier,omitempty" yaml:"specifier,omitempty"`

	// Marker is the environment marker after ";" (e.g., "python_version>='3.9'").
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty"`

	raw string
}

var (
	// requirementName matches a PEP 508 distribution name with optional extras.
	requirementName = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?(?:\s*\[[A-Za-z0-9._,\s-]*\])?`)

	// pep440Version matches a public or local PEP 440 version, optionally
	// with a trailing ".*" wildcard.
	pep440Version = regexp.MustCompile(`(?i)^v?(?:\d+!)?\d+(?:\.\d+)*(?:\.\*)?` +
		`(?:[-_.]?(?:a|b|c|rc|alpha|beta|pre|preview)[-_.]?\d*)?` +
		`(?:-\d+|[-_.]?(?:post|rev|r)[-_.]?\d*)?` +
		`(?:[-_.]?dev[-_.]?\d*)?` +
		`(?:\+[a-z0-9]+(?:[-_.][a-z0-9]+)*)?$`)
)

// pipOperators are the PEP 440 comparison operators. Longer operators come
// first so "===" is not read as "==".
var pipOperators = []string{"===", "==", "~=", "!=", "<=", ">=", "<", ">"}

// ParseRequirement parses a pip requirement specifier.
func ParseRequirement(s string) (Requirement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Requirement{}, fmt.Errorf("requirement must not be empty")
	}

	req := Requirement{raw: s}
	body := s
	if i := strings.Index(s, ";"); i >= 0 {
		body = strings.TrimSpace(s[:i])
		req.Marker = strings.TrimSpace(s[i+1:])
		if req.Marker == "" {
			return Requirement{}, fmt.Errorf("invalid requirement %q: empty environment marker", s)
		}
	}

	name := requirementName.FindString(body)
	if name == "" {
		return Requirement{}, fmt.Errorf("invalid requirement %q: missing package name", s)
	}
	req.Name = name
	req.Specifier = strings.TrimSpace(body[len(name):])

	if err := checkSpecifier(req.Specifier); err != nil {
		return Requirement{}, fmt.Errorf("invalid requirement %q: %w", s, err)
	}
	return req, nil
}

// checkSpecifier validates "@ url" or comma-separated "<op><version>" clauses.
func checkSpecifier(spec string) error {
	if spec == "" {
		return nil
	}
	if url, ok := strings.CutPrefix(spec, "@"); ok {
		if strings.TrimSpace(url) == "" {
			return fmt.Errorf("missing URL after @")
		}
		return nil
	}
	if strings.HasPrefix(spec, "(") && strings.HasSuffix(spec, ")") {
		spec = spec[1 : len(spec)-1]
	}

	for _, clause := range strings.Split(spec, ",") {
		clause = strings.TrimSpace(clause)
		op := ""
		for _, candidate := range pipOperators {
			if strings.HasPrefix(clause, candidate) {
				op = candidate
				break
			}
		}
		if op == "" {
			return fmt.Errorf("clause %q has no version operator", clause)
		}

		version := strings.TrimSpace(strings.TrimPrefix(clause, op))
		switch {
		case version == "":
			return fmt.Errorf("clause %q has no version", clause)
		case op == "===":
			// arbitrary equality compares strings
			if strings.ContainsAny(version, " \t") {
				return fmt.Errorf("clause %q has an invalid version", clause)
			}
		case !pep440Version.MatchString(version):
			return fmt.Errorf("clause %q has an invalid version", clause)
		case strings.HasSuffix(version, ".*") && op != "==" && op != "!=":
			return fmt.Errorf("clause %q: wildcards need == or !=", clause)
		}
	}
	return nil
}

// MustParseRequirements parses a list of specifiers and panics on the first
// invalid one. It is meant for package-level defaults.
func MustParseRequirements(specs []string) []Requirement {
	reqs, err := ParseRequirements(specs)
	if err != nil {
		panic(err)
	}
	return reqs
}

// ParseRequirements parses every specifier in specs.
func ParseRequirements(specs []string) ([]Requirement, error) {
	reqs := make([]Requirement, 0, len(specs))
	for _, spec := range specs {
		req, err := ParseRequirement(spec)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// String returns the requirement exactly as it was written.
func (r Requirement) String() string {
	if r.raw != "" {
		return r.raw
	}
	s := r.Name + r.Specifier
	if r.Marker != "" {
		s += "; " + r.Marker
	}
	return s
}

// ExitCode defines the process exit codes returned by the launcher.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitInterpreterNotFound indicates no usable Python interpreter was found.
	ExitInterpreterNotFound ExitCode = 2

	// ExitDependenciesMissing indicates required Python modules failed to import.
	ExitDependenciesMissing ExitCode = 3

	// ExitManifestNotFound indicates pyproject.toml is missing from the package root.
	ExitManifestNotFound ExitCode = 4

	// ExitInstallFailed indicates `pip install -e` of the local package failed.
	ExitInstallFailed ExitCode = 5

	// ExitServerStartFailed indicates the server process could not be spawned.
	ExitServerStartFailed ExitCode = 6

	// ExitValidationFailed indicates package validation found a problem.
	ExitValidationFailed ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error

	// Hints are follow-up lines shown beneath the message, such as
	// installation instructions.
	Hints []string
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// WithHints appends follow-up lines and returns the same error for chaining.
func (e *CLIError) WithHints(hints ...string) *CLIError {
	e.Hints = append(e.Hints, hints...)
	return e
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
