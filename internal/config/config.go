// Package config assembles launcher settings from built-in defaults, an
// optional YAML file, DICOM_MCP_* environment variables and CLI flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/caarlos0/env/v11"

	"github.com/shinji-kodama/dicom-mcp/internal/model"
	"github.com/shinji-kodama/dicom-mcp/internal/python"
	"github.com/shinji-kodama/dicom-mcp/internal/validate"
)

// DefaultFileName is looked up in the package root when DICOM_MCP_CONFIG
// is not set.
const DefaultFileName = "dicom-mcp.yaml"

// Switch is a boolean environment value that is true only for "1" or
// "true". Any other value, including typos, reads as false instead of
// failing startup.
type Switch bool

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Switch) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	*s = Switch(v == "1" || v == "true")
	return nil
}

// Env holds the DICOM_MCP_* environment variables.
type Env struct {
	Verbose      Switch `env:"DICOM_MCP_VERBOSE"`
	Python       string `env:"DICOM_MCP_PYTHON"`
	Root         string `env:"DICOM_MCP_ROOT"`
	ConfigFile   string `env:"DICOM_MCP_CONFIG"`
	ServerModule string `env:"DICOM_MCP_SERVER_MODULE"`
}

// Overrides are values supplied on the command line. Zero values are ignored.
type Overrides struct {
	Root    string
	Python  string
	Verbose bool
}

// Config is the resolved launcher configuration.
type Config struct {
	// Root is the package root holding pyproject.toml and dicom_mcp/.
	Root string

	// Verbose streams pip output and enables debug logging.
	Verbose bool

	// Interpreters is the ordered list of Python commands to try.
	Interpreters []string

	// MinPython is the oldest acceptable interpreter version.
	MinPython *semver.Version

	// Requirements are installed by setup.
	Requirements []model.Requirement

	// Imports are checked before launching the server.
	Imports []string

	// Browser is the Playwright browser installed by setup.
	Browser string

	// ServerModule is run with `python -m`.
	ServerModule string

	// RequiredFiles are the package files checked by validate.
	RequiredFiles []string

	// File is the YAML file that was loaded, if any.
	File string
}

// Default returns the built-in configuration for root.
func Default(root string) *Config {
	return &Config{
		Root:          root,
		Interpreters:  append([]string(nil), python.DefaultCandidates...),
		MinPython:     python.DefaultMinVersion,
		Requirements:  model.MustParseRequirements(model.DefaultRequirements),
		Imports:       append([]string(nil), model.DefaultImportCheck...),
		Browser:       model.DefaultBrowser,
		ServerModule:  model.DefaultServerModule,
		RequiredFiles: append([]string(nil), validate.DefaultRequiredFiles...),
	}
}

// Load resolves the configuration.
func Load(o Overrides) (*Config, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	root := firstNonEmpty(o.Root, e.Root)
	if root == "" {
		var err error
		root, err = DefaultRoot()
		if err != nil {
			return nil, err
		}
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve package root: %w", err)
	}

	cfg := Default(root)

	path, explicit := e.ConfigFile, e.ConfigFile != ""
	if !explicit {
		path = filepath.Join(root, DefaultFileName)
	}
	f, err := ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.apply(f); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.File = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// optional
	default:
		return nil, err
	}

	if e.ServerModule != "" {
		cfg.ServerModule = e.ServerModule
	}
	if py := firstNonEmpty(o.Python, e.Python); py != "" {
		cfg.Interpreters = []string{py}
	}
	cfg.Verbose = o.Verbose || bool(e.Verbose)

	return cfg, nil
}

// apply overlays the non-empty fields of f onto cfg.
func (c *Config) apply(f *File) error {
	if len(f.Interpreters) > 0 {
		c.Interpreters = f.Interpreters
	}
	if f.MinPython != "" {
		v, err := semver.NewVersion(f.MinPython)
		if err != nil {
			return fmt.Errorf("invalid minPython %q: %w", f.MinPython, err)
		}
		c.MinPython = v
	}
	if len(f.Requirements) > 0 {
		reqs, err := model.ParseRequirements(f.Requirements)
		if err != nil {
			return err
		}
		c.Requirements = reqs
	}
	if len(f.Imports) > 0 {
		c.Imports = f.Imports
	}
	if f.Browser != "" {
		c.Browser = f.Browser
	}
	if f.ServerModule != "" {
		c.ServerModule = f.ServerModule
	}
	if len(f.RequiredFiles) > 0 {
		c.RequiredFiles = f.RequiredFiles
	}
	return nil
}

// DefaultRoot returns the parent of the directory holding the running
// executable, matching an install layout of <root>/bin/dicom-mcp.
func DefaultRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
