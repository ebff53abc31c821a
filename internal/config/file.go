package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML configuration. Every field is optional.
//
// Example:
//
//	interpreters: [python3.12, python3]
//	minPython: "3.10"
//	requirements:
//	  - mcp>=1.0
//	  - pydicom>=2.4
//	imports: [mcp, pydantic, playwright, pydicom]
//	browser: chromium
//	serverModule: dicom_mcp.server
//	requiredFiles: [package.json, pyproject.toml, dicom_mcp/server.py]
type File struct {
	Interpreters  []string `yaml:"interpreters"`
	MinPython     string   `yaml:"minPython"`
	Requirements  []string `yaml:"requirements"`
	Imports       []string `yaml:"imports"`
	Browser       string   `yaml:"browser"`
	ServerModule  string   `yaml:"serverModule"`
	RequiredFiles []string `yaml:"requiredFiles"`
}

// ReadFile decodes a YAML configuration file. Unknown keys are rejected so
// typos do not silently fall back to defaults. An empty file is valid.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &f, nil
}
