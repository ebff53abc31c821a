// Package main is the entry point for the dicom-mcp launcher.
//
// The binary prepares a Python environment for the DICOM MCP server and
// runs it over stdio. All functionality lives in internal/cli.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release build.
package main

import (
	"github.com/shinji-kodama/dicom-mcp/internal/cli"
)

// version, commit, and date are set at build time via
// -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
