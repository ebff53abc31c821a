// Package deps checks and installs the Python packages the DICOM MCP server
// imports at runtime, plus the Playwright browser it drives.
//
// Checking is strict: a failed import stops the launch with instructions.
// Installing is best-effort: each requirement is attempted independently and
// failures are reported rather than aborting the run, because pip commonly
// fails on packages that are already present in a locked environment.
package deps
