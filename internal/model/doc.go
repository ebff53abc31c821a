// Package model defines the domain types and value objects for the
// dicom-mcp launcher.
//
// This package contains pure data structures with no process or filesystem
// side effects: the discovered Python interpreter, pip requirement
// specifiers, and the exit codes the CLI returns to the OS.
//
// The package also defines a custom error type (CLIError) that carries an
// exit code and the follow-up hints printed under the diagnostic.
package model
