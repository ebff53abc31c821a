// Package execx runs external commands for the dicom-mcp launcher.
//
// Every Python invocation (version probes, import checks, pip installs)
// goes through the Runner interface so orchestration code can be tested
// with a scripted fake instead of a real interpreter.
package execx
