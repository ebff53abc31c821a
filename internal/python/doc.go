// Package python locates the Python interpreter that runs the DICOM MCP
// server.
//
// Discovery is deliberately simple: each candidate command is asked for
// `--version` in order, and the first one that answers with a usable
// version wins. There is exactly one fallback (python3, then python) and
// no retry loop; a missing interpreter is a terminal diagnostic.
package python
