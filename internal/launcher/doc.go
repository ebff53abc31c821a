// Package launcher runs the DICOM MCP server as a child process.
//
// The child inherits the launcher's stdin, stdout and stderr directly, so
// the MCP client talks to the Python server with no intermediation. The
// launcher only owns the process lifecycle:
//   - SIGINT/SIGTERM received by the launcher are forwarded to the child,
//     which is given a grace period before being killed; the launcher then
//     exits 0.
//   - A child that exits non-zero on its own has its exit code propagated.
//   - On Linux the child is also killed by the kernel if the launcher dies
//     without getting a chance to forward anything (Pdeathsig).
package launcher
