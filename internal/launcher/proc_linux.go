//go:build linux

package launcher

import (
	"os/exec"
	"syscall"
)

// setPlatformAttrs makes the kernel SIGKILL the server if the launcher
// dies before it can forward a signal.
func setPlatformAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: syscall.SIGKILL,
	}
}
