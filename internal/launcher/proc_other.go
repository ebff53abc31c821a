//go:build !linux

package launcher

import "os/exec"

func setPlatformAttrs(cmd *exec.Cmd) {}
