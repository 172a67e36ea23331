//go:build !unix

package sandbox

import (
	"os/exec"
	"syscall"
)

const isolationSupported = false

func sysProcAttr(bool) *syscall.SysProcAttr { return nil }

func isolationRefused(error) bool { return false }

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
