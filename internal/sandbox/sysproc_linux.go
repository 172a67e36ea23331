//go:build linux

package sandbox

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

const isolationSupported = true

func sysProcAttr(isolate bool) *syscall.SysProcAttr {
	// Pdeathsig follows the spawning OS thread, not the process, so it is
	// only a backstop for server crashes. Execute kills the group itself.
	attr := &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
	if isolate {
		attr.Cloneflags = syscall.CLONE_NEWUSER | syscall.CLONE_NEWNET | syscall.CLONE_NEWNS | syscall.CLONE_NEWIPC
		attr.UidMappings = []syscall.SysProcIDMap{{ContainerID: os.Getuid(), HostID: os.Getuid(), Size: 1}}
		attr.GidMappings = []syscall.SysProcIDMap{{ContainerID: os.Getgid(), HostID: os.Getgid(), Size: 1}}
		attr.GidMappingsEnableSetgroups = false
	}
	return attr
}

// isolationRefused reports whether a start failure came from the kernel
// denying new namespaces (unprivileged user namespaces disabled, seccomp).
func isolationRefused(err error) bool {
	return errors.Is(err, syscall.EPERM) ||
		errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.ENOSYS) ||
		errors.Is(err, syscall.EACCES)
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	_ = cmd.Process.Kill()
}
