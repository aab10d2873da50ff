//go:build windows

package daemon

import (
	"os"
	"syscall"
)

func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// No SIGTERM on Windows.
func terminate(p *os.Process) error {
	return p.Kill()
}

func alive(p *os.Process) bool {
	return p.Signal(syscall.Signal(0)) == nil
}
