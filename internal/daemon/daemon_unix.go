//go:build !windows

package daemon

import (
	"os"
	"syscall"
)

func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}

// FindProcess always succeeds on Unix; signal 0 probes for the process.
func alive(p *os.Process) bool {
	return p.Signal(syscall.Signal(0)) == nil
}
