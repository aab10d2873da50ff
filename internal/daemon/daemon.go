package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrAlreadyRunning = errors.New("panda-repository is already running")
	ErrNotRunning     = errors.New("panda-repository is not running")
)

// Daemon tracks a background server through a PID file next to its log
type Daemon struct {
	PIDFile string
	LogFile string
}

// New returns a Daemon keeping its files in dataDir
func New(dataDir string) (*Daemon, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dataDir, err)
	}
	return &Daemon{
		PIDFile: filepath.Join(dataDir, "panda-repository.pid"),
		LogFile: filepath.Join(dataDir, "panda-repository.log"),
	}, nil
}

// Start re-executes the current binary with args, detached, and records its PID
func (d *Daemon) Start(args []string) (int, error) {
	if pid, running := d.IsRunning(); running {
		return pid, fmt.Errorf("%w (PID: %d)", ErrAlreadyRunning, pid)
	}
	d.cleanStalePID()

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	logFile, err := os.OpenFile(d.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(executable, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = detachAttr()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start server: %w", err)
	}

	pid := cmd.Process.Pid
	if err := d.writePID(pid); err != nil {
		cmd.Process.Kill()
		return 0, fmt.Errorf("failed to write PID file: %w", err)
	}
	return pid, nil
}

// Stop terminates the recorded process and removes the PID file
func (d *Daemon) Stop() error {
	pid, running := d.IsRunning()
	if !running {
		d.cleanStalePID()
		return ErrNotRunning
	}
	defer d.removePID()

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := terminate(process); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

// IsRunning reports the recorded PID and whether that process is alive
func (d *Daemon) IsRunning() (int, bool) {
	pid, err := d.readPID()
	if err != nil {
		return 0, false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}
	return pid, alive(process)
}

func (d *Daemon) writePID(pid int) error {
	return os.WriteFile(d.PIDFile, []byte(strconv.Itoa(pid)), 0644)
}

func (d *Daemon) readPID() (int, error) {
	data, err := os.ReadFile(d.PIDFile)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func (d *Daemon) removePID() {
	os.Remove(d.PIDFile)
}

func (d *Daemon) cleanStalePID() {
	if _, err := os.Stat(d.PIDFile); err == nil {
		if _, running := d.IsRunning(); !running {
			d.removePID()
		}
	}
}
