package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// pidFileError distinguishes a bad-PID-file condition from every other
// startup failure, per the external interface's exit code -1.
type pidFileError struct {
	path string
	err  error
}

func (e *pidFileError) Error() string {
	return fmt.Sprintf("pid file %s: %v", e.path, e.err)
}

func (e *pidFileError) Unwrap() error { return e.err }

// writePIDFile records the running process's PID at path.
func writePIDFile(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// readPIDFile reads and parses the PID recorded at path.
func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, &pidFileError{path: path, err: err}
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, &pidFileError{path: path, err: fmt.Errorf("malformed pid: %w", err)}
	}
	return pid, nil
}

// removePIDFile deletes path. A missing file is not an error, so a
// shutdown after the file was already removed still succeeds.
func removePIDFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// signalProcess delivers sig to the process recorded in the PID file at
// path, failing with a *pidFileError if the file is absent or malformed.
func signalProcess(path string, sig syscall.Signal) error {
	pid, err := readPIDFile(path)
	if err != nil {
		return err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return &pidFileError{path: path, err: err}
	}
	if err := proc.Signal(sig); err != nil {
		return &pidFileError{path: path, err: fmt.Errorf("signaling pid %d: %w", pid, err)}
	}
	return nil
}

// daemonize re-execs the current binary with --foreground appended and
// detaches it into its own session, then writes the child's PID to
// pidFile itself so the original process can return immediately. Go cannot fork
// an already-running multi-threaded process safely, so re-exec is the
// idiomatic substitute for the classic double-fork daemon.
func daemonize(pidFile string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("daemonize: resolving executable: %w", err)
	}

	args := append([]string{}, os.Args[1:]...)
	args = append(args, "--foreground")

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("daemonize: opening %s: %w", os.DevNull, err)
	}
	defer devnull.Close()

	proc, err := os.StartProcess(exe, append([]string{exe}, args...), &os.ProcAttr{
		Files: []*os.File{devnull, devnull, devnull},
		Sys:   &syscall.SysProcAttr{Setsid: true},
	})
	if err != nil {
		return fmt.Errorf("daemonize: starting background process: %w", err)
	}

	return os.WriteFile(pidFile, []byte(strconv.Itoa(proc.Pid)+"\n"), 0o644)
}
