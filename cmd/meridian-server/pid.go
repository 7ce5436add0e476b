// FILE: cmd/meridian-server/pid.go
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// writePIDFile records the server pid at path. With lock set the file is
// held under an exclusive flock so a second server on the same path fails
// fast. The returned release func removes the file.
func writePIDFile(path string, lock bool) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, os.ErrExist) {
		if lock {
			if err := ownerAlive(path); err != nil {
				return nil, err
			}
		}
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0644)
	}
	if err != nil {
		return nil, fmt.Errorf("open pid file: %w", err)
	}

	if lock {
		if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			f.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				return nil, fmt.Errorf("pid file %s is locked by another server", path)
			}
			return nil, fmt.Errorf("lock pid file: %w", err)
		}
	}

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err == nil {
		err = f.Sync()
	}
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write pid file: %w", err)
	}

	return func() {
		f.Close() // drops the flock
		os.Remove(path)
	}, nil
}

// ownerAlive rejects a leftover pid file whose process still runs. A dead
// owner's file is reused.
func ownerAlive(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("pid file %s is corrupt: %q", path, data)
	}

	proc, _ := os.FindProcess(pid)
	err = proc.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return fmt.Errorf("server already running as pid %d", pid)
	case errors.Is(err, os.ErrProcessDone), errors.Is(err, syscall.ESRCH):
		return nil
	default:
		return fmt.Errorf("pid %d from %s may be running: %w", pid, path, err)
	}
}
