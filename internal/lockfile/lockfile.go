// Package lockfile guards the state directory against concurrent TripFlow
// instances. Two processes writing the same SQLite database corrupt session
// snapshots, so the process holds an flock for its lifetime; the kernel
// releases it even on a crash.
package lockfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

// LockFileName is the lock file created inside the state directory.
const LockFileName = "tripflow.lock"

// Lock is an acquired state-directory lock.
type Lock struct {
	file     *os.File
	path     string
	acquired bool
}

// Acquire takes an exclusive non-blocking lock on the state directory,
// creating the directory if needed. It fails immediately when another
// process holds the lock.
func Acquire(stateDir string) (*Lock, error) {
	lockPath := filepath.Join(stateDir, LockFileName)
	slog.Debug("lockfile.Acquire attempting lock", "path", lockPath)

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		slog.Error("lockfile.Acquire failed to create state directory", "error", err, "dir", stateDir)
		return nil, fmt.Errorf("failed to create state directory %s: %w", stateDir, err)
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		slog.Error("lockfile.Acquire failed to open lock file", "error", err, "path", lockPath)
		return nil, fmt.Errorf("failed to open lock file %s: %w", lockPath, err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		slog.Error("lockfile.Acquire lock already held", "error", err, "path", lockPath)
		return nil, fmt.Errorf("another tripflow instance is using state directory %s (lock file %s): %w", stateDir, lockPath, err)
	}

	if _, err := fmt.Fprintf(file, "pid=%d\n", os.Getpid()); err != nil {
		syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		file.Close()
		return nil, fmt.Errorf("failed to write lock file %s: %w", lockPath, err)
	}

	slog.Info("Acquired state directory lock", "path", lockPath, "pid", os.Getpid())
	return &Lock{file: file, path: lockPath, acquired: true}, nil
}

// Release drops the lock and removes the lock file. Safe to call twice.
func (l *Lock) Release() error {
	if !l.acquired || l.file == nil {
		return nil
	}
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		slog.Error("lockfile.Release failed to release flock", "error", err, "path", l.path)
	}
	if err := l.file.Close(); err != nil {
		slog.Error("lockfile.Release failed to close lock file", "error", err, "path", l.path)
	}
	if err := os.Remove(l.path); err != nil {
		slog.Warn("lockfile.Release failed to remove lock file", "error", err, "path", l.path)
	}
	l.acquired = false
	l.file = nil
	slog.Debug("Released state directory lock", "path", l.path)
	return nil
}
