// Package applock keeps two exporter processes from writing the same output
// directory at once.
package applock

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"obdexporter/internal/faults"
	"obdexporter/internal/fileutil"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = fmt.Errorf("%w: another exporter is running", faults.ErrState)

// Lock is an advisory file lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// New returns an unheld lock backed by path.
func New(path string) *Lock {
	return &Lock{path: path, lock: flock.New(path)}
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// TryAcquire takes the lock without blocking.
func (l *Lock) TryAcquire() error {
	if err := fileutil.EnsureDir(filepath.Dir(l.path)); err != nil {
		return fmt.Errorf("lock directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// Held reports whether another process currently holds the lock at path.
func Held(path string) (bool, error) {
	probe := New(path)
	err := probe.TryAcquire()
	if errors.Is(err, ErrLocked) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, probe.Release()
}
