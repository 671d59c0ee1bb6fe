package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileLock is a scoped exclusive advisory lock on path, created if absent.
// Unlock releases it; callers must defer Unlock immediately after a
// successful Lock so the region releases on every exit path.
type FileLock struct {
	flock *flock.Flock
}

// NewFileLock returns a FileLock for path without acquiring it.
func NewFileLock(path string) *FileLock {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &FileLock{flock: flock.New(path)}
}

// Lock blocks until the exclusive lock is acquired.
func (l *FileLock) Lock() error {
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("acquiring lock %s: %w", l.flock.Path(), err)
	}
	return nil
}

// Unlock releases the lock. Safe to call even if Lock failed.
func (l *FileLock) Unlock() error {
	return l.flock.Unlock()
}

// WithLock acquires path's lock, runs fn, and releases the lock before
// returning fn's error (if any) or the unlock error, whichever occurred.
// This is the scoped-region idiom every multi-file aggregate mutator uses.
func WithLock(path string, fn func() error) (err error) {
	l := NewFileLock(path)
	if err := l.Lock(); err != nil {
		return err
	}
	defer func() {
		if unlockErr := l.Unlock(); err == nil {
			err = unlockErr
		}
	}()
	return fn()
}
