// Package runlock serializes foldersort invocations that share a state
// directory. Organize and undo both hold the lock for their whole run so the
// ledger never sees two batches at once.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"foldersort/internal/services"
)

// Lock is an acquired state lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock at path without blocking. A lock held by another
// process yields services.ErrLocked.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "runlock", "prepare", path, err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "runlock", "acquire", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "runlock", "acquire",
			fmt.Sprintf("another foldersort run holds %s", path), nil)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
