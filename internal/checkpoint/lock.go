package checkpoint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	scerrors "github.com/Aman-CERP/sessionctx/internal/errors"
)

const (
	// lockSuffix is appended to a guarded file's path to form its lock file.
	lockSuffix = ".lock"

	lockRetryDelay = 10 * time.Millisecond
)

// lockTimeout bounds how long a writer waits for another process.
var lockTimeout = 10 * time.Second

// FileLock is an advisory cross-process lock guarding one file.
// flock(2) locks belong to the open file description, so two FileLocks on
// the same path exclude each other even within a single process.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a lock for target. The lock file is target + ".lock".
func NewFileLock(target string) *FileLock {
	lockPath := target + lockSuffix
	return &FileLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock acquires the lock, waiting at most lockTimeout.
func (l *FileLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return scerrors.New(scerrors.ErrCodeLockFailed, "failed to create lock directory", err).
			WithDetail("path", l.path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	ok, err := l.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !ok {
		if err == nil {
			err = fmt.Errorf("timed out after %s", lockTimeout)
		}
		return scerrors.New(scerrors.ErrCodeLockFailed, "failed to acquire lock", err).
			WithDetail("path", l.path).
			WithSuggestion("Another sessionctx process may be stuck; remove the .lock file if none is running")
	}

	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call on an unlocked FileLock.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// withLock runs fn while holding the lock for target.
func withLock(target string, fn func() error) error {
	lock := NewFileLock(target)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}
