package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter appends to a log file and rotates it by size. Hooks run as
// short-lived processes that share one file, so the size is taken from disk
// before each rotation rather than trusted from this process alone.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu      sync.Mutex
	file    *os.File
	written int64
}

// NewRotatingWriter opens path for appending. Once the file would exceed
// maxSizeMB it is shifted to path.1 and up to maxFiles old files are kept.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		path:     path,
		maxSize:  int64(maxSizeMB) << 20,
		maxFiles: max(maxFiles, 1),
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends p, rotating first when the file is full.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	if w.written+int64(len(p)) > w.maxSize && w.refreshSize()+int64(len(p)) > w.maxSize {
		// keep logging to the old file if the shift fails
		_ = w.rotate()
		if w.file == nil {
			return 0, fmt.Errorf("log file unavailable after rotation")
		}
	}

	n, err := w.file.Write(p)
	w.written += int64(n)
	return n, err
}

// Close closes the current file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	w.file = f
	w.refreshSize()
	return nil
}

// refreshSize re-reads the size of the file at path. Another process may
// already have rotated it, in which case the current handle is reopened.
func (w *RotatingWriter) refreshSize() int64 {
	onDisk, err := os.Stat(w.path)
	if err != nil {
		return w.written
	}
	if held, err := w.file.Stat(); err == nil && !os.SameFile(onDisk, held) {
		_ = w.file.Close()
		if f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			w.file = f
		}
	}
	w.written = onDisk.Size()
	return w.written
}

// rotate shifts path.N-1 to path.N down to path to path.1, dropping
// whatever falls past maxFiles.
func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	w.file = nil

	_ = os.Remove(w.rotated(w.maxFiles))
	for i := w.maxFiles - 1; i >= 1; i-- {
		_ = os.Rename(w.rotated(i), w.rotated(i+1))
	}
	renameErr := os.Rename(w.path, w.rotated(1))

	if err := w.open(); err != nil {
		return err
	}
	if renameErr != nil && !os.IsNotExist(renameErr) {
		return fmt.Errorf("failed to rotate log file: %w", renameErr)
	}
	return nil
}

func (w *RotatingWriter) rotated(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}
