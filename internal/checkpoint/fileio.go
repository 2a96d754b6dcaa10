package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio"

	scerrors "github.com/Aman-CERP/sessionctx/internal/errors"
)

// readJSON decodes the file at path into v.
// Returns false with a nil error when the file does not exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		code := scerrors.ErrCodeInternal
		if errors.Is(err, fs.ErrPermission) {
			code = scerrors.ErrCodeFilePermission
		}
		return false, scerrors.New(code, fmt.Sprintf("failed to read %s", filepath.Base(path)), err).
			WithDetail("path", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, scerrors.CorruptError(path, err)
	}
	return true, nil
}

// writeJSON atomically replaces path with the indented JSON of v.
// Readers observe either the previous content or the new one, never a mix.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return scerrors.New(scerrors.ErrCodeInternal, "failed to marshal record", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return scerrors.WriteError(path, err)
	}
	if err := renameio.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return scerrors.WriteError(path, err)
	}
	return nil
}

// removeFile deletes path, treating a missing file as success.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return scerrors.WriteError(path, err)
	}
	return nil
}
