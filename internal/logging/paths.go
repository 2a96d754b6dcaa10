package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Aman-CERP/sessionctx/internal/config"
)

// LogFileName is the name of the active log file.
const LogFileName = "sessionctx.log"

// DefaultLogPath returns ~/.session-context/logs/sessionctx.log.
func DefaultLogPath() string {
	return filepath.Join(config.LogDir(), LogFileName)
}

// FindLogFile returns explicit if set, otherwise the default log path.
// It fails when the file does not exist.
func FindLogFile(explicit string) (string, error) {
	path := explicit
	if path == "" {
		path = DefaultLogPath()
	}
	if _, err := os.Stat(path); err != nil {
		if explicit != "" {
			return "", fmt.Errorf("log file not found: %s", explicit)
		}
		return "", fmt.Errorf("no log file found; run a command with --debug first.\nExpected at: %s", path)
	}
	return path, nil
}
