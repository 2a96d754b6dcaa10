package recovery

import (
	"os"
	"path/filepath"
)

func writeGarbage(dir, name string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte("{oops"), 0o644)
}
