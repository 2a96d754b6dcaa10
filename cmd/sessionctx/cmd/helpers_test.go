package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv isolates HOME, config and storage in temp dirs and returns a
// project root to run commands against.
func testEnv(t *testing.T) (root, storage string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("SESSION_CONTEXT_CONFIG", "")
	storage = filepath.Join(home, "store")
	t.Setenv("SESSION_CONTEXT_DIR", storage)
	t.Setenv("NO_COLOR", "1")
	return t.TempDir(), storage
}

// run executes the root command with args and stdin, returning stdout and
// stderr separately.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
