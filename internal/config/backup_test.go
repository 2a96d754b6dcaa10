package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup_NoConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	backup, err := Backup(path)

	require.NoError(t, err)
	assert.Empty(t, backup)
}

func TestBackup_CopiesContent(t *testing.T) {
	path := writeConfig(t, `{"version": 1}`)

	backup, err := Backup(path)
	require.NoError(t, err)

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, `{"version": 1}`, string(data))
}

func TestBackup_KeepsNewest(t *testing.T) {
	path := writeConfig(t, `{}`)

	for i := 0; i < MaxBackups+2; i++ {
		_, err := Backup(path)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	backups, err := ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, backups, MaxBackups)
}

func TestWriteFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", FileName)

	require.NoError(t, WriteFile(path, []byte(`{}`)))

	assert.True(t, Exists(path))
}
