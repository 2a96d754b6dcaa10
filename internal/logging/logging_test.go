package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()

	assert.Equal(t, LogFileName, filepath.Base(path))
	assert.Contains(t, path, ".session-context")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	// Given: a logger writing to a temp file at warn level
	logPath := filepath.Join(t.TempDir(), "nested", "test.log")
	logger, cleanup, err := Setup(Config{Level: "warn", FilePath: logPath, MaxSizeMB: 1, MaxFiles: 2})
	require.NoError(t, err)

	// When
	logger.Info("dropped")
	logger.Warn("kept", slog.String("project", "abcd1234"))
	cleanup()

	// Then
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.Contains(t, string(data), `"project":"abcd1234"`)
}

func TestInit_WithoutDebugDiscards(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cleanup := Init(false, "")
	defer cleanup()

	assert.False(t, slog.Default().Enabled(t.Context(), slog.LevelError))
}

func TestRotatingWriter_Rotation(t *testing.T) {
	// Given: a writer with a tiny size limit
	logPath := filepath.Join(t.TempDir(), "rot.log")
	w, err := NewRotatingWriter(logPath, 1, 2)
	require.NoError(t, err)
	w.maxSize = 100
	defer func() { _ = w.Close() }()

	// When: enough is written to rotate several times
	line := strings.Repeat("x", 60) + "\n"
	for i := 0; i < 6; i++ {
		_, err := w.Write([]byte(line))
		require.NoError(t, err)
	}

	// Then: rotated files exist but never more than maxFiles
	assert.FileExists(t, logPath+".1")
	assert.FileExists(t, logPath+".2")
	assert.NoFileExists(t, logPath+".3")
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "concurrent.log")
	w, err := NewRotatingWriter(logPath, 10, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = fmt.Fprintf(w, "writer %d line %d\n", i, j)
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, w.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, 200, strings.Count(string(data), "\n"))
}

func TestFindLogFile(t *testing.T) {
	_, err := FindLogFile(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "present.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	found, err := FindLogFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestParseLine(t *testing.T) {
	e := ParseLine(`{"time":"2026-03-01T12:00:00Z","level":"WARN","msg":"stale","project":"abcd1234"}`)
	assert.True(t, e.Valid)
	assert.Equal(t, "WARN", e.Level)
	assert.Equal(t, "stale", e.Msg)
	assert.Equal(t, "abcd1234", e.Attrs["project"])

	bad := ParseLine("not json")
	assert.False(t, bad.Valid)
	assert.Equal(t, "not json", Format(bad))
}

func TestTail_LevelFilterAndLimit(t *testing.T) {
	// Given: a log with mixed levels
	path := filepath.Join(t.TempDir(), "tail.log")
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("d1")
	logger.Warn("w1")
	logger.Error("e1")
	logger.Warn("w2")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	// When
	entries, err := Tail(path, 2, "warn")

	// Then: only the last two warn-or-above entries
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].Msg)
	assert.Equal(t, "w2", entries[1].Msg)

	var out bytes.Buffer
	Print(&out, entries)
	assert.Contains(t, out.String(), "ERROR e1")
}

func TestTail_MissingFile(t *testing.T) {
	_, err := Tail(filepath.Join(t.TempDir(), "nope.log"), 10, "")
	assert.Error(t, err)
}
