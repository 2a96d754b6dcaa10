package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/sessionctx/internal/privacy"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.True(t, cfg.Tracking.Enabled)
	assert.True(t, cfg.Tracking.TrackEdits)
	assert.True(t, cfg.Tracking.TrackTodos)
	assert.True(t, cfg.Tracking.TrackPlans)
	assert.True(t, cfg.Tracking.TrackUserDecisions)
	assert.True(t, cfg.Checkpoints.RollingEnabled)
	assert.Equal(t, "24h", cfg.Checkpoints.RollingMaxAge)
	assert.Equal(t, "7d", cfg.Checkpoints.ExplicitTTL)
	assert.Equal(t, 20, cfg.Checkpoints.MaxStoredHandoffs)
	assert.Equal(t, 3, cfg.Recovery.MaxHandoffs)
	assert.True(t, cfg.Marker.Enabled)
	assert.True(t, cfg.Marker.ConsumeOnRead)
	assert.Equal(t, privacy.DefaultExcludePatterns, cfg.Privacy.ExcludePatterns)
}

func TestNewConfig_ReturnsIsolatedCopies(t *testing.T) {
	// Given: a config whose pattern list is mutated by a caller
	first := NewConfig()
	first.Privacy.ExcludePatterns[0] = "mutated"
	first.Privacy.ExcludePatterns = append(first.Privacy.ExcludePatterns, "extra")

	// When: defaults are requested again
	second := NewConfig()

	// Then: the mutation did not leak
	assert.Equal(t, privacy.DefaultExcludePatterns, second.Privacy.ExcludePatterns)
	assert.NotEqual(t, "mutated", privacy.DefaultExcludePatterns[0])
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_DefaultsRoundTrip(t *testing.T) {
	// Given: the defaults serialized to a file
	data, err := NewConfig().JSON()
	require.NoError(t, err)
	path := writeConfig(t, string(data))

	// When: the file is resolved
	cfg := Load(path)

	// Then: nothing changes
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_PartialSectionMerge(t *testing.T) {
	// Given: a file overriding a single tracking flag
	path := writeConfig(t, `{"tracking": {"trackEdits": false}}`)

	// When: resolved
	cfg := Load(path)

	// Then: only that flag changes
	assert.False(t, cfg.Tracking.TrackEdits)
	assert.True(t, cfg.Tracking.Enabled)
	assert.True(t, cfg.Tracking.TrackTodos)
	assert.True(t, cfg.Tracking.TrackPlans)
	assert.True(t, cfg.Tracking.TrackUserDecisions)
	assert.Equal(t, NewConfig().Checkpoints, cfg.Checkpoints)
}

func TestLoad_OverridesAcrossSections(t *testing.T) {
	path := writeConfig(t, `{
		"checkpoints": {"rollingMaxAge": "2h", "maxStoredHandoffs": 5},
		"recovery": {"maxFiles": 3},
		"marker": {"consumeOnRead": false},
		"integrations": {"issues": {"command": ["bd", "ready", "--json"], "timeout": "1s"}}
	}`)

	cfg := Load(path)

	assert.Equal(t, 2*time.Hour, cfg.Checkpoints.RollingMaxAgeDuration())
	assert.Equal(t, 5, cfg.Checkpoints.MaxStoredHandoffs)
	assert.Equal(t, "7d", cfg.Checkpoints.ExplicitTTL)
	assert.Equal(t, 3, cfg.Recovery.MaxFiles)
	assert.Equal(t, 20, cfg.Recovery.MaxTodos)
	assert.True(t, cfg.Marker.Enabled)
	assert.False(t, cfg.Marker.ConsumeOnRead)
	assert.Equal(t, []string{"bd", "ready", "--json"}, cfg.Integrations.Issues.Command)
	assert.Equal(t, time.Second, cfg.Integrations.Issues.TimeoutDuration())
	assert.True(t, cfg.Integrations.Issues.Enabled)
}

func TestLoad_PrivacyPatternsReplaceDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"replaced", `{"privacy": {"excludePatterns": ["secrets/**"]}}`, []string{"secrets/**"}},
		{"explicit empty disables", `{"privacy": {"excludePatterns": []}}`, []string{}},
		{"absent keeps defaults", `{"privacy": {}}`, privacy.DefaultExcludePatterns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load(writeConfig(t, tt.content))
			assert.Equal(t, tt.want, cfg.Privacy.ExcludePatterns)
		})
	}
}

func TestLoad_MalformedReturnsDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"tracking": {"enabled": fal`},
		{"wrong type", `{"tracking": {"enabled": "no"}}`},
		{"not an object", `[1, 2, 3]`},
		{"invalid utf8", "{\"version\": 1, \"x\": \"\xff\xfe\"}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load(writeConfig(t, tt.content))
			assert.Equal(t, NewConfig(), cfg)
		})
	}
}

func TestLoad_AcceptsCommentsAndTrailingCommas(t *testing.T) {
	path := writeConfig(t, `{
		// rolling checkpoints off for this machine
		"checkpoints": {
			"rollingEnabled": false, /* inline */
		},
	}`)

	cfg := Load(path)

	assert.False(t, cfg.Checkpoints.RollingEnabled)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	path := writeConfig(t, `{
		"checkpoints": {"rollingMaxAge": "soon", "explicitTTL": "-1h", "maxStoredHandoffs": 0},
		"integrations": {"git": {"timeout": "forever"}}
	}`)

	cfg := Load(path)

	assert.Equal(t, DefaultRollingTTL, cfg.Checkpoints.RollingMaxAge)
	assert.Equal(t, DefaultExplicitTTL, cfg.Checkpoints.ExplicitTTL)
	assert.Equal(t, DefaultMaxStoredHandoffs, cfg.Checkpoints.MaxStoredHandoffs)
	assert.Equal(t, DefaultIntegrationTO, cfg.Integrations.Git.Timeout)
}

func TestLoad_RereadsOnEveryCall(t *testing.T) {
	// Given: a config with tracking enabled
	path := writeConfig(t, `{"tracking": {"enabled": true}}`)
	require.True(t, Load(path).Tracking.Enabled)

	// When: the file is edited
	require.NoError(t, os.WriteFile(path, []byte(`{"tracking": {"enabled": false}}`), 0o644))

	// Then: the next call sees the change
	assert.False(t, Load(path).Tracking.Enabled)
}

func TestGet_EnvOverrideReplacesPath(t *testing.T) {
	// Given: an XDG config that disables tracking
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("SESSION_CONTEXT_CONFIG", "")
	xdgPath := filepath.Join(xdg, AppDir, FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(xdgPath), 0o755))
	require.NoError(t, os.WriteFile(xdgPath, []byte(`{"tracking": {"enabled": false}}`), 0o644))
	require.False(t, Get().Tracking.Enabled)

	// When: the env var points at a file that does not exist
	t.Setenv("SESSION_CONTEXT_CONFIG", filepath.Join(t.TempDir(), "nope.json"))

	// Then: the XDG file is not consulted
	assert.Equal(t, NewConfig(), Get())
}

func TestPaths(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("SESSION_CONTEXT_CONFIG", "")
	t.Setenv("SESSION_CONTEXT_DIR", "")

	assert.Equal(t, filepath.Join(xdg, "session-context", "config.json"), Path())
	assert.Equal(t, "handoffs", filepath.Base(StorageDir()))

	custom := t.TempDir()
	t.Setenv("SESSION_CONTEXT_DIR", custom)
	assert.Equal(t, custom, StorageDir())
}

func TestLoadEnv_LogLevelDefault(t *testing.T) {
	t.Setenv("SESSION_CONTEXT_LOG_LEVEL", "")
	assert.Equal(t, "debug", LoadEnv().LogLevel)

	t.Setenv("SESSION_CONTEXT_LOG_LEVEL", "warn")
	assert.Equal(t, "warn", LoadEnv().LogLevel)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"24h", 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"0d", 0, false},
		{"d", 0, true},
		{"xd", 0, true},
		{"-2h", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_YAML(t *testing.T) {
	data, err := NewConfig().YAML()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "checkpoints")
	assert.Contains(t, string(data), "rollingMaxAge: 24h")
}
