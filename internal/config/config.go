// Package config resolves sessionctx configuration.
//
// Resolution is a pure read performed on every call:
//  1. Hardcoded defaults (NewConfig)
//  2. The configuration file, overlaid section by section
//
// The file lives at $XDG_CONFIG_HOME/session-context/config.json (or
// ~/.config/session-context/config.json). SESSION_CONTEXT_CONFIG replaces
// that lookup path entirely. Nothing is cached between calls, so edits to
// the file are seen by the next call.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/sessionctx/internal/privacy"
)

// Default values shared with callers that need to recognise them.
const (
	DefaultRollingTTL        = "24h"
	DefaultExplicitTTL       = "7d"
	DefaultMaxStoredHandoffs = 20
	DefaultIntegrationTO     = "3s"
)

// Config represents the complete sessionctx configuration.
type Config struct {
	Version      int                `json:"version" yaml:"version"`
	Tracking     TrackingConfig     `json:"tracking" yaml:"tracking"`
	Checkpoints  CheckpointsConfig  `json:"checkpoints" yaml:"checkpoints"`
	Recovery     RecoveryConfig     `json:"recovery" yaml:"recovery"`
	Marker       MarkerConfig       `json:"marker" yaml:"marker"`
	Integrations IntegrationsConfig `json:"integrations" yaml:"integrations"`
	Privacy      PrivacyConfig      `json:"privacy" yaml:"privacy"`
}

// TrackingConfig gates which tool events are persisted.
type TrackingConfig struct {
	// Enabled is the master switch. When false, updates succeed but are not written.
	Enabled            bool `json:"enabled" yaml:"enabled"`
	TrackEdits         bool `json:"trackEdits" yaml:"trackEdits"`
	TrackTodos         bool `json:"trackTodos" yaml:"trackTodos"`
	TrackPlans         bool `json:"trackPlans" yaml:"trackPlans"`
	TrackUserDecisions bool `json:"trackUserDecisions" yaml:"trackUserDecisions"`
}

// CheckpointsConfig configures the rolling checkpoint and handoff retention.
type CheckpointsConfig struct {
	RollingEnabled bool `json:"rollingEnabled" yaml:"rollingEnabled"`
	// RollingMaxAge is how old a rolling checkpoint may get before reads ignore it.
	RollingMaxAge string `json:"rollingMaxAge" yaml:"rollingMaxAge"`
	// ExplicitTTL is how long a handoff is retained.
	ExplicitTTL       string `json:"explicitTTL" yaml:"explicitTTL"`
	MaxStoredHandoffs int    `json:"maxStoredHandoffs" yaml:"maxStoredHandoffs"`
}

// RecoveryConfig shapes the session-start recovery prompt.
type RecoveryConfig struct {
	Enabled             bool `json:"enabled" yaml:"enabled"`
	MaxFiles            int  `json:"maxFiles" yaml:"maxFiles"`
	MaxTodos            int  `json:"maxTodos" yaml:"maxTodos"`
	MaxHandoffs         int  `json:"maxHandoffs" yaml:"maxHandoffs"`
	IncludeIntegrations bool `json:"includeIntegrations" yaml:"includeIntegrations"`
}

// MarkerConfig controls the pending-handoff marker written on explicit handoff.
type MarkerConfig struct {
	Enabled       bool `json:"enabled" yaml:"enabled"`
	ConsumeOnRead bool `json:"consumeOnRead" yaml:"consumeOnRead"`
}

// IntegrationConfig configures one status collaborator.
type IntegrationConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Command []string `json:"command,omitempty" yaml:"command,omitempty"`
	Timeout string   `json:"timeout" yaml:"timeout"`
}

// IntegrationsConfig groups the status collaborators used at session start.
type IntegrationsConfig struct {
	Git     IntegrationConfig `json:"git" yaml:"git"`
	Issues  IntegrationConfig `json:"issues" yaml:"issues"`
	Harness IntegrationConfig `json:"harness" yaml:"harness"`
	Mail    IntegrationConfig `json:"mail" yaml:"mail"`
}

// PrivacyConfig lists paths that must never be persisted.
type PrivacyConfig struct {
	ExcludePatterns []string `json:"excludePatterns" yaml:"excludePatterns"`
}

// NewConfig creates a new Config with defaults. Every call returns fresh
// slices, so callers may mutate the result freely.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Tracking: TrackingConfig{
			Enabled:            true,
			TrackEdits:         true,
			TrackTodos:         true,
			TrackPlans:         true,
			TrackUserDecisions: true,
		},
		Checkpoints: CheckpointsConfig{
			RollingEnabled:    true,
			RollingMaxAge:     DefaultRollingTTL,
			ExplicitTTL:       DefaultExplicitTTL,
			MaxStoredHandoffs: DefaultMaxStoredHandoffs,
		},
		Recovery: RecoveryConfig{
			Enabled:             true,
			MaxFiles:            20,
			MaxTodos:            20,
			MaxHandoffs:         3,
			IncludeIntegrations: true,
		},
		Marker: MarkerConfig{
			Enabled:       true,
			ConsumeOnRead: true,
		},
		Integrations: IntegrationsConfig{
			// git runs in-process; the others need a command before they do anything
			Git:     IntegrationConfig{Enabled: true, Timeout: DefaultIntegrationTO},
			Issues:  IntegrationConfig{Enabled: true, Timeout: DefaultIntegrationTO},
			Harness: IntegrationConfig{Enabled: true, Timeout: DefaultIntegrationTO},
			Mail:    IntegrationConfig{Enabled: true, Timeout: DefaultIntegrationTO},
		},
		Privacy: PrivacyConfig{
			ExcludePatterns: slices.Clone(privacy.DefaultExcludePatterns),
		},
	}
}

// Get resolves the configuration from the default (or env-overridden) path.
func Get() *Config {
	return Load("")
}

// Load resolves configuration using path as the file location.
// An empty path means Path(). A missing, unreadable or malformed file
// yields the defaults; configuration never blocks the caller.
func Load(path string) *Config {
	cfg := NewConfig()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("config unreadable, using defaults",
				slog.String("path", path), slog.String("error", err.Error()))
		}
		return cfg
	}

	f, err := parseFile(data)
	if err != nil {
		slog.Debug("config malformed, using defaults",
			slog.String("path", path), slog.String("error", err.Error()))
		return cfg
	}

	cfg.mergeWith(f)
	cfg.normalize()
	return cfg
}

// parseFile decodes JSON (comments and trailing commas allowed).
func parseFile(data []byte) (*fileConfig, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("config is not valid UTF-8")
	}
	var f fileConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &f, nil
}

// normalize replaces unusable values with defaults so downstream code can
// rely on parseable durations and positive limits.
func (c *Config) normalize() {
	d := NewConfig()

	if _, err := ParseDuration(c.Checkpoints.RollingMaxAge); err != nil {
		c.Checkpoints.RollingMaxAge = d.Checkpoints.RollingMaxAge
	}
	if _, err := ParseDuration(c.Checkpoints.ExplicitTTL); err != nil {
		c.Checkpoints.ExplicitTTL = d.Checkpoints.ExplicitTTL
	}
	if c.Checkpoints.MaxStoredHandoffs <= 0 {
		c.Checkpoints.MaxStoredHandoffs = d.Checkpoints.MaxStoredHandoffs
	}
	if c.Recovery.MaxFiles < 0 {
		c.Recovery.MaxFiles = d.Recovery.MaxFiles
	}
	if c.Recovery.MaxTodos < 0 {
		c.Recovery.MaxTodos = d.Recovery.MaxTodos
	}
	if c.Recovery.MaxHandoffs < 0 {
		c.Recovery.MaxHandoffs = d.Recovery.MaxHandoffs
	}
	for _, ic := range []*IntegrationConfig{
		&c.Integrations.Git, &c.Integrations.Issues, &c.Integrations.Harness, &c.Integrations.Mail,
	} {
		if _, err := ParseDuration(ic.Timeout); err != nil {
			ic.Timeout = DefaultIntegrationTO
		}
	}
}

// RollingMaxAgeDuration returns the parsed rolling staleness threshold.
func (c CheckpointsConfig) RollingMaxAgeDuration() time.Duration {
	d, err := ParseDuration(c.RollingMaxAge)
	if err != nil {
		d, _ = ParseDuration(DefaultRollingTTL)
	}
	return d
}

// ExplicitTTLDuration returns the parsed handoff retention.
func (c CheckpointsConfig) ExplicitTTLDuration() time.Duration {
	d, err := ParseDuration(c.ExplicitTTL)
	if err != nil {
		d, _ = ParseDuration(DefaultExplicitTTL)
	}
	return d
}

// TimeoutDuration returns the parsed collaborator timeout.
func (i IntegrationConfig) TimeoutDuration() time.Duration {
	d, err := ParseDuration(i.Timeout)
	if err != nil || d <= 0 {
		d, _ = ParseDuration(DefaultIntegrationTO)
	}
	return d
}

// JSON renders the resolved configuration as indented JSON.
func (c *Config) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return append(data, '\n'), nil
}

// YAML renders the resolved configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
