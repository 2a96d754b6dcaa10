package config

import "slices"

// fileConfig is the on-disk shape. Pointer fields distinguish "absent" from
// a zero value, so a file that only sets tracking.trackEdits=false leaves the
// other tracking flags at their defaults.
type fileConfig struct {
	Version      *int              `json:"version"`
	Tracking     *fileTracking     `json:"tracking"`
	Checkpoints  *fileCheckpoints  `json:"checkpoints"`
	Recovery     *fileRecovery     `json:"recovery"`
	Marker       *fileMarker       `json:"marker"`
	Integrations *fileIntegrations `json:"integrations"`
	Privacy      *filePrivacy      `json:"privacy"`
}

type fileTracking struct {
	Enabled            *bool `json:"enabled"`
	TrackEdits         *bool `json:"trackEdits"`
	TrackTodos         *bool `json:"trackTodos"`
	TrackPlans         *bool `json:"trackPlans"`
	TrackUserDecisions *bool `json:"trackUserDecisions"`
}

type fileCheckpoints struct {
	RollingEnabled    *bool   `json:"rollingEnabled"`
	RollingMaxAge     *string `json:"rollingMaxAge"`
	ExplicitTTL       *string `json:"explicitTTL"`
	MaxStoredHandoffs *int    `json:"maxStoredHandoffs"`
}

type fileRecovery struct {
	Enabled             *bool `json:"enabled"`
	MaxFiles            *int  `json:"maxFiles"`
	MaxTodos            *int  `json:"maxTodos"`
	MaxHandoffs         *int  `json:"maxHandoffs"`
	IncludeIntegrations *bool `json:"includeIntegrations"`
}

type fileMarker struct {
	Enabled       *bool `json:"enabled"`
	ConsumeOnRead *bool `json:"consumeOnRead"`
}

type fileIntegration struct {
	Enabled *bool    `json:"enabled"`
	Command []string `json:"command"`
	Timeout *string  `json:"timeout"`
}

type fileIntegrations struct {
	Git     *fileIntegration `json:"git"`
	Issues  *fileIntegration `json:"issues"`
	Harness *fileIntegration `json:"harness"`
	Mail    *fileIntegration `json:"mail"`
}

type filePrivacy struct {
	ExcludePatterns []string `json:"excludePatterns"`
}

// set copies *src into *dst when the file supplied a value.
func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// mergeWith overlays the file sections onto c, field by field.
func (c *Config) mergeWith(f *fileConfig) {
	set(&c.Version, f.Version)
	c.Tracking.merge(f.Tracking)
	c.Checkpoints.merge(f.Checkpoints)
	c.Recovery.merge(f.Recovery)
	c.Marker.merge(f.Marker)
	c.Integrations.merge(f.Integrations)
	c.Privacy.merge(f.Privacy)
}

func (t *TrackingConfig) merge(f *fileTracking) {
	if f == nil {
		return
	}
	set(&t.Enabled, f.Enabled)
	set(&t.TrackEdits, f.TrackEdits)
	set(&t.TrackTodos, f.TrackTodos)
	set(&t.TrackPlans, f.TrackPlans)
	set(&t.TrackUserDecisions, f.TrackUserDecisions)
}

func (c *CheckpointsConfig) merge(f *fileCheckpoints) {
	if f == nil {
		return
	}
	set(&c.RollingEnabled, f.RollingEnabled)
	set(&c.RollingMaxAge, f.RollingMaxAge)
	set(&c.ExplicitTTL, f.ExplicitTTL)
	set(&c.MaxStoredHandoffs, f.MaxStoredHandoffs)
}

func (r *RecoveryConfig) merge(f *fileRecovery) {
	if f == nil {
		return
	}
	set(&r.Enabled, f.Enabled)
	set(&r.MaxFiles, f.MaxFiles)
	set(&r.MaxTodos, f.MaxTodos)
	set(&r.MaxHandoffs, f.MaxHandoffs)
	set(&r.IncludeIntegrations, f.IncludeIntegrations)
}

func (m *MarkerConfig) merge(f *fileMarker) {
	if f == nil {
		return
	}
	set(&m.Enabled, f.Enabled)
	set(&m.ConsumeOnRead, f.ConsumeOnRead)
}

func (i *IntegrationConfig) merge(f *fileIntegration) {
	if f == nil {
		return
	}
	set(&i.Enabled, f.Enabled)
	set(&i.Timeout, f.Timeout)
	if f.Command != nil {
		i.Command = slices.Clone(f.Command)
	}
}

func (i *IntegrationsConfig) merge(f *fileIntegrations) {
	if f == nil {
		return
	}
	i.Git.merge(f.Git)
	i.Issues.merge(f.Issues)
	i.Harness.merge(f.Harness)
	i.Mail.merge(f.Mail)
}

// merge replaces the pattern list when the file supplies one, so patterns can
// be relaxed as well as tightened. An explicit empty list disables exclusion.
func (p *PrivacyConfig) merge(f *filePrivacy) {
	if f == nil || f.ExcludePatterns == nil {
		return
	}
	p.ExcludePatterns = slices.Clone(f.ExcludePatterns)
}
