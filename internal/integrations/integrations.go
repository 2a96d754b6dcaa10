// Package integrations gathers read-only status from collaborators
// (version control, an issue tracker, a coding harness, a mail-like service)
// for the session-start recovery prompt.
//
// Providers are tolerant: an unavailable collaborator yields an error that
// the caller records as "unavailable"; it never aborts the session flow.
package integrations

import (
	"context"
	"time"

	"github.com/Aman-CERP/sessionctx/internal/config"
)

// Provider names.
const (
	NameGit     = "git"
	NameIssues  = "issues"
	NameHarness = "harness"
	NameMail    = "mail"
)

// Info is the structured output of one provider.
type Info struct {
	Name string `json:"name"`
	// Data is the decoded payload: *vcs.Status for git, decoded JSON (or
	// plain text) for command providers.
	Data any `json:"data"`
	// Lines is a short human-readable rendering of Data.
	Lines []string `json:"lines"`
}

// Provider produces status for a project root.
type Provider interface {
	Name() string
	// Timeout bounds a single Info call.
	Timeout() time.Duration
	Info(ctx context.Context, root string) (*Info, error)
}

// FromConfig builds the enabled providers. Command providers without a
// command are skipped.
func FromConfig(cfg config.IntegrationsConfig) []Provider {
	var providers []Provider
	if cfg.Git.Enabled {
		providers = append(providers, NewGitProvider(cfg.Git.TimeoutDuration()))
	}
	for _, c := range []struct {
		name string
		cfg  config.IntegrationConfig
	}{
		{NameIssues, cfg.Issues},
		{NameHarness, cfg.Harness},
		{NameMail, cfg.Mail},
	} {
		if c.cfg.Enabled && len(c.cfg.Command) > 0 {
			providers = append(providers, NewCommandProvider(c.name, c.cfg.Command, c.cfg.TimeoutDuration()))
		}
	}
	return providers
}
