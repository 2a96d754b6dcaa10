package recovery

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
	"github.com/Aman-CERP/sessionctx/internal/config"
	"github.com/Aman-CERP/sessionctx/internal/integrations"
)

// Assembler builds recovery prompts from a checkpoint store.
type Assembler struct {
	store     *checkpoint.Store
	logger    *slog.Logger
	config    func() *config.Config
	providers func(config.IntegrationsConfig) []integrations.Provider
	now       func() time.Time
}

// AssemblerOption customises an Assembler.
type AssemblerOption func(*Assembler)

// WithConfig replaces the configuration source.
func WithConfig(fn func() *config.Config) AssemblerOption {
	return func(a *Assembler) { a.config = fn }
}

// WithProviders replaces how providers are built from configuration.
func WithProviders(fn func(config.IntegrationsConfig) []integrations.Provider) AssemblerOption {
	return func(a *Assembler) { a.providers = fn }
}

// WithClock replaces the clock used for relative times.
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) { a.now = now }
}

// NewAssembler creates an assembler over store.
func NewAssembler(store *checkpoint.Store, logger *slog.Logger, opts ...AssemblerOption) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Assembler{
		store:     store,
		logger:    logger,
		config:    config.Get,
		providers: integrations.FromConfig,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build returns the recovery prompt for root, or "" when recovery is
// disabled or there is nothing to recover. When consume is set and
// marker.consumeOnRead is on, the pending-handoff marker is removed once
// rendered. Store errors degrade to missing sections.
func (a *Assembler) Build(ctx context.Context, root string, consume bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cfg := a.config()
	if !cfg.Recovery.Enabled {
		return "", nil
	}

	in := PromptInput{Limits: cfg.Recovery, Now: a.now()}

	cp, err := a.store.Get(root)
	if err != nil {
		a.logger.Warn("rolling checkpoint unavailable", slog.String("error", err.Error()))
	}
	in.Checkpoint = cp

	marker, err := a.store.ReadMarker(root)
	if err != nil {
		a.logger.Warn("handoff marker unreadable", slog.String("error", err.Error()))
	}
	if marker != nil {
		h, err := a.store.ReadHandoff(checkpoint.ReadOptions{
			ID: marker.HandoffID, ProjectHash: checkpoint.ProjectHash(root),
		})
		if err != nil {
			a.logger.Warn("marked handoff unreadable",
				slog.String("id", marker.HandoffID), slog.String("error", err.Error()))
		}
		in.Marked = h
	}

	if cfg.Recovery.MaxHandoffs > 0 {
		list, err := a.store.ListHandoffs(root)
		if err != nil {
			a.logger.Warn("handoff listing failed", slog.String("error", err.Error()))
		}
		for _, h := range list {
			if in.Marked != nil && h.ID == in.Marked.ID {
				continue
			}
			if len(in.Handoffs) == cfg.Recovery.MaxHandoffs {
				break
			}
			in.Handoffs = append(in.Handoffs, h)
		}
	}

	if in.IsEmpty() {
		return "", nil
	}

	if cfg.Recovery.IncludeIntegrations {
		in.Results = Gather(ctx, root, a.providers(cfg.Integrations), a.logger)
	}

	prompt := BuildPrompt(in)

	if consume && marker != nil && cfg.Marker.ConsumeOnRead {
		if err := a.store.ClearMarker(root); err != nil {
			a.logger.Warn("failed to clear handoff marker", slog.String("error", err.Error()))
		}
	}
	return prompt, nil
}

// SessionStartOutput is the JSON a SessionStart hook prints to inject context.
type SessionStartOutput struct {
	HookSpecificOutput HookSpecificOutput `json:"hookSpecificOutput"`
}

// HookSpecificOutput carries the injected context.
type HookSpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}

// SessionStartPayload wraps prompt for the SessionStart hook.
func SessionStartPayload(prompt string) ([]byte, error) {
	return json.Marshal(SessionStartOutput{
		HookSpecificOutput: HookSpecificOutput{
			HookEventName:     "SessionStart",
			AdditionalContext: prompt,
		},
	})
}
