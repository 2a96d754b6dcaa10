package hooks

import (
	"log/slog"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
)

// Tracker applies tool events to a project's rolling checkpoint.
type Tracker struct {
	store  *checkpoint.Store
	logger *slog.Logger
}

// NewTracker creates a tracker writing to store.
func NewTracker(store *checkpoint.Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, logger: logger}
}

// Track records one tool event for root. It returns the number of updates
// applied. Tracking toggles are enforced by the store.
func (t *Tracker) Track(root, tool string, input, extra []byte) (int, error) {
	updates, err := Translate(tool, input, extra)
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		t.logger.Debug("tool event ignored", slog.String("tool", tool))
		return 0, nil
	}

	for i, u := range updates {
		if _, err := t.store.Update(root, "", u); err != nil {
			return i, err
		}
	}
	t.logger.Debug("tool event tracked",
		slog.String("tool", tool), slog.Int("updates", len(updates)),
		slog.String("project", checkpoint.ProjectHash(root)))
	return len(updates), nil
}
