package checkpoint

import (
	"log/slog"
	"slices"
	"time"

	"github.com/Aman-CERP/sessionctx/internal/config"
)

// Prune removes the handoffs of root whose TTL has passed, then evicts the
// oldest beyond checkpoints.maxStoredHandoffs. Returns the number removed.
func (s *Store) Prune(root string) (int, error) {
	hash := ProjectHash(root)
	var removed int
	err := withLock(s.handoffLockTarget(hash), func() error {
		var err error
		removed, err = s.pruneLocked(hash)
		return err
	})
	return removed, err
}

// PruneAll applies TTL expiry and the per-project cap to every project in
// the storage root.
func (s *Store) PruneAll() (int, error) {
	all, err := s.handoffs("")
	if err != nil {
		return 0, err
	}

	var hashes []string
	for _, h := range all {
		if h.Project.Hash != "" && !slices.Contains(hashes, h.Project.Hash) {
			hashes = append(hashes, h.Project.Hash)
		}
	}

	total := 0
	for _, hash := range hashes {
		var n int
		err := withLock(s.handoffLockTarget(hash), func() error {
			var err error
			n, err = s.pruneLocked(hash)
			return err
		})
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// pruneLocked must be called with the project's handoff lock held.
func (s *Store) pruneLocked(hash string) (int, error) {
	cfg := s.config()
	all, err := s.handoffs(hash)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var expired, kept []*Handoff
	for _, h := range all {
		if now.Sub(h.Created) > handoffTTL(h, cfg) {
			expired = append(expired, h)
		} else {
			kept = append(kept, h)
		}
	}

	// evict the oldest by creation time
	if limit := cfg.Checkpoints.MaxStoredHandoffs; limit > 0 && len(kept) > limit {
		slices.SortStableFunc(kept, func(a, b *Handoff) int { return b.Created.Compare(a.Created) })
		expired = append(expired, kept[limit:]...)
	}

	marker, _ := s.readMarkerHash(hash)
	removed := 0
	for _, h := range expired {
		path := h.file
		if err := removeFile(path); err != nil {
			return removed, err
		}
		s.cache.remove(path)
		removed++
		if marker != nil && marker.HandoffID == h.ID {
			_ = removeFile(s.markerPath(hash))
		}
		s.logger.Debug("pruned handoff", slog.String("project", hash), slog.String("id", h.ID))
	}
	return removed, nil
}

func (s *Store) readMarkerHash(hash string) (*Marker, error) {
	var m Marker
	found, err := readJSON(s.markerPath(hash), &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

// handoffTTL is the record's own TTL, falling back to the configured one.
func handoffTTL(h *Handoff, cfg *config.Config) time.Duration {
	if d, err := config.ParseDuration(h.TTL); err == nil {
		return d
	}
	return cfg.Checkpoints.ExplicitTTLDuration()
}
