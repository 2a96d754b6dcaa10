package checkpoint

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	scerrors "github.com/Aman-CERP/sessionctx/internal/errors"
)

var (
	// namespacedName matches {hash}.{id}.json.
	namespacedName = regexp.MustCompile(`^([a-f0-9]{8})\.([A-Za-z0-9_-]+)\.json$`)

	// legacyName matches {id}.json written before files were namespaced.
	legacyName = regexp.MustCompile(`^([A-Za-z0-9_-]+)\.json$`)
)

// HandoffFields are the caller-supplied parts of an explicit handoff.
// Empty values keep what the rolling checkpoint holds.
type HandoffFields struct {
	Task      string   `json:"task,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	NextSteps []string `json:"nextSteps,omitempty"`
	Decisions []string `json:"decisions,omitempty"`
}

// ReadOptions selects a handoff.
type ReadOptions struct {
	// ID of the handoff. Ignored when Latest is set.
	ID string
	// Latest selects the most recently updated handoff.
	Latest bool
	// ProjectHash scopes the search to one project.
	ProjectHash string
}

// handoffFile is a handoff file found in the storage root.
type handoffFile struct {
	path string
	id   string
	// hash is empty for legacy files until their content is read.
	hash string
}

// CreateHandoff snapshots the rolling checkpoint of root, overlays f and
// persists the result as a new immutable handoff. Expired and surplus
// handoffs of the project are pruned afterwards.
func (s *Store) CreateHandoff(root string, f HandoffFields) (*Handoff, error) {
	cfg := s.config()
	hash := ProjectHash(root)

	src, err := s.loadRolling(s.rollingPath(hash))
	if err != nil {
		return nil, err
	}
	if src == nil {
		src = s.newCheckpoint(root, s.branch(root))
		src.ID = ""
	}

	now := s.timestamp()
	h := &Handoff{Checkpoint: *src.Clone(), SourceCheckpoint: src.ID}
	h.Version = SchemaVersion
	h.Created = now
	h.Updated = now
	h.TTL = cfg.Checkpoints.ExplicitTTL
	h.Project.Root = root
	h.Project.Hash = hash

	if f.Task != "" {
		h.Context.Task = f.Task
	}
	if f.Summary != "" {
		h.Context.Summary = f.Summary
	}
	if len(f.NextSteps) > 0 {
		h.Context.NextSteps = slices.Clone(f.NextSteps)
	}
	if len(f.Decisions) > 0 {
		h.Context.Decisions = slices.Clone(f.Decisions)
	}
	h.normalize()

	err = withLock(s.handoffLockTarget(hash), func() error {
		h.ID = s.unusedID(hash)
		h.file = s.handoffPath(hash, h.ID)
		if err := writeJSON(h.file, h); err != nil {
			return err
		}
		if cfg.Marker.Enabled {
			if err := s.writeMarker(hash, h.ID, now); err != nil {
				s.logger.Warn("failed to write handoff marker",
					slog.String("project", hash), slog.String("error", err.Error()))
			}
		}
		_, err := s.pruneLocked(hash)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created handoff", slog.String("project", hash), slog.String("id", h.ID))
	return h, nil
}

func (s *Store) unusedID(hash string) string {
	for {
		id := newID()
		if _, err := os.Stat(s.handoffPath(hash, id)); os.IsNotExist(err) {
			return id
		}
	}
}

// ReadHandoff returns the handoff selected by opts, or nil when none matches.
// A matching file that cannot be parsed is reported as ERR_206_FILE_CORRUPT.
func (s *Store) ReadHandoff(opts ReadOptions) (*Handoff, error) {
	if opts.Latest {
		return s.latestHandoff(opts.ProjectHash)
	}
	if err := validateID(opts.ID); err != nil {
		return nil, err
	}

	var candidates []handoffFile
	if opts.ProjectHash != "" {
		candidates = append(candidates, handoffFile{
			path: s.handoffPath(opts.ProjectHash, opts.ID), id: opts.ID, hash: opts.ProjectHash,
		})
	} else {
		files, err := s.scan()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.id == opts.ID && f.hash != "" {
				candidates = append(candidates, f)
			}
		}
	}
	candidates = append(candidates, handoffFile{path: filepath.Join(s.dir, opts.ID+".json"), id: opts.ID})

	var found []*Handoff
	for _, c := range candidates {
		h, err := s.loadHandoff(c.path)
		if err != nil {
			return nil, err
		}
		if h == nil || h.ID != opts.ID {
			continue
		}
		if opts.ProjectHash != "" && h.Project.Hash != opts.ProjectHash {
			continue
		}
		found = append(found, h)
	}
	if len(found) == 0 {
		return nil, nil
	}
	sortHandoffs(found)
	return found[0], nil
}

func (s *Store) latestHandoff(hash string) (*Handoff, error) {
	all, err := s.handoffs(hash)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

// ListHandoffs returns summaries of every handoff of root, most recent first.
// Files that cannot be parsed are skipped.
func (s *Store) ListHandoffs(root string) ([]HandoffSummary, error) {
	all, err := s.handoffs(ProjectHash(root))
	if err != nil {
		return nil, err
	}
	out := make([]HandoffSummary, 0, len(all))
	for _, h := range all {
		out = append(out, h.Summary())
	}
	return out, nil
}

// RecentHandoffs returns up to limit full handoffs of root, most recent first.
func (s *Store) RecentHandoffs(root string, limit int) ([]*Handoff, error) {
	all, err := s.handoffs(ProjectHash(root))
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// handoffs loads the handoffs of one project (every project when hash is
// empty), skipping unparseable files, sorted by updated descending.
func (s *Store) handoffs(hash string) ([]*Handoff, error) {
	files, err := s.scan()
	if err != nil {
		return nil, err
	}

	var out []*Handoff
	for _, f := range files {
		if hash != "" && f.hash != "" && f.hash != hash {
			continue
		}
		h, err := s.loadHandoff(f.path)
		if err != nil {
			s.logger.Warn("skipping unreadable handoff",
				slog.String("path", f.path), slog.String("error", err.Error()))
			continue
		}
		if h == nil || (hash != "" && h.Project.Hash != hash) {
			continue
		}
		out = append(out, h)
	}
	sortHandoffs(out)
	return out, nil
}

// scan lists handoff files without reading them. Rolling checkpoints, lock
// files and markers are skipped.
func (s *Store) scan() ([]handoffFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, scerrors.New(scerrors.ErrCodeInternal, "failed to list storage directory", err).
			WithDetail("path", s.dir)
	}

	var files []handoffFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, rollingSuffix) {
			continue
		}
		path := filepath.Join(s.dir, name)
		if m := namespacedName.FindStringSubmatch(name); m != nil {
			files = append(files, handoffFile{path: path, hash: m[1], id: m[2]})
			continue
		}
		if m := legacyName.FindStringSubmatch(name); m != nil {
			files = append(files, handoffFile{path: path, id: m[1]})
		}
	}
	return files, nil
}

// loadHandoff reads one handoff through the cache; nil when absent.
func (s *Store) loadHandoff(path string) (*Handoff, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		s.cache.remove(path)
		return nil, nil
	}
	if err != nil {
		return nil, scerrors.New(scerrors.ErrCodeInternal, "failed to stat handoff", err).
			WithDetail("path", path)
	}
	if h, ok := s.cache.get(path, info); ok {
		return h, nil
	}

	var h Handoff
	found, err := readJSON(path, &h)
	if err != nil || !found {
		return nil, err
	}
	h.normalize()
	h.file = path
	s.cache.put(path, info, &h)
	return &h, nil
}

func sortHandoffs(hs []*Handoff) {
	slices.SortStableFunc(hs, func(a, b *Handoff) int {
		return b.Updated.Compare(a.Updated)
	})
}

// Marker points at the handoff that the next session should pick up.
type Marker struct {
	HandoffID string    `json:"handoffId"`
	Created   time.Time `json:"created"`
}

func (s *Store) writeMarker(hash, id string, now time.Time) error {
	return writeJSON(s.markerPath(hash), Marker{HandoffID: id, Created: now})
}

// ReadMarker returns the pending-handoff marker of root, or nil.
func (s *Store) ReadMarker(root string) (*Marker, error) {
	return s.readMarkerHash(ProjectHash(root))
}

// ClearMarker removes the pending-handoff marker of root.
func (s *Store) ClearMarker(root string) error {
	return removeFile(s.markerPath(ProjectHash(root)))
}
