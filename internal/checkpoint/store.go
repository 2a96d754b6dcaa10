package checkpoint

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Aman-CERP/sessionctx/internal/config"
	"github.com/Aman-CERP/sessionctx/internal/vcs"
)

const (
	rollingSuffix = "-current.json"
	markerSuffix  = ".marker"
	handoffsLock  = ".handoffs"
)

// StoreConfig configures a Store. Zero values select the defaults.
type StoreConfig struct {
	// StoragePath is the directory holding every record.
	// Defaults to config.StorageDir().
	StoragePath string

	// Logger receives debug and warning output. Defaults to slog.Default().
	Logger *slog.Logger

	// Config resolves configuration. Called on every operation so that edits
	// take effect immediately. Defaults to config.Get.
	Config func() *config.Config

	// Branch detects the current branch of a project root. Defaults to
	// vcs.CurrentBranch.
	Branch func(root string) string

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// CacheSize bounds the parsed-handoff cache.
	CacheSize int
}

// Store owns the on-disk checkpoint and handoff files beneath one directory.
type Store struct {
	dir    string
	logger *slog.Logger
	config func() *config.Config
	branch func(root string) string
	now    func() time.Time
	cache  *handoffCache
}

// NewStore creates a store, creating its directory if needed.
func NewStore(cfg StoreConfig) (*Store, error) {
	dir := cfg.StoragePath
	if dir == "" {
		dir = config.StorageDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &Store{
		dir:    dir,
		logger: cfg.Logger,
		config: cfg.Config,
		branch: cfg.Branch,
		now:    cfg.Now,
		cache:  newHandoffCache(cfg.CacheSize),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.config == nil {
		s.config = config.Get
	}
	if s.branch == nil {
		s.branch = vcs.CurrentBranch
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// Persists reports whether Update currently writes to disk.
func (s *Store) Persists() bool {
	cfg := s.config()
	return cfg.Tracking.Enabled && cfg.Checkpoints.RollingEnabled
}

func (s *Store) rollingPath(hash string) string {
	return filepath.Join(s.dir, hash+rollingSuffix)
}

func (s *Store) handoffPath(hash, id string) string {
	return filepath.Join(s.dir, hash+"."+id+".json")
}

func (s *Store) markerPath(hash string) string {
	return filepath.Join(s.dir, hash+markerSuffix)
}

func (s *Store) handoffLockTarget(hash string) string {
	return filepath.Join(s.dir, hash+handoffsLock)
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Store) newCheckpoint(root, branch string) *Checkpoint {
	now := s.timestamp()
	cp := &Checkpoint{
		ID:      newID(),
		Version: SchemaVersion,
		Created: now,
		Updated: now,
		TTL:     s.config().Checkpoints.RollingMaxAge,
		Project: Project{Root: root, Hash: ProjectHash(root), Branch: branch},
		Context: Context{Task: DefaultTask, State: StateInProgress},
	}
	cp.normalize()
	return cp
}

// loadRolling reads the rolling record at path; nil when absent.
func (s *Store) loadRolling(path string) (*Checkpoint, error) {
	var cp Checkpoint
	found, err := readJSON(path, &cp)
	if err != nil || !found {
		return nil, err
	}
	cp.normalize()
	return &cp, nil
}

// GetOrCreate loads the rolling checkpoint for root, creating and persisting
// a fresh one when none exists. An empty branch is detected. A stored branch
// that differs from the current one is updated in place.
func (s *Store) GetOrCreate(root, branch string) (*Checkpoint, error) {
	if branch == "" {
		branch = s.branch(root)
	}
	path := s.rollingPath(ProjectHash(root))

	var out *Checkpoint
	err := withLock(path, func() error {
		cp, err := s.loadRolling(path)
		if err != nil {
			return err
		}
		switch {
		case cp == nil:
			cp = s.newCheckpoint(root, branch)
			s.logger.Debug("created rolling checkpoint",
				slog.String("project", cp.Project.Hash), slog.String("id", cp.ID))
		case cp.Project.Branch != branch:
			cp.Project.Branch = branch
			cp.Updated = s.timestamp()
		default:
			out = cp
			return nil
		}
		if err := writeJSON(path, cp); err != nil {
			return err
		}
		out = cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the rolling checkpoint for root, or nil when there is none.
// A record whose last update is older than checkpoints.rollingMaxAge is
// treated as absent but left on disk. Nil is also returned when rolling
// checkpoints are disabled.
func (s *Store) Get(root string) (*Checkpoint, error) {
	cfg := s.config()
	if !cfg.Checkpoints.RollingEnabled {
		return nil, nil
	}

	cp, err := s.loadRolling(s.rollingPath(ProjectHash(root)))
	if err != nil || cp == nil {
		return nil, err
	}

	if age := s.now().Sub(cp.Updated); age > cfg.Checkpoints.RollingMaxAgeDuration() {
		s.logger.Debug("rolling checkpoint is stale",
			slog.String("project", cp.Project.Hash), slog.Duration("age", age))
		return nil, nil
	}
	return cp, nil
}

// Update merges u into the rolling checkpoint of root and persists it.
// File entries matching a privacy exclusion pattern are dropped before the
// merge. When tracking or rolling checkpoints are disabled the merged record
// is returned without being written.
func (s *Store) Update(root, branch string, u Update) (*Checkpoint, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if branch == "" {
		branch = s.branch(root)
	}

	cfg := s.config()
	u = gate(u, cfg.Tracking)
	u.Files = filterFiles(root, u.Files, cfg.Privacy.ExcludePatterns, s.logger)

	path := s.rollingPath(ProjectHash(root))
	merge := func() (*Checkpoint, error) {
		cp, err := s.loadRolling(path)
		if err != nil {
			return nil, err
		}
		if cp == nil {
			cp = s.newCheckpoint(root, branch)
		}
		cp.Project.Branch = branch
		apply(cp, u, s.timestamp())
		return cp, nil
	}

	if !cfg.Tracking.Enabled || !cfg.Checkpoints.RollingEnabled {
		return merge()
	}

	var out *Checkpoint
	err := withLock(path, func() error {
		cp, err := merge()
		if err != nil {
			return err
		}
		if err := writeJSON(path, cp); err != nil {
			return err
		}
		out = cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
