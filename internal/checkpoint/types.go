package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"slices"
	"time"
)

const (
	// SchemaVersion is written into every record.
	SchemaVersion = 1

	// DefaultTask is the placeholder task of a fresh checkpoint.
	DefaultTask = "Working on project"

	// StateInProgress is the initial context state.
	StateInProgress = "in_progress"
)

// Todo statuses.
const (
	TodoPending    = "pending"
	TodoInProgress = "in_progress"
	TodoCompleted  = "completed"
)

// Checkpoint is the rolling, continuously updated session record of a project.
type Checkpoint struct {
	ID         string         `json:"id"`
	Version    int            `json:"version"`
	Created    time.Time      `json:"created"`
	Updated    time.Time      `json:"updated"`
	TTL        string         `json:"ttl"`
	Project    Project        `json:"project"`
	Context    Context        `json:"context"`
	Todos      []Todo         `json:"todos"`
	References map[string]any `json:"references"`
}

// Project identifies the project a record belongs to.
type Project struct {
	Root   string `json:"root"`
	Hash   string `json:"hash"`
	Branch string `json:"branch"`
}

// Context is the working state of a session.
type Context struct {
	Task          string         `json:"task"`
	Summary       string         `json:"summary"`
	State         string         `json:"state"`
	Files         []FileEntry    `json:"files"`
	Decisions     []string       `json:"decisions"`
	Blockers      []string       `json:"blockers"`
	NextSteps     []string       `json:"nextSteps"`
	UserDecisions []UserDecision `json:"userDecisions"`
	Plan          *Plan          `json:"plan,omitempty"`
}

// FileEntry records the latest known role of a touched path.
type FileEntry struct {
	Path string `json:"path" validate:"required"`
	Role string `json:"role" validate:"required"`
}

// Todo is one item of the agent's todo list.
type Todo struct {
	Content    string `json:"content" validate:"required"`
	Status     string `json:"status" validate:"oneof=pending in_progress completed"`
	ActiveForm string `json:"activeForm,omitempty"`
}

// UserDecision is an answered question.
type UserDecision struct {
	Question  string    `json:"question" validate:"required"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Plan is the cached content of the agent's current plan.
type Plan struct {
	Path     string    `json:"path,omitempty"`
	CachedAt time.Time `json:"cachedAt"`
	Content  string    `json:"content" validate:"required"`
}

// Handoff is an immutable snapshot of a checkpoint.
type Handoff struct {
	Checkpoint
	// SourceCheckpoint is the ID of the rolling checkpoint it was taken from.
	SourceCheckpoint string `json:"sourceCheckpoint,omitempty"`

	// file is the path the handoff was loaded from.
	file string
}

// HandoffSummary is the listing view of a handoff.
type HandoffSummary struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Task    string    `json:"task"`
	Summary string    `json:"summary"`
	Branch  string    `json:"branch"`
	Files   int       `json:"files"`
	Todos   int       `json:"todos"`
}

// Summary returns the listing view of h.
func (h *Handoff) Summary() HandoffSummary {
	return HandoffSummary{
		ID:      h.ID,
		Created: h.Created,
		Updated: h.Updated,
		Task:    h.Context.Task,
		Summary: h.Context.Summary,
		Branch:  h.Project.Branch,
		Files:   len(h.Context.Files),
		Todos:   len(h.Todos),
	}
}

// ProjectHash returns the project fingerprint: the first 8 hex digits of the
// SHA-256 of root.
func ProjectHash(root string) string {
	sum := sha256.Sum256([]byte(root))
	return hex.EncodeToString(sum[:])[:8]
}

// Clone returns a deep copy of c. References values are copied shallowly.
func (c *Checkpoint) Clone() *Checkpoint {
	if c == nil {
		return nil
	}
	out := *c
	out.Context.Files = slices.Clone(c.Context.Files)
	out.Context.Decisions = slices.Clone(c.Context.Decisions)
	out.Context.Blockers = slices.Clone(c.Context.Blockers)
	out.Context.NextSteps = slices.Clone(c.Context.NextSteps)
	out.Context.UserDecisions = slices.Clone(c.Context.UserDecisions)
	if c.Context.Plan != nil {
		p := *c.Context.Plan
		out.Context.Plan = &p
	}
	out.Todos = slices.Clone(c.Todos)
	out.References = maps.Clone(c.References)
	return &out
}

// Clone returns a deep copy of h.
func (h *Handoff) Clone() *Handoff {
	if h == nil {
		return nil
	}
	return &Handoff{Checkpoint: *h.Checkpoint.Clone(), SourceCheckpoint: h.SourceCheckpoint, file: h.file}
}

// normalize replaces nil collections so records always serialize as arrays.
func (c *Checkpoint) normalize() {
	if c.Context.Files == nil {
		c.Context.Files = []FileEntry{}
	}
	if c.Context.Decisions == nil {
		c.Context.Decisions = []string{}
	}
	if c.Context.Blockers == nil {
		c.Context.Blockers = []string{}
	}
	if c.Context.NextSteps == nil {
		c.Context.NextSteps = []string{}
	}
	if c.Context.UserDecisions == nil {
		c.Context.UserDecisions = []UserDecision{}
	}
	if c.Todos == nil {
		c.Todos = []Todo{}
	}
	if c.References == nil {
		c.References = map[string]any{}
	}
}
