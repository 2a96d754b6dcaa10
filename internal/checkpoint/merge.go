package checkpoint

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Aman-CERP/sessionctx/internal/config"
	"github.com/Aman-CERP/sessionctx/internal/privacy"
)

// Update is a partial change to a rolling checkpoint. Nil fields are left
// untouched. Slices other than Files replace the stored collection wholesale
// when non-nil; an empty non-nil slice clears it.
type Update struct {
	Task    *string `json:"task,omitempty"`
	Summary *string `json:"summary,omitempty"`
	State   *string `json:"state,omitempty"`

	// Files are merged by path: an existing entry gets the new role, a new
	// path is appended.
	Files []FileEntry `json:"files,omitempty"`

	Todos     []Todo   `json:"todos,omitempty"`
	Decisions []string `json:"decisions,omitempty"`
	Blockers  []string `json:"blockers,omitempty"`
	NextSteps []string `json:"nextSteps,omitempty"`

	// UserDecision is appended with the current time as its timestamp.
	UserDecision *UserDecision `json:"userDecision,omitempty"`

	// Plan replaces the cached plan. While the task is still the default
	// placeholder, the plan's first heading becomes the task.
	Plan *Plan `json:"plan,omitempty"`
}

// IsEmpty reports whether u changes nothing.
func (u Update) IsEmpty() bool {
	return u.Task == nil && u.Summary == nil && u.State == nil &&
		u.Files == nil && u.Todos == nil && u.Decisions == nil &&
		u.Blockers == nil && u.NextSteps == nil &&
		u.UserDecision == nil && u.Plan == nil
}

// gate drops the parts of u whose tracking toggle is off.
func gate(u Update, t config.TrackingConfig) Update {
	if !t.TrackEdits {
		u.Files = nil
	}
	if !t.TrackTodos {
		u.Todos = nil
	}
	if !t.TrackPlans {
		u.Plan = nil
	}
	if !t.TrackUserDecisions {
		u.UserDecision = nil
	}
	return u
}

// filterFiles rewrites paths inside root to their root-relative form, so an
// absolute and a relative spelling of one file share an entry, and removes
// entries matching an exclusion pattern.
func filterFiles(root string, files []FileEntry, patterns []string, logger *slog.Logger) []FileEntry {
	if files == nil {
		return nil
	}
	kept := make([]FileEntry, 0, len(files))
	for _, f := range files {
		f.Path = relativeTo(root, f.Path)
		if privacy.ShouldExclude(f.Path, patterns) {
			logger.Debug("excluded path from checkpoint", slog.String("path", f.Path))
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func relativeTo(root, p string) string {
	if root == "" || !filepath.IsAbs(p) {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// apply merges u into cp and stamps it with now.
func apply(cp *Checkpoint, u Update, now time.Time) {
	c := &cp.Context

	if u.Task != nil {
		c.Task = *u.Task
	}
	if u.Summary != nil {
		c.Summary = *u.Summary
	}
	if u.State != nil {
		c.State = *u.State
	}

	for _, f := range u.Files {
		if i := slices.IndexFunc(c.Files, func(e FileEntry) bool { return e.Path == f.Path }); i >= 0 {
			c.Files[i].Role = f.Role
		} else {
			c.Files = append(c.Files, f)
		}
	}

	if u.Todos != nil {
		cp.Todos = slices.Clone(u.Todos)
	}
	if u.Decisions != nil {
		c.Decisions = slices.Clone(u.Decisions)
	}
	if u.Blockers != nil {
		c.Blockers = slices.Clone(u.Blockers)
	}
	if u.NextSteps != nil {
		c.NextSteps = slices.Clone(u.NextSteps)
	}

	if u.UserDecision != nil {
		d := *u.UserDecision
		d.Timestamp = now
		c.UserDecisions = append(c.UserDecisions, d)
	}

	if u.Plan != nil {
		p := *u.Plan
		if p.CachedAt.IsZero() {
			p.CachedAt = now
		}
		c.Plan = &p
		if c.Task == DefaultTask || c.Task == "" {
			if title := PlanTitle(p.Content); title != "" {
				c.Task = title
			}
		}
	}

	cp.Updated = now
}

// PlanTitle returns the text of the first markdown heading in content.
func PlanTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		title := strings.TrimSpace(strings.TrimLeft(line, "#"))
		if title != "" {
			return title
		}
	}
	return ""
}
