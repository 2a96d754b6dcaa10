package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
)

// StatusInfo is the state of one project as shown by `sessionctx status`.
type StatusInfo struct {
	ProjectRoot string `json:"project_root"`
	ProjectHash string `json:"project_hash"`
	Branch      string `json:"branch"`
	StorageDir  string `json:"storage_dir"`
	Tracking    bool   `json:"tracking"`

	Checkpoint *CheckpointStatus          `json:"checkpoint,omitempty"`
	Handoffs   []checkpoint.HandoffSummary `json:"handoffs"`

	// PendingHandoff is the id the next session start will lead with.
	PendingHandoff string `json:"pending_handoff,omitempty"`
}

// CheckpointStatus summarizes the rolling checkpoint.
type CheckpointStatus struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	State     string    `json:"state"`
	Updated   time.Time `json:"updated"`
	Files     int       `json:"files"`
	Todos     int       `json:"todos"`
	TodosDone int       `json:"todos_done"`
	HasPlan   bool      `json:"has_plan"`
}

// NewCheckpointStatus summarizes cp; nil yields nil.
func NewCheckpointStatus(cp *checkpoint.Checkpoint) *CheckpointStatus {
	if cp == nil {
		return nil
	}
	s := &CheckpointStatus{
		ID:      cp.ID,
		Task:    cp.Context.Task,
		State:   cp.Context.State,
		Updated: cp.Updated,
		Files:   len(cp.Context.Files),
		Todos:   len(cp.Todos),
		HasPlan: cp.Context.Plan != nil,
	}
	for _, t := range cp.Todos {
		if t.Status == checkpoint.TodoCompleted {
			s.TodosDone++
		}
	}
	return s
}

// StatusRenderer displays project status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
	now    func() time.Time
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
		now:    time.Now,
	}
}

// Render displays status info to the terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", r.styles.Header.Render("Session Context: "+info.ProjectRoot))
	r.field(&b, "Project", info.ProjectHash)
	r.field(&b, "Branch", info.Branch)
	r.field(&b, "Storage", info.StorageDir)
	if info.Tracking {
		r.field(&b, "Tracking", r.styles.Success.Render("on"))
	} else {
		r.field(&b, "Tracking", r.styles.Warning.Render("off"))
	}
	b.WriteString("\n")

	if cp := info.Checkpoint; cp != nil {
		var body strings.Builder
		fmt.Fprintf(&body, "%s %s\n", r.styles.Label.Render("Task: "), cp.Task)
		fmt.Fprintf(&body, "%s %s\n", r.styles.Label.Render("State:"), cp.State)
		fmt.Fprintf(&body, "%s %d touched\n", r.styles.Label.Render("Files:"), cp.Files)
		fmt.Fprintf(&body, "%s %d/%d done\n", r.styles.Label.Render("Todos:"), cp.TodosDone, cp.Todos)
		if cp.HasPlan {
			fmt.Fprintf(&body, "%s cached\n", r.styles.Label.Render("Plan: "))
		}
		fmt.Fprintf(&body, "%s %s", r.styles.Label.Render("Saved:"), formatTime(r.now(), cp.Updated))
		fmt.Fprintf(&b, "%s\n%s\n\n", r.styles.Accent.Render("Checkpoint "+cp.ID), r.styles.Panel.Render(body.String()))
	} else {
		fmt.Fprintf(&b, "%s\n\n", r.styles.Dim.Render("No current checkpoint"))
	}

	if info.PendingHandoff != "" {
		fmt.Fprintf(&b, "%s %s\n\n", r.styles.Warning.Render("Pending handoff:"), info.PendingHandoff)
	}

	if len(info.Handoffs) == 0 {
		fmt.Fprintf(&b, "%s\n", r.styles.Dim.Render("No handoffs"))
	} else {
		fmt.Fprintf(&b, "%s\n", r.styles.Accent.Render(fmt.Sprintf("Handoffs (%d)", len(info.Handoffs))))
		r.handoffRows(&b, info.Handoffs)
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

// RenderHandoffs displays a handoff listing.
func (r *StatusRenderer) RenderHandoffs(list []checkpoint.HandoffSummary) error {
	var b strings.Builder
	if len(list) == 0 {
		fmt.Fprintf(&b, "%s\n", r.styles.Dim.Render("No handoffs"))
	} else {
		r.handoffRows(&b, list)
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

// RenderJSON outputs v as indented JSON.
func (r *StatusRenderer) RenderJSON(v any) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (r *StatusRenderer) field(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %s %s\n", r.styles.Label.Render(fmt.Sprintf("%-9s", label+":")), value)
}

func (r *StatusRenderer) handoffRows(b *strings.Builder, list []checkpoint.HandoffSummary) {
	now := r.now()
	for _, h := range list {
		line := fmt.Sprintf("  %s  %-14s  %s", r.styles.Success.Render(h.ID), formatTime(now, h.Updated), h.Task)
		if h.Summary != "" {
			line += r.styles.Dim.Render(" - " + h.Summary)
		}
		b.WriteString(line + "\n")
	}
}

// formatTime formats t relative to now.
func formatTime(now, t time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}
