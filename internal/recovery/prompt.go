package recovery

import (
	"fmt"
	"strings"
	"time"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
	"github.com/Aman-CERP/sessionctx/internal/config"
)

// PromptInput is everything a recovery prompt can show.
type PromptInput struct {
	Checkpoint *checkpoint.Checkpoint
	// Marked is the handoff explicitly left for this session, if any.
	Marked   *checkpoint.Handoff
	Handoffs []checkpoint.HandoffSummary
	Results  []Result
	Limits   config.RecoveryConfig
	Now      time.Time
}

// IsEmpty reports whether there is nothing worth recovering.
func (in PromptInput) IsEmpty() bool {
	return in.Checkpoint == nil && in.Marked == nil && len(in.Handoffs) == 0
}

// BuildPrompt renders in as markdown. Sections without content are omitted;
// unavailable integrations are listed as such.
func BuildPrompt(in PromptInput) string {
	if in.Now.IsZero() {
		in.Now = time.Now()
	}

	var b strings.Builder
	b.WriteString("# Session Recovery\n\n")

	if in.Marked != nil {
		fmt.Fprintf(&b, "## Handoff %s (%s)\n\n", in.Marked.ID, ago(in.Now, in.Marked.Created))
		writeState(&b, &in.Marked.Checkpoint, in.Limits)
	}

	if in.Checkpoint != nil {
		fmt.Fprintf(&b, "## Current Checkpoint (updated %s)\n\n", ago(in.Now, in.Checkpoint.Updated))
		writeState(&b, in.Checkpoint, in.Limits)
	}

	if len(in.Handoffs) > 0 {
		b.WriteString("## Recent Handoffs\n\n")
		for _, h := range in.Handoffs {
			line := fmt.Sprintf("- `%s` %s: %s", h.ID, ago(in.Now, h.Created), h.Task)
			if h.Summary != "" {
				line += " (" + h.Summary + ")"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	for _, r := range in.Results {
		fmt.Fprintf(&b, "## %s\n\n", title(r.Name))
		switch {
		case !r.Available:
			b.WriteString("_unavailable_\n\n")
		case r.Info == nil || len(r.Info.Lines) == 0:
			b.WriteString("_nothing to report_\n\n")
		default:
			for _, l := range r.Info.Lines {
				b.WriteString("- " + l + "\n")
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatRecord renders the state of cp as markdown, without list caps.
func FormatRecord(cp *checkpoint.Checkpoint) string {
	var b strings.Builder
	writeState(&b, cp, config.RecoveryConfig{})
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeState(b *strings.Builder, cp *checkpoint.Checkpoint, limits config.RecoveryConfig) {
	c := cp.Context
	fmt.Fprintf(b, "**Task:** %s\n", c.Task)
	if c.Summary != "" {
		fmt.Fprintf(b, "**Summary:** %s\n", c.Summary)
	}
	if c.State != "" {
		fmt.Fprintf(b, "**State:** %s\n", c.State)
	}
	if cp.Project.Branch != "" {
		fmt.Fprintf(b, "**Branch:** %s\n", cp.Project.Branch)
	}
	if c.Plan != nil {
		if t := checkpoint.PlanTitle(c.Plan.Content); t != "" {
			fmt.Fprintf(b, "**Plan:** %s", t)
		} else {
			b.WriteString("**Plan:** cached")
		}
		if c.Plan.Path != "" {
			fmt.Fprintf(b, " (`%s`)", c.Plan.Path)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(c.Files) > 0 {
		b.WriteString("### Files\n")
		files, more := capSlice(c.Files, limits.MaxFiles)
		for _, f := range files {
			fmt.Fprintf(b, "- `%s` (%s)\n", f.Path, f.Role)
		}
		writeMore(b, more)
		b.WriteString("\n")
	}

	if len(cp.Todos) > 0 {
		b.WriteString("### Todos\n")
		todos, more := capSlice(cp.Todos, limits.MaxTodos)
		for _, t := range todos {
			fmt.Fprintf(b, "- %s %s\n", todoBox(t.Status), t.Content)
		}
		writeMore(b, more)
		b.WriteString("\n")
	}

	writeList(b, "Decisions", c.Decisions)
	writeList(b, "Blockers", c.Blockers)
	writeList(b, "Next Steps", c.NextSteps)

	if len(c.UserDecisions) > 0 {
		b.WriteString("### User Decisions\n")
		for _, d := range c.UserDecisions {
			fmt.Fprintf(b, "- %s → %s\n", d.Question, d.Answer)
		}
		b.WriteString("\n")
	}
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n", heading)
	for _, s := range items {
		b.WriteString("- " + s + "\n")
	}
	b.WriteString("\n")
}

func writeMore(b *strings.Builder, more int) {
	if more > 0 {
		fmt.Fprintf(b, "- ... and %d more\n", more)
	}
}

// capSlice keeps the first limit items. A non-positive limit keeps all.
func capSlice[T any](items []T, limit int) ([]T, int) {
	if limit <= 0 || len(items) <= limit {
		return items, 0
	}
	return items[:limit], len(items) - limit
}

func todoBox(status string) string {
	switch status {
	case checkpoint.TodoCompleted:
		return "[x]"
	case checkpoint.TodoInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func title(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// ago formats the time since t in coarse units.
func ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
