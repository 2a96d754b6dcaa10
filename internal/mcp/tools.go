package mcp

import (
	"time"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
)

// CreateHandoffInput defines the input schema for the create_handoff tool.
type CreateHandoffInput struct {
	Task      string   `json:"task,omitempty" jsonschema:"what the session was working on; defaults to the checkpoint task"`
	Summary   string   `json:"summary,omitempty" jsonschema:"short summary of progress so far"`
	NextSteps []string `json:"nextSteps,omitempty" jsonschema:"what the next session should do first"`
	Decisions []string `json:"decisions,omitempty" jsonschema:"decisions made that the next session must respect"`
}

// HandoffOutput defines the output schema for the create_handoff tool.
type HandoffOutput struct {
	Handoff RecordOutput `json:"handoff" jsonschema:"the saved handoff"`
}

// ReadHandoffInput defines the input schema for the read_handoff tool.
type ReadHandoffInput struct {
	ID          string `json:"id,omitempty" jsonschema:"handoff id; omit to read the most recent handoff"`
	Latest      bool   `json:"latest,omitempty" jsonschema:"read the most recently updated handoff, ignoring id"`
	AllProjects bool   `json:"allProjects,omitempty" jsonschema:"search handoffs of every project, not only the current one"`
}

// ReadHandoffOutput defines the output schema for the read_handoff tool.
type ReadHandoffOutput struct {
	Found   bool          `json:"found" jsonschema:"whether a handoff matched"`
	Handoff *RecordOutput `json:"handoff,omitempty" jsonschema:"the matching handoff"`
}

// ListHandoffsInput defines the input schema for the list_handoffs tool.
type ListHandoffsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of handoffs, default all"`
}

// ListHandoffsOutput defines the output schema for the list_handoffs tool.
type ListHandoffsOutput struct {
	Handoffs []SummaryOutput `json:"handoffs" jsonschema:"handoffs of the project, most recently updated first"`
}

// GetCheckpointInput defines the input schema for the get_checkpoint tool (no parameters).
type GetCheckpointInput struct{}

// GetCheckpointOutput defines the output schema for the get_checkpoint tool.
type GetCheckpointOutput struct {
	Found      bool          `json:"found" jsonschema:"whether a current checkpoint exists"`
	Checkpoint *RecordOutput `json:"checkpoint,omitempty" jsonschema:"the rolling checkpoint"`
}

// UpdateCheckpointInput defines the input schema for the update_checkpoint tool.
// Absent fields are left untouched; lists other than files replace the stored list.
type UpdateCheckpointInput struct {
	Task         *string                `json:"task,omitempty" jsonschema:"current task"`
	Summary      *string                `json:"summary,omitempty" jsonschema:"progress summary"`
	State        *string                `json:"state,omitempty" jsonschema:"session state, e.g. in_progress or blocked"`
	Files        []checkpoint.FileEntry `json:"files,omitempty" jsonschema:"touched files, merged by path"`
	Todos        []checkpoint.Todo      `json:"todos,omitempty" jsonschema:"full todo list"`
	Decisions    []string               `json:"decisions,omitempty" jsonschema:"decisions made"`
	Blockers     []string               `json:"blockers,omitempty" jsonschema:"open blockers"`
	NextSteps    []string               `json:"nextSteps,omitempty" jsonschema:"planned next steps"`
	UserDecision *DecisionInput         `json:"userDecision,omitempty" jsonschema:"an answered question to record"`
	Plan         *PlanInput             `json:"plan,omitempty" jsonschema:"the current plan"`
}

// CheckpointOutput defines the output schema for the update_checkpoint tool.
type CheckpointOutput struct {
	Checkpoint RecordOutput `json:"checkpoint" jsonschema:"the checkpoint after the update"`
	Persisted  bool         `json:"persisted" jsonschema:"false when tracking is disabled and nothing was written"`
}

// DecisionInput is an answered question.
type DecisionInput struct {
	Question string `json:"question" jsonschema:"the question asked"`
	Answer   string `json:"answer" jsonschema:"the answer given"`
}

// PlanInput is the content of a plan.
type PlanInput struct {
	Path    string `json:"path,omitempty" jsonschema:"where the plan is stored"`
	Content string `json:"content" jsonschema:"plan markdown"`
}

// SessionContextInput defines the input schema for the session_context tool.
type SessionContextInput struct {
	Consume bool `json:"consume,omitempty" jsonschema:"clear the pending-handoff marker after reading"`
}

// SessionContextOutput defines the output schema for the session_context tool.
type SessionContextOutput struct {
	Prompt string `json:"prompt" jsonschema:"recovery context as markdown; empty when there is nothing to recover"`
}

// RecordOutput is a checkpoint or handoff as returned to clients.
type RecordOutput struct {
	ID               string                 `json:"id"`
	Created          string                 `json:"created"`
	Updated          string                 `json:"updated"`
	TTL              string                 `json:"ttl,omitempty"`
	ProjectRoot      string                 `json:"projectRoot"`
	ProjectHash      string                 `json:"projectHash"`
	Branch           string                 `json:"branch"`
	Task             string                 `json:"task"`
	Summary          string                 `json:"summary"`
	State            string                 `json:"state"`
	Files            []checkpoint.FileEntry `json:"files"`
	Todos            []checkpoint.Todo      `json:"todos"`
	Decisions        []string               `json:"decisions"`
	Blockers         []string               `json:"blockers"`
	NextSteps        []string               `json:"nextSteps"`
	UserDecisions    []DecisionOutput       `json:"userDecisions"`
	Plan             *PlanOutput            `json:"plan,omitempty"`
	SourceCheckpoint string                 `json:"sourceCheckpoint,omitempty"`
}

// DecisionOutput is a recorded user decision.
type DecisionOutput struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// PlanOutput is the cached plan of a record.
type PlanOutput struct {
	Path     string `json:"path,omitempty"`
	Title    string `json:"title,omitempty"`
	CachedAt string `json:"cachedAt"`
	Content  string `json:"content"`
}

// SummaryOutput is one entry of list_handoffs.
type SummaryOutput struct {
	ID      string `json:"id"`
	Created string `json:"created"`
	Updated string `json:"updated"`
	Task    string `json:"task"`
	Summary string `json:"summary"`
	Branch  string `json:"branch"`
	Files   int    `json:"files"`
	Todos   int    `json:"todos"`
}

func (in UpdateCheckpointInput) update() checkpoint.Update {
	u := checkpoint.Update{
		Task:      in.Task,
		Summary:   in.Summary,
		State:     in.State,
		Files:     in.Files,
		Todos:     in.Todos,
		Decisions: in.Decisions,
		Blockers:  in.Blockers,
		NextSteps: in.NextSteps,
	}
	if in.UserDecision != nil {
		u.UserDecision = &checkpoint.UserDecision{
			Question: in.UserDecision.Question,
			Answer:   in.UserDecision.Answer,
		}
	}
	if in.Plan != nil {
		u.Plan = &checkpoint.Plan{Path: in.Plan.Path, Content: in.Plan.Content}
	}
	return u
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ToRecordOutput converts a checkpoint to its client representation.
func ToRecordOutput(cp *checkpoint.Checkpoint) *RecordOutput {
	if cp == nil {
		return nil
	}
	out := &RecordOutput{
		ID:            cp.ID,
		Created:       formatTime(cp.Created),
		Updated:       formatTime(cp.Updated),
		TTL:           cp.TTL,
		ProjectRoot:   cp.Project.Root,
		ProjectHash:   cp.Project.Hash,
		Branch:        cp.Project.Branch,
		Task:          cp.Context.Task,
		Summary:       cp.Context.Summary,
		State:         cp.Context.State,
		Files:         nonNil(cp.Context.Files),
		Todos:         nonNil(cp.Todos),
		Decisions:     nonNil(cp.Context.Decisions),
		Blockers:      nonNil(cp.Context.Blockers),
		NextSteps:     nonNil(cp.Context.NextSteps),
		UserDecisions: make([]DecisionOutput, 0, len(cp.Context.UserDecisions)),
	}
	for _, d := range cp.Context.UserDecisions {
		out.UserDecisions = append(out.UserDecisions, DecisionOutput{
			Question:  d.Question,
			Answer:    d.Answer,
			Timestamp: formatTime(d.Timestamp),
		})
	}
	if p := cp.Context.Plan; p != nil {
		out.Plan = &PlanOutput{
			Path:     p.Path,
			Title:    checkpoint.PlanTitle(p.Content),
			CachedAt: formatTime(p.CachedAt),
			Content:  p.Content,
		}
	}
	return out
}

// ToHandoffOutput converts a handoff to its client representation.
func ToHandoffOutput(h *checkpoint.Handoff) *RecordOutput {
	if h == nil {
		return nil
	}
	out := ToRecordOutput(&h.Checkpoint)
	out.SourceCheckpoint = h.SourceCheckpoint
	return out
}

// ToSummaryOutput converts a handoff summary to its client representation.
func ToSummaryOutput(s checkpoint.HandoffSummary) SummaryOutput {
	return SummaryOutput{
		ID:      s.ID,
		Created: formatTime(s.Created),
		Updated: formatTime(s.Updated),
		Task:    s.Task,
		Summary: s.Summary,
		Branch:  s.Branch,
		Files:   s.Files,
		Todos:   s.Todos,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
