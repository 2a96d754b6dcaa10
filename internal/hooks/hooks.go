// Package hooks translates agent tool events into checkpoint updates.
//
// Hook processes run alongside an interactive tool, so every entry point is
// silent: failures are logged and the caller exits 0.
package hooks

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
)

// File roles recorded for file-touching tools.
const (
	RoleCreated     = "created"
	RoleOverwritten = "created/overwritten"
	RoleModified    = "modified"
)

// maxPayloadBytes bounds what is read from stdin.
const maxPayloadBytes = 4 << 20

// Payload is the JSON a hook receives on stdin.
type Payload struct {
	SessionID     string          `json:"session_id"`
	CWD           string          `json:"cwd"`
	HookEventName string          `json:"hook_event_name"`
	ToolName      string          `json:"tool_name"`
	ToolInput     json.RawMessage `json:"tool_input"`
	ToolResponse  json.RawMessage `json:"tool_response"`
	Source        string          `json:"source"`
}

// ReadPayload decodes a hook payload from r. Empty input yields an empty payload.
func ReadPayload(r io.Reader) (*Payload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read hook payload: %w", err)
	}
	var p Payload
	if len(strings.TrimSpace(string(data))) == 0 {
		return &p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse hook payload: %w", err)
	}
	return &p, nil
}

type fileInput struct {
	FilePath     string `json:"file_path"`
	NotebookPath string `json:"notebook_path"`
}

type todoInput struct {
	Todos []struct {
		Content    string `json:"content"`
		Status     string `json:"status"`
		ActiveForm string `json:"activeForm"`
	} `json:"todos"`
}

type planInput struct {
	Plan         string `json:"plan"`
	PlanFilePath string `json:"planFilePath"`
}

type questionInput struct {
	Questions []struct {
		Question string `json:"question"`
	} `json:"questions"`
}

// Translate maps a tool event to the checkpoint updates it implies.
// extra is the tool response, when available. Unknown tools and events
// without applicable data yield no updates.
func Translate(tool string, input, extra []byte) ([]checkpoint.Update, error) {
	switch tool {
	case "Write":
		path, err := filePath(input)
		if err != nil || path == "" {
			return nil, err
		}
		role := RoleCreated
		if isUpdateResponse(extra) {
			role = RoleOverwritten
		}
		return []checkpoint.Update{{Files: []checkpoint.FileEntry{{Path: path, Role: role}}}}, nil

	case "Edit", "MultiEdit", "NotebookEdit":
		path, err := filePath(input)
		if err != nil || path == "" {
			return nil, err
		}
		return []checkpoint.Update{{Files: []checkpoint.FileEntry{{Path: path, Role: RoleModified}}}}, nil

	case "TodoWrite":
		var in todoInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		todos := make([]checkpoint.Todo, 0, len(in.Todos))
		for _, t := range in.Todos {
			if strings.TrimSpace(t.Content) == "" {
				continue
			}
			todos = append(todos, checkpoint.Todo{
				Content:    t.Content,
				Status:     todoStatus(t.Status),
				ActiveForm: t.ActiveForm,
			})
		}
		return []checkpoint.Update{{Todos: todos}}, nil

	case "ExitPlanMode":
		var in planInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		if strings.TrimSpace(in.Plan) == "" {
			return nil, nil
		}
		return []checkpoint.Update{{Plan: &checkpoint.Plan{Path: in.PlanFilePath, Content: in.Plan}}}, nil

	case "AskUserQuestion":
		var in questionInput
		if err := decode(input, &in); err != nil {
			return nil, err
		}
		answers := parseAnswers(extra)
		var updates []checkpoint.Update
		for _, q := range in.Questions {
			if strings.TrimSpace(q.Question) == "" {
				continue
			}
			updates = append(updates, checkpoint.Update{
				UserDecision: &checkpoint.UserDecision{Question: q.Question, Answer: answers[q.Question]},
			})
		}
		return updates, nil

	default:
		return nil, nil
	}
}

func decode(input []byte, v any) error {
	if len(input) == 0 {
		return nil
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("invalid tool input: %w", err)
	}
	return nil
}

func filePath(input []byte) (string, error) {
	var in fileInput
	if err := decode(input, &in); err != nil {
		return "", err
	}
	if in.FilePath != "" {
		return in.FilePath, nil
	}
	return in.NotebookPath, nil
}

// isUpdateResponse reports whether a Write response says an existing file
// was replaced.
func isUpdateResponse(extra []byte) bool {
	var resp struct {
		Type string `json:"type"`
	}
	if len(extra) == 0 || json.Unmarshal(extra, &resp) != nil {
		return false
	}
	return resp.Type == "update"
}

// parseAnswers reads question -> answer pairs from either
// {"answers": {...}} or a bare object.
func parseAnswers(extra []byte) map[string]string {
	out := map[string]string{}
	if len(extra) == 0 {
		return out
	}
	var raw map[string]any
	if json.Unmarshal(extra, &raw) != nil {
		return out
	}
	if nested, ok := raw["answers"].(map[string]any); ok {
		raw = nested
	}
	for q, a := range raw {
		switch v := a.(type) {
		case string:
			out[q] = v
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, fmt.Sprint(p))
			}
			out[q] = strings.Join(parts, ", ")
		}
	}
	return out
}

func todoStatus(s string) string {
	switch s {
	case checkpoint.TodoInProgress, checkpoint.TodoCompleted:
		return s
	default:
		return checkpoint.TodoPending
	}
}
