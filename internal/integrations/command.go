package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"slices"
	"sort"
	"strings"
	"time"
)

const (
	// maxLines caps the rendering of a command's output.
	maxLines = 10

	maxLineLength = 160
)

// titleKeys are tried in order to pick a label for a JSON object.
var titleKeys = []string{"title", "subject", "name", "content", "summary", "id"}

// CommandProvider runs an external command in the project root and decodes
// its stdout. JSON output is rendered item by item; anything else is shown
// as plain text.
type CommandProvider struct {
	name    string
	command []string
	timeout time.Duration
}

// NewCommandProvider creates a provider running command (argv form).
func NewCommandProvider(name string, command []string, timeout time.Duration) *CommandProvider {
	return &CommandProvider{name: name, command: slices.Clone(command), timeout: timeout}
}

// Name implements Provider.
func (c *CommandProvider) Name() string { return c.name }

// Timeout implements Provider.
func (c *CommandProvider) Timeout() time.Duration { return c.timeout }

// Info implements Provider. It returns nil when the command printed nothing.
func (c *CommandProvider) Info(ctx context.Context, root string) (*Info, error) {
	if len(c.command) == 0 {
		return nil, fmt.Errorf("%s: no command configured", c.name)
	}

	cmd := exec.CommandContext(ctx, c.command[0], c.command[1:]...)
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", c.name, err, firstLine(msg))
		}
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, nil
	}

	var data any
	if err := json.Unmarshal(out, &data); err != nil {
		text := string(out)
		return &Info{Name: c.name, Data: text, Lines: textLines(text)}, nil
	}
	return &Info{Name: c.name, Data: data, Lines: render(data)}, nil
}

func render(data any) []string {
	var lines []string
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			lines = append(lines, label(item))
		}
	case map[string]any:
		// a wrapper object holding a single list is rendered as that list
		for _, key := range []string{"items", "issues", "messages", "results"} {
			if list, ok := v[key].([]any); ok {
				return render(list)
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %s", k, scalar(v[k])))
		}
	default:
		lines = append(lines, scalar(v))
	}
	return capLines(lines)
}

func label(item any) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return scalar(item)
	}
	for _, k := range titleKeys {
		if s, ok := obj[k].(string); ok && s != "" {
			if id, ok := obj["id"]; ok && k != "id" {
				return fmt.Sprintf("%s %s", scalar(id), s)
			}
			return s
		}
	}
	return scalar(obj)
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return truncate(x)
	case nil:
		return "null"
	case map[string]any, []any:
		data, _ := json.Marshal(x)
		return truncate(string(data))
	default:
		return truncate(fmt.Sprint(x))
	}
}

func textLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimRight(l, " \t\r"); l != "" {
			lines = append(lines, truncate(l))
		}
	}
	return capLines(lines)
}

func capLines(lines []string) []string {
	if len(lines) <= maxLines {
		return lines
	}
	extra := len(lines) - maxLines
	return append(lines[:maxLines:maxLines], fmt.Sprintf("... and %d more", extra))
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLineLength {
		return s
	}
	return s[:maxLineLength-3] + "..."
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
