package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
)

func createHandoff(t *testing.T, root string, args ...string) *checkpoint.Handoff {
	t.Helper()
	out, _, err := run(t, "", append([]string{"--root", root, "handoff", "create", "--json"}, args...)...)
	require.NoError(t, err)
	var h checkpoint.Handoff
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	return &h
}

func TestHandoffCreate_OverlaysFlags(t *testing.T) {
	// Given: a tracked edit
	root, _ := testEnv(t)
	_, _, err := run(t, "", "--root", root, "hook", "track", "Edit", `{"file_path":"api.go"}`)
	require.NoError(t, err)

	// When: a handoff is created with annotations
	h := createHandoff(t, root,
		"--task", "Ship API", "--summary", "endpoints done",
		"--next", "write docs", "--next", "tag release", "--decision", "keep v1 routes")

	// Then: the snapshot carries the checkpoint state plus the annotations
	assert.Len(t, h.ID, 8)
	assert.Equal(t, "Ship API", h.Context.Task)
	assert.Equal(t, "endpoints done", h.Context.Summary)
	assert.Equal(t, []string{"write docs", "tag release"}, h.Context.NextSteps)
	assert.Equal(t, []string{"keep v1 routes"}, h.Context.Decisions)
	assert.Equal(t, []checkpoint.FileEntry{{Path: "api.go", Role: "modified"}}, h.Context.Files)
	assert.NotEmpty(t, h.SourceCheckpoint)
}

func TestHandoffCreate_TextOutput(t *testing.T) {
	root, _ := testEnv(t)

	out, _, err := run(t, "", "--root", root, "handoff", "create", "--task", "Investigate flake")

	require.NoError(t, err)
	assert.Contains(t, out, "Saved handoff ")
	assert.Contains(t, out, "Task: Investigate flake")
}

func TestHandoffShow(t *testing.T) {
	// Given: two handoffs
	root, _ := testEnv(t)
	first := createHandoff(t, root, "--task", "first")
	second := createHandoff(t, root, "--task", "second")

	// When/Then: show by id renders that handoff
	out, _, err := run(t, "", "--root", root, "handoff", "show", first.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "# Handoff "+first.ID)
	assert.Contains(t, out, "**Task:** first")

	// When/Then: show without id renders the latest
	out, _, err = run(t, "", "--root", root, "handoff", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Handoff "+second.ID)

	// When/Then: JSON output decodes to the handoff
	out, _, err = run(t, "", "--root", root, "handoff", "show", first.ID, "--json")
	require.NoError(t, err)
	var h checkpoint.Handoff
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	assert.Equal(t, first.ID, h.ID)
}

func TestHandoffShow_OtherProjectNeedsAllProjects(t *testing.T) {
	// Given: a handoff in another project
	root, _ := testEnv(t)
	other := t.TempDir()
	h := createHandoff(t, other, "--task", "elsewhere")

	// When: shown from this project
	_, _, err := run(t, "", "--root", root, "handoff", "show", h.ID)

	// Then: it is not found unless all projects are searched
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	out, _, err := run(t, "", "--root", root, "handoff", "show", h.ID, "--all-projects")
	require.NoError(t, err)
	assert.Contains(t, out, "elsewhere")
}

func TestHandoffShow_NoneYet(t *testing.T) {
	root, _ := testEnv(t)

	_, _, err := run(t, "", "--root", root, "handoff", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handoffs")
}

func TestHandoffShow_CorruptIsReported(t *testing.T) {
	// Given: a handoff whose file got corrupted
	root, storage := testEnv(t)
	h := createHandoff(t, root, "--task", "x")
	path := filepath.Join(storage, checkpoint.ProjectHash(root)+"."+h.ID+".json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	// When: it is shown
	_, _, err := run(t, "", "--root", root, "handoff", "show", h.ID)

	// Then: the corruption surfaces as an error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_206")
}

func TestHandoffList(t *testing.T) {
	root, _ := testEnv(t)
	createHandoff(t, root, "--task", "alpha")
	createHandoff(t, root, "--task", "beta", "--summary", "half way")

	out, _, err := run(t, "", "--root", root, "handoff", "list")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "half way")
}

func TestHandoffList_Empty(t *testing.T) {
	root, _ := testEnv(t)

	out, _, err := run(t, "", "--root", root, "handoff", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No handoffs")
}

func TestHandoffPrune_EvictsBeyondLimit(t *testing.T) {
	// Given: a config keeping only two handoffs
	root, _ := testEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"checkpoints":{"maxStoredHandoffs":2}}`), 0o644))
	t.Setenv("SESSION_CONTEXT_CONFIG", cfgPath)

	// When: three handoffs are created
	for _, task := range []string{"a", "b", "c"} {
		createHandoff(t, root, "--task", task)
	}

	// Then: creation already evicted the oldest
	out, _, err := run(t, "", "--root", root, "handoff", "list", "--json")
	require.NoError(t, err)
	var list []checkpoint.HandoffSummary
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list, 2)

	// And: an explicit prune finds nothing more to do
	out, _, err = run(t, "", "--root", root, "handoff", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned 0 handoff(s)")

	out, _, err = run(t, "", "handoff", "prune", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned 0 handoff(s)")
}
