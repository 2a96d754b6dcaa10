package hooks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
	"github.com/Aman-CERP/sessionctx/internal/config"
)

const testRoot = "/home/user/project"

func newTracker(t *testing.T, cfg *config.Config) (*Tracker, *checkpoint.Store) {
	t.Helper()
	store, err := checkpoint.NewStore(checkpoint.StoreConfig{
		StoragePath: t.TempDir(),
		Config:      func() *config.Config { return cfg },
		Branch:      func(string) string { return "main" },
	})
	require.NoError(t, err)
	return NewTracker(store, nil), store
}

func TestTranslate_FileTools(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		input    string
		extra    string
		wantPath string
		wantRole string
	}{
		{"write new", "Write", `{"file_path":"/p/a.go","content":"x"}`, "", "/p/a.go", RoleCreated},
		{"write create response", "Write", `{"file_path":"/p/a.go"}`, `{"type":"create"}`, "/p/a.go", RoleCreated},
		{"write overwrite", "Write", `{"file_path":"/p/a.go"}`, `{"type":"update"}`, "/p/a.go", RoleOverwritten},
		{"write garbage response", "Write", `{"file_path":"/p/a.go"}`, `not json`, "/p/a.go", RoleCreated},
		{"edit", "Edit", `{"file_path":"b.go","old_string":"a","new_string":"b"}`, "", "b.go", RoleModified},
		{"multi edit", "MultiEdit", `{"file_path":"c.go","edits":[]}`, "", "c.go", RoleModified},
		{"notebook", "NotebookEdit", `{"notebook_path":"n.ipynb"}`, "", "n.ipynb", RoleModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates, err := Translate(tt.tool, []byte(tt.input), []byte(tt.extra))

			require.NoError(t, err)
			require.Len(t, updates, 1)
			assert.Equal(t, []checkpoint.FileEntry{{Path: tt.wantPath, Role: tt.wantRole}}, updates[0].Files)
		})
	}
}

func TestTranslate_NoOps(t *testing.T) {
	tests := []struct {
		name  string
		tool  string
		input string
	}{
		{"unknown tool", "Bash", `{"command":"ls"}`},
		{"write without path", "Write", `{}`},
		{"empty plan", "ExitPlanMode", `{"plan":"   "}`},
		{"no input", "Edit", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates, err := Translate(tt.tool, []byte(tt.input), nil)

			require.NoError(t, err)
			assert.Empty(t, updates)
		})
	}
}

func TestTranslate_InvalidJSON(t *testing.T) {
	_, err := Translate("Edit", []byte(`{"file_path":`), nil)
	assert.Error(t, err)
}

func TestTranslate_TodoWrite(t *testing.T) {
	input := `{"todos":[
		{"content":"write store","status":"completed","activeForm":"Writing store"},
		{"content":"write hooks","status":"in_progress","activeForm":"Writing hooks"},
		{"content":"ship","status":"cancelled"},
		{"content":"  ","status":"pending"}
	]}`

	updates, err := Translate("TodoWrite", []byte(input), nil)

	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, []checkpoint.Todo{
		{Content: "write store", Status: checkpoint.TodoCompleted, ActiveForm: "Writing store"},
		{Content: "write hooks", Status: checkpoint.TodoInProgress, ActiveForm: "Writing hooks"},
		{Content: "ship", Status: checkpoint.TodoPending},
	}, updates[0].Todos)
}

func TestTranslate_ExitPlanMode(t *testing.T) {
	updates, err := Translate("ExitPlanMode",
		[]byte(`{"plan":"# Add pruning\n- step","planFilePath":"/p/.plans/x.md"}`), nil)

	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.NotNil(t, updates[0].Plan)
	assert.Equal(t, "/p/.plans/x.md", updates[0].Plan.Path)
	assert.True(t, strings.HasPrefix(updates[0].Plan.Content, "# Add pruning"))
}

func TestTranslate_AskUserQuestion(t *testing.T) {
	input := `{"questions":[{"question":"Which DB?"},{"question":"Which cache?"}]}`

	tests := []struct {
		name  string
		extra string
		want  []string
	}{
		{"nested answers", `{"answers":{"Which DB?":"none","Which cache?":"LRU"}}`, []string{"none", "LRU"}},
		{"bare answers", `{"Which DB?":"sqlite"}`, []string{"sqlite", ""}},
		{"multi select", `{"answers":{"Which DB?":["a","b"]}}`, []string{"a, b", ""}},
		{"no response", ``, []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates, err := Translate("AskUserQuestion", []byte(input), []byte(tt.extra))

			require.NoError(t, err)
			require.Len(t, updates, 2)
			assert.Equal(t, "Which DB?", updates[0].UserDecision.Question)
			assert.Equal(t, tt.want[0], updates[0].UserDecision.Answer)
			assert.Equal(t, tt.want[1], updates[1].UserDecision.Answer)
		})
	}
}

func TestReadPayload(t *testing.T) {
	p, err := ReadPayload(strings.NewReader(
		`{"session_id":"s1","cwd":"/p","tool_name":"Edit","tool_input":{"file_path":"a.go"},"tool_response":{"ok":true}}`))
	require.NoError(t, err)
	assert.Equal(t, "/p", p.CWD)
	assert.Equal(t, "Edit", p.ToolName)
	assert.JSONEq(t, `{"file_path":"a.go"}`, string(p.ToolInput))

	empty, err := ReadPayload(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, empty.ToolName)

	_, err = ReadPayload(strings.NewReader("{broken"))
	assert.Error(t, err)
}

func TestTracker_TracksAndFilters(t *testing.T) {
	// Given: a tracker with default privacy patterns
	tracker, store := newTracker(t, config.NewConfig())

	// When: a normal edit and a secret edit are tracked
	n, err := tracker.Track(testRoot, "Edit", []byte(`{"file_path":"/home/user/project/main.go"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = tracker.Track(testRoot, "Write", []byte(`{"file_path":"/home/user/project/.env"}`), nil)
	require.NoError(t, err)

	// Then: only the normal file is stored
	cp, err := store.Get(testRoot)
	require.NoError(t, err)
	assert.Equal(t, []checkpoint.FileEntry{{Path: "main.go", Role: RoleModified}}, cp.Context.Files)
}

func TestTracker_QuestionsBecomeDecisions(t *testing.T) {
	tracker, store := newTracker(t, config.NewConfig())

	n, err := tracker.Track(testRoot, "AskUserQuestion",
		[]byte(`{"questions":[{"question":"A?"},{"question":"B?"}]}`),
		[]byte(`{"answers":{"A?":"yes","B?":"no"}}`))

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	cp, err := store.Get(testRoot)
	require.NoError(t, err)
	require.Len(t, cp.Context.UserDecisions, 2)
	assert.Equal(t, "no", cp.Context.UserDecisions[1].Answer)
}

func TestTracker_UnknownToolDoesNothing(t *testing.T) {
	tracker, store := newTracker(t, config.NewConfig())

	n, err := tracker.Track(testRoot, "Grep", []byte(`{}`), nil)

	require.NoError(t, err)
	assert.Zero(t, n)
	cp, err := store.Get(testRoot)
	require.NoError(t, err)
	assert.Nil(t, cp)
}
