package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
	"github.com/Aman-CERP/sessionctx/internal/recovery"
	"github.com/Aman-CERP/sessionctx/pkg/version"
)

// ServerName is the implementation name reported to clients.
const ServerName = "sessionctx"

// Server is the MCP server for sessionctx.
// It exposes the checkpoint store of one project root to AI clients.
type Server struct {
	mcp       *mcp.Server
	store     *checkpoint.Store
	assembler *recovery.Assembler
	logger    *slog.Logger

	rootPath string
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var tools = []ToolInfo{
	{
		Name:        "create_handoff",
		Description: "Save an explicit handoff for the next session: a snapshot of the current checkpoint plus a task, summary, next steps and decisions you provide. Call this before ending a session or when context is about to be compacted.",
	},
	{
		Name:        "read_handoff",
		Description: "Read a saved handoff by id, or the most recent one when no id is given.",
	},
	{
		Name:        "list_handoffs",
		Description: "List saved handoffs of the current project, most recently updated first.",
	},
	{
		Name:        "get_checkpoint",
		Description: "Get the rolling checkpoint of the current project: task, touched files, todos, decisions and plan tracked so far.",
	},
	{
		Name:        "update_checkpoint",
		Description: "Record task, summary, state, files, todos, decisions, blockers, next steps, an answered question or the plan in the rolling checkpoint. Omitted fields are left unchanged.",
	},
	{
		Name:        "session_context",
		Description: "Get the assembled recovery context for this project as markdown: pending handoff, current checkpoint, recent handoffs and repository state.",
	},
}

// NewServer creates a new MCP server for the project at rootPath.
// A nil assembler is replaced by one built on store; a nil logger means slog.Default().
func NewServer(store *checkpoint.Store, assembler *recovery.Assembler, rootPath string, logger *slog.Logger) (*Server, error) {
	if store == nil {
		return nil, errors.New("checkpoint store is required")
	}
	if rootPath == "" {
		return nil, errors.New("project root is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if assembler == nil {
		assembler = recovery.NewAssembler(store, logger)
	}

	s := &Server{
		store:     store,
		assembler: assembler,
		logger:    logger,
		rootPath:  rootPath,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		},
		nil, // capabilities are inferred from registered tools
	)

	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return ServerName, version.Version
}

// RootPath returns the project root the server operates on.
func (s *Server) RootPath() string {
	return s.rootPath
}

// ListTools returns the registered tools.
func (s *Server) ListTools() []ToolInfo {
	out := make([]ToolInfo, len(tools))
	copy(out, tools)
	return out
}

// CallTool invokes a tool by name with JSON-shaped arguments, bypassing the
// protocol layer. The returned value is the tool's structured output.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "create_handoff":
		return callWith(ctx, args, s.createHandoff)
	case "read_handoff":
		return callWith(ctx, args, s.readHandoff)
	case "list_handoffs":
		return callWith(ctx, args, s.listHandoffs)
	case "get_checkpoint":
		return callWith(ctx, args, s.getCheckpoint)
	case "update_checkpoint":
		return callWith(ctx, args, s.updateCheckpoint)
	case "session_context":
		return callWith(ctx, args, s.sessionContext)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func callWith[In, Out any](ctx context.Context, args map[string]any, fn func(context.Context, In) (Out, error)) (any, error) {
	var in In
	if len(args) > 0 {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, NewInvalidParamsError(err.Error())
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, NewInvalidParamsError(fmt.Sprintf("invalid arguments: %v", err))
		}
	}
	out, err := fn(ctx, in)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[0].Name, Description: tools[0].Description}, s.mcpCreateHandoffHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[1].Name, Description: tools[1].Description}, s.mcpReadHandoffHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[2].Name, Description: tools[2].Description}, s.mcpListHandoffsHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[3].Name, Description: tools[3].Description}, s.mcpGetCheckpointHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[4].Name, Description: tools[4].Description}, s.mcpUpdateCheckpointHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[5].Name, Description: tools[5].Description}, s.mcpSessionContextHandler)

	s.logger.Debug("MCP tools registered", slog.Int("count", len(tools)))
}

func (s *Server) mcpCreateHandoffHandler(ctx context.Context, _ *mcp.CallToolRequest, input CreateHandoffInput) (
	*mcp.CallToolResult,
	HandoffOutput,
	error,
) {
	out, err := s.createHandoff(ctx, input)
	return nil, out, err
}

func (s *Server) mcpReadHandoffHandler(ctx context.Context, _ *mcp.CallToolRequest, input ReadHandoffInput) (
	*mcp.CallToolResult,
	ReadHandoffOutput,
	error,
) {
	out, err := s.readHandoff(ctx, input)
	return nil, out, err
}

func (s *Server) mcpListHandoffsHandler(ctx context.Context, _ *mcp.CallToolRequest, input ListHandoffsInput) (
	*mcp.CallToolResult,
	ListHandoffsOutput,
	error,
) {
	out, err := s.listHandoffs(ctx, input)
	return nil, out, err
}

func (s *Server) mcpGetCheckpointHandler(ctx context.Context, _ *mcp.CallToolRequest, input GetCheckpointInput) (
	*mcp.CallToolResult,
	GetCheckpointOutput,
	error,
) {
	out, err := s.getCheckpoint(ctx, input)
	return nil, out, err
}

func (s *Server) mcpUpdateCheckpointHandler(ctx context.Context, _ *mcp.CallToolRequest, input UpdateCheckpointInput) (
	*mcp.CallToolResult,
	CheckpointOutput,
	error,
) {
	out, err := s.updateCheckpoint(ctx, input)
	return nil, out, err
}

func (s *Server) mcpSessionContextHandler(ctx context.Context, _ *mcp.CallToolRequest, input SessionContextInput) (
	*mcp.CallToolResult,
	SessionContextOutput,
	error,
) {
	out, err := s.sessionContext(ctx, input)
	if err != nil {
		return nil, out, err
	}
	text := out.Prompt
	if text == "" {
		text = "No session context to recover."
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, out, nil
}

func (s *Server) createHandoff(ctx context.Context, in CreateHandoffInput) (HandoffOutput, error) {
	if err := ctx.Err(); err != nil {
		return HandoffOutput{}, MapError(err)
	}
	h, err := s.store.CreateHandoff(s.rootPath, checkpoint.HandoffFields{
		Task:      in.Task,
		Summary:   in.Summary,
		NextSteps: in.NextSteps,
		Decisions: in.Decisions,
	})
	if err != nil {
		s.logger.Warn("create_handoff failed", slog.String("error", err.Error()))
		return HandoffOutput{}, MapError(err)
	}
	return HandoffOutput{Handoff: *ToHandoffOutput(h)}, nil
}

func (s *Server) readHandoff(ctx context.Context, in ReadHandoffInput) (ReadHandoffOutput, error) {
	if err := ctx.Err(); err != nil {
		return ReadHandoffOutput{}, MapError(err)
	}
	opts := checkpoint.ReadOptions{
		ID:     in.ID,
		Latest: in.Latest || in.ID == "",
	}
	if !in.AllProjects {
		opts.ProjectHash = checkpoint.ProjectHash(s.rootPath)
	}

	h, err := s.store.ReadHandoff(opts)
	if err != nil {
		return ReadHandoffOutput{}, MapError(err)
	}
	if h == nil {
		return ReadHandoffOutput{}, nil
	}
	return ReadHandoffOutput{Found: true, Handoff: ToHandoffOutput(h)}, nil
}

func (s *Server) listHandoffs(ctx context.Context, in ListHandoffsInput) (ListHandoffsOutput, error) {
	if err := ctx.Err(); err != nil {
		return ListHandoffsOutput{}, MapError(err)
	}
	if in.Limit < 0 {
		return ListHandoffsOutput{}, NewInvalidParamsError("limit must not be negative")
	}

	summaries, err := s.store.ListHandoffs(s.rootPath)
	if err != nil {
		return ListHandoffsOutput{}, MapError(err)
	}
	if in.Limit > 0 && len(summaries) > in.Limit {
		summaries = summaries[:in.Limit]
	}

	out := ListHandoffsOutput{Handoffs: make([]SummaryOutput, 0, len(summaries))}
	for _, sum := range summaries {
		out.Handoffs = append(out.Handoffs, ToSummaryOutput(sum))
	}
	return out, nil
}

func (s *Server) getCheckpoint(ctx context.Context, _ GetCheckpointInput) (GetCheckpointOutput, error) {
	if err := ctx.Err(); err != nil {
		return GetCheckpointOutput{}, MapError(err)
	}
	cp, err := s.store.Get(s.rootPath)
	if err != nil {
		return GetCheckpointOutput{}, MapError(err)
	}
	if cp == nil {
		return GetCheckpointOutput{}, nil
	}
	return GetCheckpointOutput{Found: true, Checkpoint: ToRecordOutput(cp)}, nil
}

func (s *Server) updateCheckpoint(ctx context.Context, in UpdateCheckpointInput) (CheckpointOutput, error) {
	if err := ctx.Err(); err != nil {
		return CheckpointOutput{}, MapError(err)
	}
	u := in.update()
	if u.IsEmpty() {
		return CheckpointOutput{}, NewInvalidParamsError("at least one field must be set")
	}

	cp, err := s.store.Update(s.rootPath, "", u)
	if err != nil {
		return CheckpointOutput{}, MapError(err)
	}
	return CheckpointOutput{Checkpoint: *ToRecordOutput(cp), Persisted: s.store.Persists()}, nil
}

func (s *Server) sessionContext(ctx context.Context, in SessionContextInput) (SessionContextOutput, error) {
	prompt, err := s.assembler.Build(ctx, s.rootPath, in.Consume)
	if err != nil {
		return SessionContextOutput{}, MapError(err)
	}
	return SessionContextOutput{Prompt: prompt}, nil
}

// Serve runs the server over stdio until ctx is canceled or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server",
		slog.String("transport", "stdio"),
		slog.String("root", s.rootPath))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped gracefully")
	return nil
}

// Close releases server resources.
func (s *Server) Close() error {
	// The SDK server stops when its context is canceled.
	return nil
}
