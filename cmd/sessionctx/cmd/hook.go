package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
	scerrors "github.com/Aman-CERP/sessionctx/internal/errors"
	"github.com/Aman-CERP/sessionctx/internal/hooks"
	"github.com/Aman-CERP/sessionctx/internal/recovery"
	"github.com/Aman-CERP/sessionctx/internal/ui"
)

// autoHandoffSummary is used for the handoff saved at session end when the
// checkpoint has no summary of its own.
const autoHandoffSummary = "Saved automatically at session end"

func newHookCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Entry points for agent lifecycle hooks",
		Long: `Entry points called by agent hooks.

Hook commands always exit 0 and never write diagnostics to stdout or stderr,
so a failure here can never interrupt the agent. Use --debug to log to
~/.session-context/logs/ instead.`,
	}

	cmd.AddCommand(newHookTrackCmd(opts))
	cmd.AddCommand(newHookSessionStartCmd(opts))
	cmd.AddCommand(newHookSessionEndCmd(opts))

	return cmd
}

func newHookTrackCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "track [event] [tool-input-json] [tool-response-json]",
		Short: "Record a tool event in the rolling checkpoint",
		Long: `Record a tool event in the rolling checkpoint.

Recognized events: Write, Edit, MultiEdit, NotebookEdit, TodoWrite,
ExitPlanMode, AskUserQuestion. Other events are ignored.

When no tool input is given as an argument and stdin is not a terminal, the
full hook payload (tool_name, tool_input, tool_response, cwd) is read from stdin.`,
		Example: `  # PostToolUse hook, payload on stdin
  sessionctx hook track

  # Explicit arguments
  sessionctx hook track Edit '{"file_path":"/repo/main.go"}'`,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer recoverHook("track")
			runHookTrack(cmd, opts, args)
			return nil
		},
	}
}

func runHookTrack(cmd *cobra.Command, opts *globalOptions, args []string) {
	logger := slog.Default()

	var event, cwd string
	var input, extra []byte
	if len(args) > 0 {
		event = args[0]
	}
	if len(args) > 1 {
		input = []byte(args[1])
	}
	if len(args) > 2 {
		extra = []byte(args[2])
	}

	if input == nil {
		if p := readHookPayload(cmd.InOrStdin()); p != nil {
			if event == "" {
				event = p.ToolName
			}
			input, extra, cwd = p.ToolInput, p.ToolResponse, p.CWD
		}
	}
	if event == "" {
		logger.Debug("hook track called without an event")
		return
	}

	root, err := opts.projectRoot(cwd)
	if err != nil {
		logger.Warn("cannot resolve project root", slog.String("error", err.Error()))
		return
	}
	store, err := openStore()
	if err != nil {
		logger.Warn("cannot open store", slog.String("error", err.Error()))
		return
	}

	if _, err := hooks.NewTracker(store, logger).Track(root, event, input, extra); err != nil {
		logger.Warn("tool event not recorded",
			append([]any{slog.String("tool", event)}, scerrors.LogAttrs(err)...)...)
	}
}

func newHookSessionStartCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "session-start",
		Short: "Print recovered context for a new session",
		Long: `Print recovered context for a new session.

With --format json (default) the output is the SessionStart hook response
carrying the context as additionalContext. With --format text the markdown is
printed as is. Nothing is printed when there is nothing to recover.`,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer recoverHook("session-start")
			runHookSessionStart(cmd, opts, format)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, text")

	return cmd
}

func runHookSessionStart(cmd *cobra.Command, opts *globalOptions, format string) {
	logger := slog.Default()

	var cwd string
	if p := readHookPayload(cmd.InOrStdin()); p != nil {
		cwd = p.CWD
		logger.Debug("session start", slog.String("source", p.Source))
	}

	root, err := opts.projectRoot(cwd)
	if err != nil {
		logger.Warn("cannot resolve project root", slog.String("error", err.Error()))
		return
	}
	store, err := openStore()
	if err != nil {
		logger.Warn("cannot open store", slog.String("error", err.Error()))
		return
	}

	prompt, err := recovery.NewAssembler(store, logger).Build(cmd.Context(), root, true)
	if err != nil {
		logger.Warn("recovery failed", slog.String("error", err.Error()))
		return
	}
	if prompt == "" {
		return
	}

	out := cmd.OutOrStdout()
	if format == "text" {
		_, _ = io.WriteString(out, prompt)
		return
	}
	data, err := recovery.SessionStartPayload(prompt)
	if err != nil {
		logger.Warn("cannot encode hook output", slog.String("error", err.Error()))
		return
	}
	_, _ = fmt.Fprintln(out, string(data))
}

func newHookSessionEndCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session-end",
		Short: "Save unsaved progress as a handoff",
		Long: `Save unsaved progress as a handoff.

When the rolling checkpoint changed after the newest handoff of the project,
it is saved as a new handoff so the next session leads with it. Expired
handoffs are pruned either way.`,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer recoverHook("session-end")
			runHookSessionEnd(cmd, opts)
			return nil
		},
	}
}

func runHookSessionEnd(cmd *cobra.Command, opts *globalOptions) {
	logger := slog.Default()

	var cwd string
	if p := readHookPayload(cmd.InOrStdin()); p != nil {
		cwd = p.CWD
	}

	root, err := opts.projectRoot(cwd)
	if err != nil {
		logger.Warn("cannot resolve project root", slog.String("error", err.Error()))
		return
	}
	store, err := openStore()
	if err != nil {
		logger.Warn("cannot open store", slog.String("error", err.Error()))
		return
	}

	h, err := saveSessionEnd(store, root)
	switch {
	case err != nil:
		logger.Warn("session end handoff failed", scerrors.LogAttrs(err)...)
	case h != nil:
		logger.Debug("session end handoff saved", slog.String("id", h.ID))
	default:
		if n, err := store.Prune(root); err != nil {
			logger.Warn("prune failed", slog.String("error", err.Error()))
		} else if n > 0 {
			logger.Debug("pruned handoffs", slog.Int("count", n))
		}
	}
}

// saveSessionEnd creates a handoff when the rolling checkpoint holds progress
// newer than the latest handoff. It returns nil when nothing needed saving.
func saveSessionEnd(store *checkpoint.Store, root string) (*checkpoint.Handoff, error) {
	cp, err := store.Get(root)
	if err != nil || cp == nil {
		return nil, err
	}

	list, err := store.ListHandoffs(root)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 && !list[0].Updated.Before(cp.Updated) {
		return nil, nil
	}

	var fields checkpoint.HandoffFields
	if cp.Context.Summary == "" {
		fields.Summary = autoHandoffSummary
	}
	return store.CreateHandoff(root, fields)
}

// readHookPayload reads a hook payload from r unless r is a terminal.
// Unreadable payloads are logged and ignored.
func readHookPayload(r io.Reader) *hooks.Payload {
	if r == nil || ui.IsInteractive(r) {
		return nil
	}
	p, err := hooks.ReadPayload(r)
	if err != nil {
		slog.Debug("ignoring hook payload", slog.String("error", err.Error()))
		return nil
	}
	return p
}

// recoverHook keeps a hook from failing the agent on a panic.
func recoverHook(name string) {
	if r := recover(); r != nil {
		slog.Error("hook panicked", slog.String("hook", name), slog.Any("panic", r))
	}
}
