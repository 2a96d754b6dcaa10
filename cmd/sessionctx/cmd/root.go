// Package cmd provides the CLI commands for sessionctx.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
	"github.com/Aman-CERP/sessionctx/internal/config"
	"github.com/Aman-CERP/sessionctx/internal/logging"
	"github.com/Aman-CERP/sessionctx/pkg/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	debug bool
	root  string

	loggingCleanup func()
}

// NewRootCmd creates the root command for the sessionctx CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "sessionctx",
		Short: "Session checkpoints and handoffs for AI coding agents",
		Long: `sessionctx keeps a rolling checkpoint of what an AI coding agent is doing
in a project (task, touched files, todos, decisions, plan) and lets the agent
save explicit handoffs for the next session.

Agent hooks call 'sessionctx hook ...' to record tool events and to inject
recovered context at session start. 'sessionctx serve' exposes the same
state to MCP clients.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("sessionctx version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.session-context/logs/")
	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "Project root (default: hook payload cwd, then working directory)")

	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		env := config.LoadEnv()
		opts.loggingCleanup = logging.Init(opts.debug, env.LogLevel)
		if opts.debug {
			slog.Debug("Debug logging enabled",
				slog.String("log_file", logging.DefaultLogPath()),
				slog.String("version", version.Version))
		}
		return nil
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		if opts.loggingCleanup != nil {
			opts.loggingCleanup()
			opts.loggingCleanup = nil
		}
		return nil
	}

	cmd.AddCommand(newHookCmd(opts))
	cmd.AddCommand(newHandoffCmd(opts))
	cmd.AddCommand(newCheckpointCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLogsCmd())

	return cmd
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// projectRoot resolves the project root: --root, then fallback (usually the
// hook payload's cwd), then the working directory.
func (o *globalOptions) projectRoot(fallback string) (string, error) {
	root := o.root
	if root == "" {
		root = fallback
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// openStore opens the checkpoint store at the configured storage directory.
func openStore() (*checkpoint.Store, error) {
	return checkpoint.NewStore(checkpoint.StoreConfig{Logger: slog.Default()})
}
