package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sessionctx/internal/mcp"
	"github.com/Aman-CERP/sessionctx/internal/recovery"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Run the MCP server over stdio for the project at --root (default: the
working directory).

stdout carries JSON-RPC only; logs go to the debug log file when --debug is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := opts.projectRoot("")
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}

			logger := slog.Default()
			srv, err := mcp.NewServer(store, recovery.NewAssembler(store, logger), root, logger)
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			return srv.Serve(cmd.Context())
		},
	}
}
