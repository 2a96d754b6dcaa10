package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sessionctx/internal/logging"
)

func newLogsCmd() *cobra.Command {
	var (
		lines   int
		level   string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the debug log",
		Long: `Show the last entries of the debug log written by commands run with --debug.`,
		Example: `  sessionctx logs
  sessionctx logs -n 100 --level warn`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := logging.FindLogFile(logFile)
			if err != nil {
				return err
			}
			entries, err := logging.Tail(path, lines, level)
			if err != nil {
				return err
			}
			logging.Print(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of entries to show")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&logFile, "file", "", "Log file path (default: ~/.session-context/logs/sessionctx.log)")

	return cmd
}
