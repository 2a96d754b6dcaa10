package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
	"github.com/Aman-CERP/sessionctx/internal/output"
	"github.com/Aman-CERP/sessionctx/internal/recovery"
)

func newCheckpointCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect the rolling checkpoint",
	}

	cmd.AddCommand(newCheckpointShowCmd(opts))
	cmd.AddCommand(newCheckpointHashCmd(opts))

	return cmd
}

func newCheckpointShowCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the rolling checkpoint of the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := opts.projectRoot("")
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			cp, err := store.Get(root)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if jsonOutput {
				if cp == nil {
					return out.JSON(nil)
				}
				return out.JSON(cp)
			}
			if cp == nil {
				out.Warning("No current checkpoint for " + root)
				return nil
			}
			out.Text(fmt.Sprintf("# Checkpoint %s\n\nUpdated %s\n", cp.ID,
				cp.Updated.Local().Format("2006-01-02 15:04")))
			out.Text(recovery.FormatRecord(cp))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newCheckpointHashCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash [path]",
		Short: "Print the project hash used to name stored files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fallback string
			if len(args) == 1 {
				fallback = args[0]
			}
			root, err := opts.projectRoot(fallback)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), checkpoint.ProjectHash(root))
			return err
		},
	}
}
