package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
	"github.com/Aman-CERP/sessionctx/internal/output"
	"github.com/Aman-CERP/sessionctx/internal/recovery"
	"github.com/Aman-CERP/sessionctx/internal/ui"
)

func newHandoffCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handoff",
		Short: "Create, show, list and prune handoffs",
		Long: `Manage explicit handoffs.

A handoff is an immutable snapshot of the rolling checkpoint, optionally
annotated with a task, summary, next steps and decisions. The newest handoff
is offered first when the next session starts.`,
		Example: `  # Save a handoff before stopping
  sessionctx handoff create --summary "API done" --next "write docs"

  # Show the latest handoff of this project
  sessionctx handoff show --latest

  # List handoffs as JSON
  sessionctx handoff list --json`,
	}

	cmd.AddCommand(newHandoffCreateCmd(opts))
	cmd.AddCommand(newHandoffShowCmd(opts))
	cmd.AddCommand(newHandoffListCmd(opts))
	cmd.AddCommand(newHandoffPruneCmd(opts))

	return cmd
}

func newHandoffCreateCmd(opts *globalOptions) *cobra.Command {
	var (
		fields     checkpoint.HandoffFields
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save a handoff from the current checkpoint",
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

			h, err := store.CreateHandoff(root, fields)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if jsonOutput {
				return out.JSON(h)
			}
			out.Successf("Saved handoff %s", h.ID)
			out.Status("", "Task: "+h.Context.Task)
			return nil
		},
	}

	cmd.Flags().StringVar(&fields.Task, "task", "", "Task description (default: checkpoint task)")
	cmd.Flags().StringVar(&fields.Summary, "summary", "", "Progress summary")
	cmd.Flags().StringArrayVar(&fields.NextSteps, "next", nil, "Next step (repeatable)")
	cmd.Flags().StringArrayVar(&fields.Decisions, "decision", nil, "Decision made (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the handoff as JSON")

	return cmd
}

func newHandoffShowCmd(opts *globalOptions) *cobra.Command {
	var (
		latest      bool
		allProjects bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a handoff",
		Long: `Show a handoff by id, or the latest one with --latest (the default
when no id is given). The search is limited to the current project unless
--all-projects is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			read := checkpoint.ReadOptions{Latest: latest || len(args) == 0}
			if len(args) == 1 {
				read.ID = args[0]
			}
			if !allProjects {
				root, err := opts.projectRoot("")
				if err != nil {
					return err
				}
				read.ProjectHash = checkpoint.ProjectHash(root)
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			h, err := store.ReadHandoff(read)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if h == nil {
				if read.Latest {
					return fmt.Errorf("no handoffs found")
				}
				return fmt.Errorf("handoff %q not found", read.ID)
			}
			if jsonOutput {
				return out.JSON(h)
			}
			out.Text(fmt.Sprintf("# Handoff %s\n\nCreated %s in %s\n", h.ID,
				h.Created.Local().Format("2006-01-02 15:04"), h.Project.Root))
			out.Text(recovery.FormatRecord(&h.Checkpoint))
			return nil
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "Show the most recently updated handoff")
	cmd.Flags().BoolVar(&allProjects, "all-projects", false, "Search handoffs of every project")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newHandoffListCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List handoffs of the current project",
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
			list, err := store.ListHandoffs(root)
			if err != nil {
				return err
			}

			if jsonOutput {
				if list == nil {
					list = []checkpoint.HandoffSummary{}
				}
				return output.New(cmd.OutOrStdout()).JSON(list)
			}
			r := ui.NewStatusRenderer(cmd.OutOrStdout(), !ui.UseColor(cmd.OutOrStdout()))
			return r.RenderHandoffs(list)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newHandoffPruneCmd(opts *globalOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete expired handoffs",
		Long: `Delete handoffs whose TTL has passed. For the current project, handoffs
beyond checkpoints.maxStoredHandoffs are deleted as well. With --all, expired
handoffs of every project are deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			var n int
			if all {
				n, err = store.PruneAll()
			} else {
				root, rerr := opts.projectRoot("")
				if rerr != nil {
					return rerr
				}
				n, err = store.Prune(root)
			}
			if err != nil {
				return err
			}

			output.New(cmd.OutOrStdout()).Successf("Pruned %d handoff(s)", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Prune expired handoffs of every project")

	return cmd
}
