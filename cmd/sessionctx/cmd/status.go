package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sessionctx/internal/checkpoint"
	"github.com/Aman-CERP/sessionctx/internal/config"
	"github.com/Aman-CERP/sessionctx/internal/ui"
	"github.com/Aman-CERP/sessionctx/internal/vcs"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show checkpoint and handoff status of the current project",
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

			info, err := collectStatus(store, root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := ui.NewStatusRenderer(out, !ui.UseColor(out))
			if jsonOutput {
				return r.RenderJSON(info)
			}
			return r.Render(info)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func collectStatus(store *checkpoint.Store, root string) (ui.StatusInfo, error) {
	cfg := config.Get()
	info := ui.StatusInfo{
		ProjectRoot: root,
		ProjectHash: checkpoint.ProjectHash(root),
		Branch:      vcs.CurrentBranch(root),
		StorageDir:  store.Dir(),
		Tracking:    cfg.Tracking.Enabled,
	}

	cp, err := store.Get(root)
	if err != nil {
		return info, err
	}
	info.Checkpoint = ui.NewCheckpointStatus(cp)

	list, err := store.ListHandoffs(root)
	if err != nil {
		return info, err
	}
	info.Handoffs = list
	if info.Handoffs == nil {
		info.Handoffs = []checkpoint.HandoffSummary{}
	}

	marker, err := store.ReadMarker(root)
	if err != nil {
		slog.Debug("marker unreadable", slog.String("error", err.Error()))
	} else if marker != nil {
		info.PendingHandoff = marker.HandoffID
	}
	return info, nil
}
