package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/monosync/internal/ports/primary"
)

// PushCmd returns the push command
func PushCmd() *cobra.Command {
	var resume, abort bool

	cmd := &cobra.Command{
		Use:     "push",
		Aliases: []string{"export"},
		Short:   "Export new monorepo commits to the target system",
		Long: `Replay every first-parent commit published after the marker onto the
mirror, one linear commit each, submit them to the target system and move
the marker forward.

A conflict halts the export unless --automation is set, in which case the
commit is made with conflict markers, tagged and logged.

Exit status is 0 on success, 1 on failure or halt, 2 when conflicts were
committed with markers.

Examples:
  monosync push
  monosync push --dry-run
  monosync push --continue
  monosync push --abort`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			if abort {
				_, err := application.Sync.Abort(ctx)
				return err
			}

			var resp *primary.ExportResponse
			if resume {
				resp, err = application.Sync.Continue(ctx)
			} else {
				resp, err = application.Sync.Export(ctx)
			}
			if err != nil {
				return err
			}
			return exitStatus(resp.Status)
		},
	}

	cmd.Flags().BoolVar(&resume, "continue", false, "Resume a halted export")
	cmd.Flags().BoolVar(&abort, "abort", false, "Discard a halted export")
	cmd.MarkFlagsMutuallyExclusive("continue", "abort")

	return cmd
}
