package cli

import (
	"github.com/spf13/cobra"
)

// PullCmd returns the pull command
func PullCmd() *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:     "pull",
		Aliases: []string{"update"},
		Short:   "Bring the target system's changes into the monorepo",
		Long: `Fetch the remote, import new target revisions into the mirror branch
and report how many monorepo commits are waiting to be exported.

With --merge, the mirror is merged into the main branch when it is checked out.

Examples:
  monosync pull
  monosync pull --merge`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			_, err = application.Sync.Pull(ctx, merge)
			return err
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "Merge the mirror into the main branch")

	return cmd
}
