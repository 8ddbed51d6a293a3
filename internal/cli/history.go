package cli

import (
	"github.com/spf13/cobra"
)

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs",
		Long:  `List the runs recorded in the journal under .git/monosync, newest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			_, err = application.Sync.History(ctx, limit)
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}
