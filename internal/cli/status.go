package cli

import (
	"github.com/spf13/cobra"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the marker, pending commits and any export in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			_, err = application.Sync.Status(ctx)
			return err
		},
	}
}
