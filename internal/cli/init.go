package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/monosync/internal/config"
	"github.com/example/monosync/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the repository config file",
		Long: `Write .monosync.yaml at the top level of the repository from the
defaults, the user config and the flags given on the command line.

Examples:
  monosync init --target svn
  monosync init --main-branch trunk --automation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, info, err := wire.LoadConfig(cmd.Context(), wire.Options{Apply: applyFlags(cmd)})
			if err != nil {
				return err
			}

			path := filepath.Join(info.TopLevel, config.RepoConfigFile)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check %s: %w", path, err)
			}

			if err := config.Save(info.TopLevel, cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Wrote %s\n", path)
			fmt.Fprintf(out, "  Target:       %s (tracking %s)\n", cfg.Target, cfg.TrackingRef)
			fmt.Fprintf(out, "  Main branch:  %s/%s\n", cfg.Remote, cfg.MainBranch)
			fmt.Fprintf(out, "  Marker:       %s\n", cfg.MarkerBranch)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  monosync pull")
			fmt.Fprintln(out, "  monosync push --dry-run")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
