package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/monosync/internal/cli"
	"github.com/example/monosync/internal/clierr"
	"github.com/example/monosync/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:     "monosync",
		Short:   "monosync - keep a git monorepo and a Perforce or Subversion depot in step",
		Version: version.String(),
		Long: `monosync exports the first-parent history of a published git branch to a
linear target system (Perforce via git-p4, Subversion via git-svn), one commit
per merge, and brings the target's own changes back into the monorepo.

A marker branch on the remote records the last exported commit, so every run
exports exactly what was published since.`,
	}
	cli.BindGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.PullCmd())
	rootCmd.AddCommand(cli.PushCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.HistoryCmd())
	rootCmd.AddCommand(cli.VersionCmd())

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !clierr.IsSilent(err) {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
	}
	stop()
	os.Exit(clierr.ExitCodeOf(err))
}
