// Package cli provides the cobra commands of the monosync application.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/monosync/internal/clierr"
	"github.com/example/monosync/internal/config"
	"github.com/example/monosync/internal/core/syncflow"
	"github.com/example/monosync/internal/wire"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose      bool
	quiet        bool
	debug        bool
	dryRun       bool
	remote       string
	mainBranch   string
	markerBranch string
	trackingRef  string
	mirrorBranch string
	exportBranch string
	target       string
	automation   bool
	pushMain     bool
}

var globals globalOptions

// BindGlobalFlags registers the persistent flags on the root command.
func BindGlobalFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	f.BoolVarP(&globals.verbose, "verbose", "v", false, "Show each phase as it runs")
	f.BoolVarP(&globals.quiet, "quiet", "q", false, "Only print errors")
	f.BoolVar(&globals.debug, "debug", false, "Log every git command")
	f.BoolVarP(&globals.dryRun, "dry-run", "n", false, "Compute and print the plan without changing anything")
	f.StringVar(&globals.remote, "remote", "", "Remote that hosts the monorepo (default origin)")
	f.StringVar(&globals.mainBranch, "main-branch", "", "Published branch to export (default main)")
	f.StringVar(&globals.markerBranch, "marker-branch", "", "Branch that records the last exported commit")
	f.StringVar(&globals.trackingRef, "tracking-ref", "", "Ref where the bridge keeps the target's history")
	f.StringVar(&globals.mirrorBranch, "mirror-branch", "", "Local branch mirroring the target system")
	f.StringVar(&globals.exportBranch, "export-branch", "", "Scratch branch used while exporting")
	f.StringVar(&globals.target, "target", "", "Target system: p4 or svn")
	f.BoolVar(&globals.automation, "automation", false, "Commit conflicts with markers instead of halting")
	f.BoolVar(&globals.pushMain, "push-main", false, "Push the main branch after merging the mirror back")

	root.SilenceUsage = true
	root.SilenceErrors = true
}

// applyFlags layers the flags the user actually set over cfg.
func applyFlags(cmd *cobra.Command) func(*config.Config) {
	changed := cmd.Flags().Changed
	return func(cfg *config.Config) {
		strs := []struct {
			flag string
			dst  *string
			val  string
		}{
			{"remote", &cfg.Remote, globals.remote},
			{"main-branch", &cfg.MainBranch, globals.mainBranch},
			{"marker-branch", &cfg.MarkerBranch, globals.markerBranch},
			{"tracking-ref", &cfg.TrackingRef, globals.trackingRef},
			{"mirror-branch", &cfg.MirrorBranch, globals.mirrorBranch},
			{"export-branch", &cfg.ExportBranch, globals.exportBranch},
		}
		for _, s := range strs {
			if changed(s.flag) {
				*s.dst = s.val
			}
		}
		if changed("target") {
			cfg.Target = config.Target(globals.target)
			if !changed("tracking-ref") {
				cfg.TrackingRef = ""
			}
		}
		if changed("automation") {
			cfg.Automation = globals.automation
		}
		if changed("push-main") {
			cfg.PushMain = globals.pushMain
		}
		cfg.Simulate = globals.dryRun
		cfg.Verbose = globals.verbose
		cfg.Quiet = globals.quiet
		cfg.Debug = globals.debug
	}
}

// newLogger builds the stderr logger for the verbosity flags.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case globals.debug:
		level = slog.LevelDebug
	case globals.verbose:
		level = slog.LevelInfo
	case globals.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// buildApp wires the application for a command. The caller must Close it.
func buildApp(ctx context.Context, cmd *cobra.Command) (*wire.Application, error) {
	var out, progress io.Writer = cmd.OutOrStdout(), cmd.OutOrStdout()
	if globals.quiet {
		out, progress = io.Discard, io.Discard
	}
	return wire.Build(ctx, wire.Options{
		Apply:    applyFlags(cmd),
		Out:      out,
		Progress: progress,
		Logger:   newLogger(os.Stderr),
	})
}

// exitStatus turns an export status into the command's error.
func exitStatus(status syncflow.Status) error {
	if status == syncflow.StatusOK {
		return nil
	}
	return clierr.Status(int(status))
}
