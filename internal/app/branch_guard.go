package app

import (
	"context"
	"log/slog"

	"github.com/example/monosync/internal/ports/secondary"
)

// guardOutcome decides how the export branch guard releases.
type guardOutcome int

const (
	guardFailure guardOutcome = iota
	guardSuccess
	guardPause
)

// branchGuard scopes the lifetime of the export branch.
//
// success: restore the original branch, delete the export branch.
// failure or cancellation: force back to the original branch, keep the export
// branch for inspection.
// pause: leave the operator on the export branch.
type branchGuard struct {
	vcs      secondary.VersionControl
	original string
	export   string
	logger   *slog.Logger
	outcome  guardOutcome
}

func newBranchGuard(vcs secondary.VersionControl, original, export string, logger *slog.Logger) *branchGuard {
	return &branchGuard{vcs: vcs, original: original, export: export, logger: logger}
}

func (g *branchGuard) succeed() { g.outcome = guardSuccess }
func (g *branchGuard) pause()   { g.outcome = guardPause }

// release runs with its own context so it still executes after cancellation.
// Cleanup problems are logged, never returned: they must not mask the result.
func (g *branchGuard) release() []string {
	ctx := context.Background()
	var warnings []string
	warn := func(msg string, err error) {
		g.logger.Warn(msg, "error", err)
		warnings = append(warnings, msg+": "+err.Error())
	}

	switch g.outcome {
	case guardPause:
		return nil
	case guardSuccess:
		if err := g.vcs.Checkout(ctx, g.original, false); err != nil {
			warn("failed to restore branch "+g.original, err)
			return warnings
		}
		if err := g.vcs.DeleteBranch(ctx, g.export); err != nil {
			warn("failed to delete export branch "+g.export, err)
		}
	case guardFailure:
		if err := g.vcs.Checkout(ctx, g.original, true); err != nil {
			warn("failed to restore branch "+g.original, err)
			return warnings
		}
		g.logger.Info("export branch kept for inspection", "branch", g.export)
	}
	return warnings
}
