// Package syncflow contains the pure state-machine rules of the synchronization
// engine: environment guards, the post-export finalize plan and status codes.
// This is part of the Functional Core - no I/O, only pure functions.
package syncflow

import (
	"fmt"

	"github.com/example/monosync/internal/core/syncerr"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an EnvironmentError if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return syncerr.E("environment.check", syncerr.Environment, fmt.Errorf("%s", r.Reason))
}

// EnvironmentContext holds the pre-fetched facts about the working copy.
type EnvironmentContext struct {
	InRepository bool
	AtTopLevel   bool
	Branch       string
	Detached     bool
	Clean        bool
	ExportBranch string
	// OnExportBranch flips the branch rule: continue runs on the export branch.
	OnExportBranch bool
}

// CanRun evaluates whether a sync command may start.
// Rules:
// - must be inside a repository, at its top level
// - must be on a real branch (not detached)
// - must not be on the export branch, except when resuming
// - the working tree must be clean
func CanRun(ctx EnvironmentContext) GuardResult {
	if !ctx.InRepository {
		return GuardResult{Reason: "not inside a git repository"}
	}
	if !ctx.AtTopLevel {
		return GuardResult{Reason: "must be run from the top level of the repository"}
	}
	if ctx.Detached || ctx.Branch == "" {
		return GuardResult{Reason: "HEAD is detached; check out a branch first"}
	}
	if ctx.OnExportBranch && ctx.Branch != ctx.ExportBranch {
		return GuardResult{Reason: fmt.Sprintf("must be on the export branch %s to continue (currently on %s)", ctx.ExportBranch, ctx.Branch)}
	}
	if !ctx.OnExportBranch && ctx.Branch == ctx.ExportBranch {
		return GuardResult{Reason: fmt.Sprintf("cannot run from the export branch %s", ctx.ExportBranch)}
	}
	if !ctx.Clean {
		return GuardResult{Reason: "working tree has uncommitted changes; commit or stash them first"}
	}
	return GuardResult{Allowed: true}
}
