// Package marker contains the pure business logic for the export marker.
// Guards are pure functions that evaluate preconditions without side effects.
package marker

import (
	"fmt"

	"github.com/example/monosync/internal/core/plan"
	"github.com/example/monosync/internal/core/syncerr"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Cause   error // sentinel describing the failure, nil when allowed
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return syncerr.E("marker.validate", syncerr.Marker, fmt.Errorf("%s: %w", r.Reason, r.Cause))
}

// ValidateContext holds the pre-fetched ancestry facts for a marker.
type ValidateContext struct {
	Position      string
	Tip           string
	IsAncestor    bool // Position is reachable from Tip through any parents
	OnFirstParent bool // Position is reachable from Tip through first parents only
}

// CanUseMarker evaluates whether a published marker may be used for planning.
// Rules:
// - the marker must be an ancestor of the tip
// - it must sit on the tip's first-parent chain, not inside merged-in history
func CanUseMarker(ctx ValidateContext) GuardResult {
	if ctx.Position == ctx.Tip {
		return GuardResult{Allowed: true}
	}

	if !ctx.IsAncestor {
		return GuardResult{
			Reason: fmt.Sprintf("marker %s is not an ancestor of %s; refusing to repair automatically",
				plan.Abbrev(ctx.Position), plan.Abbrev(ctx.Tip)),
			Cause: syncerr.ErrNotAncestor,
		}
	}

	if !ctx.OnFirstParent {
		return GuardResult{
			Reason: fmt.Sprintf("marker %s is reachable from %s only through a merged-in history; refusing to repair automatically",
				plan.Abbrev(ctx.Position), plan.Abbrev(ctx.Tip)),
			Cause: syncerr.ErrOffFirstParent,
		}
	}

	return GuardResult{Allowed: true}
}

// AdvanceContext holds the facts needed before moving the marker.
type AdvanceContext struct {
	Current       string
	Next          string
	OnFirstParent bool // Current is on the first-parent chain of Next
}

// CanAdvance checks the marker only ever moves forward along the first-parent chain.
func CanAdvance(ctx AdvanceContext) GuardResult {
	if ctx.Current == "" || ctx.Current == ctx.Next {
		return GuardResult{Allowed: true}
	}
	if !ctx.OnFirstParent {
		return GuardResult{
			Reason: fmt.Sprintf("cannot move marker from %s to %s: not a forward first-parent move",
				plan.Abbrev(ctx.Current), plan.Abbrev(ctx.Next)),
			Cause: syncerr.ErrOffFirstParent,
		}
	}
	return GuardResult{Allowed: true}
}
