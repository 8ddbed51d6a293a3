package app

import (
	"context"

	"github.com/example/monosync/internal/core/plan"
	"github.com/example/monosync/internal/core/syncerr"
	"github.com/example/monosync/internal/core/syncflow"
	"github.com/example/monosync/internal/ports/secondary"
)

// ExportResult is the outcome of replaying one commit onto the export branch.
type ExportResult struct {
	Outcome syncflow.Outcome
	NewID   string
	Source  secondary.CommitRecord
	Patch   secondary.Patch
	// Apply is the ladder's last answer; meaningful when Outcome is Conflicted.
	Apply secondary.ApplyOutcome
}

// PatchExporter turns one monorepo commit into a content-only patch and
// replays it on the export branch.
type PatchExporter struct {
	vcs       secondary.VersionControl
	conflicts *ConflictController
}

// NewPatchExporter creates a new PatchExporter.
func NewPatchExporter(vcs secondary.VersionControl, conflicts *ConflictController) *PatchExporter {
	return &PatchExporter{vcs: vcs, conflicts: conflicts}
}

// ExportCommit replays entry. The commit is looked up by id and diffed
// against its own first parent, never against the previous plan entry.
func (e *PatchExporter) ExportCommit(ctx context.Context, entry plan.Entry) (ExportResult, error) {
	const op syncerr.Op = "export.commit"

	source, err := e.vcs.Commit(ctx, entry.ID)
	if err != nil {
		return ExportResult{}, syncerr.E(op, syncerr.Other, err)
	}
	patch, err := e.vcs.Diff(ctx, source.FirstParentID(), source.ID)
	if err != nil {
		return ExportResult{}, syncerr.E(op, syncerr.Other, err)
	}
	result := ExportResult{Source: source, Patch: patch}

	if patch.Empty() {
		result.Outcome = syncflow.Skipped
		return result, nil
	}

	applied, err := e.conflicts.Apply(ctx, patch)
	if err != nil {
		return ExportResult{}, err
	}
	result.Apply = applied
	if applied != secondary.Applied {
		result.Outcome = syncflow.Conflicted
		return result, nil
	}

	staged, err := e.vcs.HasStagedChanges(ctx)
	if err != nil {
		return ExportResult{}, syncerr.E(op, syncerr.Other, err)
	}
	if !staged {
		// The change is already present in the mirror.
		if err := e.vcs.ResetHard(ctx); err != nil {
			return ExportResult{}, syncerr.E(op, syncerr.Other, err)
		}
		result.Outcome = syncflow.Skipped
		return result, nil
	}

	result.NewID, err = e.vcs.CommitIndex(ctx, provenance(source, source.Message))
	if err != nil {
		return ExportResult{}, syncerr.E(op, syncerr.Other, err)
	}
	result.Outcome = syncflow.Applied
	return result, nil
}
