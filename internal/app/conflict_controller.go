package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/monosync/internal/core/conflict"
	"github.com/example/monosync/internal/core/plan"
	"github.com/example/monosync/internal/core/syncerr"
	"github.com/example/monosync/internal/ports/secondary"
)

// ConflictController runs the apply ladder and escalates what it cannot apply.
type ConflictController struct {
	vcs        secondary.VersionControl
	log        secondary.ConflictLog
	automation bool
	logger     *slog.Logger
	now        func() time.Time
}

// NewConflictController creates a new ConflictController.
func NewConflictController(vcs secondary.VersionControl, log secondary.ConflictLog, automation bool, logger *slog.Logger) *ConflictController {
	return &ConflictController{
		vcs:        vcs,
		log:        log,
		automation: automation,
		logger:     logger,
		now:        time.Now,
	}
}

// Apply runs the ladder: a strict index apply, then a three-way merge.
// The result is Applied, AppliedWithConflictMarkers or Rejected.
func (c *ConflictController) Apply(ctx context.Context, patch secondary.Patch) (secondary.ApplyOutcome, error) {
	out, err := c.vcs.ApplyPatch(ctx, patch, secondary.ApplyStrict)
	if err != nil {
		return secondary.Rejected, syncerr.E("apply.strict", syncerr.Other, err)
	}
	if out == secondary.Applied {
		return out, nil
	}

	c.logger.Debug("strict apply rejected; trying three-way merge", "commit", plan.Abbrev(patch.To))
	out, err = c.vcs.ApplyPatch(ctx, patch, secondary.ApplyThreeWay)
	if err != nil {
		return secondary.Rejected, syncerr.E("apply.three-way", syncerr.Other, err)
	}
	return out, nil
}

// Escalation returns what happens to a conflicted commit in this run.
func (c *ConflictController) Escalation() conflict.Escalation {
	return conflict.Escalate(c.automation)
}

// ForceCommit records a conflicted commit in automation mode. The tree as left
// by the three-way merge is committed with the original provenance, a tagged
// subject and a note. When the merge left nothing to commit only the log entry
// is written. It returns the new commit id, or "" when nothing was committed.
func (c *ConflictController) ForceCommit(ctx context.Context, source secondary.CommitRecord, patch secondary.Patch, outcome secondary.ApplyOutcome) (string, error) {
	const op syncerr.Op = "conflict.force-commit"
	detected := c.now().UTC()

	var newID string
	if outcome == secondary.AppliedWithConflictMarkers {
		if err := c.vcs.StageTracked(ctx); err != nil {
			return "", syncerr.E(op, syncerr.Other, err)
		}
		staged, err := c.vcs.HasStagedChanges(ctx)
		if err != nil {
			return "", syncerr.E(op, syncerr.Other, err)
		}
		if staged {
			newID, err = c.vcs.CommitIndex(ctx, provenance(source, conflict.TagMessage(source.Message)))
			if err != nil {
				return "", syncerr.E(op, syncerr.Other, err)
			}
		}
	}
	if newID == "" {
		if err := c.vcs.ResetHard(ctx); err != nil {
			return "", syncerr.E(op, syncerr.Other, err)
		}
	}

	note := conflict.Note{
		SourceCommit: source.ID,
		Subject:      source.Subject(),
		Files:        patch.Paths(),
		Rejected:     newID == "",
		DetectedAt:   detected,
	}
	if newID != "" {
		body, err := note.Render()
		if err != nil {
			return "", syncerr.E(op, syncerr.Other, err)
		}
		if err := c.vcs.AddNote(ctx, conflict.NotesRef, newID, body); err != nil {
			return "", syncerr.E(op, syncerr.Other, err)
		}
	}

	summary := fmt.Sprintf("committed with conflict markers as %s", plan.Abbrev(newID))
	if newID == "" {
		summary = "three-way merge rejected; no change committed"
	}
	entry := conflict.LogEntry{
		CommitID:  source.ID,
		Subject:   source.Subject(),
		Timestamp: detected,
		Note:      summary,
	}
	if err := c.log.Append(ctx, entry); err != nil {
		return "", syncerr.E(op, syncerr.State, err)
	}

	c.logger.Warn("forced conflict resolution", "commit", plan.Abbrev(source.ID), "subject", source.Subject(), "result", summary)
	return newID, nil
}

func provenance(source secondary.CommitRecord, message string) secondary.CommitRequest {
	return secondary.CommitRequest{
		Message:       message,
		AuthorName:    source.AuthorName,
		AuthorEmail:   source.AuthorEmail,
		AuthorTime:    source.AuthorTime,
		CommitterTime: source.CommitterTime,
	}
}
