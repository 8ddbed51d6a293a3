// Package primary defines the primary ports (driving adapters) for the application.
package primary

import (
	"context"
	"time"

	"github.com/example/monosync/internal/core/syncflow"
)

// SyncService drives the synchronization engine.
type SyncService interface {
	Pull(ctx context.Context, req PullRequest) (*PullResponse, error)
	Export(ctx context.Context) (*ExportResponse, error)
	Continue(ctx context.Context) (*ExportResponse, error)
	Abort(ctx context.Context) (*AbortResponse, error)
	Status(ctx context.Context) (*StatusResponse, error)
	History(ctx context.Context, limit int) ([]*Run, error)
}

// ProgressReporter receives human-readable progress while a command runs.
type ProgressReporter interface {
	Phase(phase syncflow.Phase, message string)
	Commit(result CommitResult)
}

// PullRequest contains parameters for a pull.
type PullRequest struct {
	// Merge merges the refreshed mirror into the main branch when it is checked out.
	Merge bool
}

// PullResponse is the result of a pull.
type PullResponse struct {
	MirrorTip string
	// Pending is the number of commits awaiting export, or -1 when unknown.
	Pending  int
	Merged   bool
	Warnings []string
}

// PlannedCommit is one commit of an export plan.
type PlannedCommit struct {
	ID      string
	Subject string
	Author  string
}

// CommitResult is the outcome of exporting one commit.
type CommitResult struct {
	ID       string
	Subject  string
	Outcome  syncflow.Outcome
	NewID    string // commit created on the export branch, if any
	Resolved bool   // conflict resolved by the operator on continue
}

// ExportResponse is the result of export, continue or a dry run.
type ExportResponse struct {
	Status          syncflow.Status
	Simulated       bool
	NothingToExport bool
	Halted          bool
	HaltedAt        *PlannedCommit
	MarkerBefore    string
	MarkerAfter     string
	Plan            []PlannedCommit
	Results         []CommitResult
	Submitted       bool
	Warnings        []string
}

// Counts returns applied, skipped and conflicted totals.
func (r *ExportResponse) Counts() (applied, skipped, conflicted int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case syncflow.Applied:
			applied++
		case syncflow.Skipped:
			skipped++
		case syncflow.Conflicted:
			conflicted++
		}
	}
	return applied, skipped, conflicted
}

// AbortResponse is the result of an abort.
type AbortResponse struct {
	RestoredBranch string
	DeletedBranch  string
}

// StatusResponse is a read-only view of the sync state.
type StatusResponse struct {
	Marker            string
	MarkerMissing     bool
	Tip               string
	MirrorTip         string
	Pending           int
	InProgress        bool
	RemainingInPause  int
	PausedAt          string
	ConflictLogLength int
}

// Run is one entry of the run history.
type Run struct {
	ID           string
	Command      string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       int
	MarkerBefore string
	MarkerAfter  string
	Applied      int
	Skipped      int
	Conflicted   int
	Error        string
}
