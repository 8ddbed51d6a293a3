package secondary

import (
	"context"
	"time"

	"github.com/example/monosync/internal/core/conflict"
)

// OperationState is the durable record of an in-flight export.
type OperationState struct {
	OriginalBranch string
	BaseID         string
	TipID          string
	Remaining      []string
	CurrentCommit  string
	HadConflicts   bool
	ExportHead     string
}

// OperationStateStore persists the operation state.
// Load returns syncerr.ErrNoOperation when nothing is saved.
type OperationStateStore interface {
	Save(ctx context.Context, state *OperationState) error
	Load(ctx context.Context) (*OperationState, error)
	Clear(ctx context.Context) error
}

// ConflictLog is the append-only record of force-committed conflicts.
type ConflictLog interface {
	Append(ctx context.Context, entry conflict.LogEntry) error
	Entries(ctx context.Context) ([]conflict.LogEntry, error)
}

// RunRecord is one invocation recorded in the run journal.
type RunRecord struct {
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

// RunJournal records the history of sync invocations.
type RunJournal interface {
	Start(ctx context.Context, run *RunRecord) error
	Finish(ctx context.Context, run *RunRecord) error
	List(ctx context.Context, limit int) ([]*RunRecord, error)
}
