package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/example/monosync/internal/core/conflict"
	"github.com/example/monosync/internal/core/syncerr"
	"github.com/example/monosync/internal/ports/secondary"
)

// StateStore is an in-memory secondary.OperationStateStore.
type StateStore struct {
	mu    sync.Mutex
	state *secondary.OperationState
	Saves int
}

var _ secondary.OperationStateStore = (*StateStore)(nil)

func cloneState(s *secondary.OperationState) *secondary.OperationState {
	c := *s
	c.Remaining = slices.Clone(s.Remaining)
	return &c
}

func (s *StateStore) Save(ctx context.Context, state *secondary.OperationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = cloneState(state)
	s.Saves++
	return nil
}

func (s *StateStore) Load(ctx context.Context) (*secondary.OperationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, syncerr.ErrNoOperation
	}
	return cloneState(s.state), nil
}

func (s *StateStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	return nil
}

// ConflictLog is an in-memory secondary.ConflictLog.
type ConflictLog struct {
	mu      sync.Mutex
	entries []conflict.LogEntry

	// FailAppend, when set, is returned by Append.
	FailAppend error
}

var _ secondary.ConflictLog = (*ConflictLog)(nil)

func (l *ConflictLog) Append(ctx context.Context, entry conflict.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailAppend != nil {
		return l.FailAppend
	}
	l.entries = append(l.entries, entry)
	return nil
}

func (l *ConflictLog) Entries(ctx context.Context) ([]conflict.LogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries), nil
}

// RunJournal is an in-memory secondary.RunJournal.
type RunJournal struct {
	mu   sync.Mutex
	runs []*secondary.RunRecord
}

var _ secondary.RunJournal = (*RunJournal)(nil)

func (j *RunJournal) Start(ctx context.Context, run *secondary.RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	c := *run
	j.runs = append(j.runs, &c)
	return nil
}

func (j *RunJournal) Finish(ctx context.Context, run *secondary.RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i, r := range j.runs {
		if r.ID == run.ID {
			c := *run
			j.runs[i] = &c
			return nil
		}
	}
	c := *run
	j.runs = append(j.runs, &c)
	return nil
}

// List returns runs newest first.
func (j *RunJournal) List(ctx context.Context, limit int) ([]*secondary.RunRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*secondary.RunRecord, 0, len(j.runs))
	for i := len(j.runs) - 1; i >= 0; i-- {
		c := *j.runs[i]
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
