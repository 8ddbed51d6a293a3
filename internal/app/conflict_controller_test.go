package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/example/monosync/internal/adapters/memory"
	"github.com/example/monosync/internal/core/conflict"
	"github.com/example/monosync/internal/ports/secondary"
)

func TestConflictController_Escalation(t *testing.T) {
	f := newFixture(t)
	if got := NewConflictController(f.repo, f.log, true, testLogger()).Escalation(); got != conflict.ForceCommit {
		t.Errorf("automation escalation = %v, want force-commit", got)
	}
	if got := NewConflictController(f.repo, f.log, false, testLogger()).Escalation(); got != conflict.Halt {
		t.Errorf("interactive escalation = %v, want halt", got)
	}
}

func TestConflictController_ForceCommitRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := NewConflictController(f.repo, f.log, true, testLogger())
	c.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	src := f.repo.CommitDetached(f.root(), map[string]*string{"README.md": memory.Str("theirs\n")}, "edit readme")
	source, _ := f.repo.Commit(ctx, src)
	patch, _ := f.repo.Diff(ctx, f.root(), src)
	before := f.repo.Ref("refs/heads/main")

	newID, err := c.ForceCommit(ctx, source, patch, secondary.Rejected)
	if err != nil {
		t.Fatalf("ForceCommit() error = %v", err)
	}
	if newID != "" {
		t.Errorf("ForceCommit() = %s, want no commit", newID)
	}
	if f.repo.Ref("refs/heads/main") != before {
		t.Error("a rejected merge must not move the branch")
	}
	entries, _ := f.log.Entries(ctx)
	if len(entries) != 1 || !strings.Contains(entries[0].Note, "rejected") {
		t.Errorf("log entries = %+v", entries)
	}
	if !entries[0].Timestamp.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("timestamp = %v", entries[0].Timestamp)
	}
	if len(f.repo.Notes(conflict.NotesRef)) != 0 {
		t.Error("no note without a commit")
	}
}

func TestConflictController_ApplyLadder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := NewConflictController(f.repo, f.log, false, testLogger())

	src := f.repo.CommitDetached(f.root(), map[string]*string{"README.md": memory.Str("theirs\n")}, "edit readme")
	patch, _ := f.repo.Diff(ctx, f.root(), src)
	f.commit("README.md", "ours\n", "local edit")

	out, err := c.Apply(ctx, patch)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out != secondary.AppliedWithConflictMarkers {
		t.Errorf("Apply() = %v, want applied-with-conflict-markers", out)
	}
	want := []string{"apply strict", "apply three-way"}
	var got []string
	for _, call := range f.repo.Calls {
		if strings.HasPrefix(call, "apply") {
			got = append(got, call)
		}
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("apply calls = %v, want %v", got, want)
	}
}
