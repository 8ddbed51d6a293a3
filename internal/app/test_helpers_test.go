package app

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/example/monosync/internal/adapters/memory"
	"github.com/example/monosync/internal/config"
	"github.com/example/monosync/internal/ports/primary"
)

// fixture wires a SyncService to the in-memory repository, remote and target.
type fixture struct {
	t       *testing.T
	repo    *memory.Repo
	state   *memory.StateStore
	log     *memory.ConflictLog
	journal *memory.RunJournal
	cfg     config.Config
	base    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.NewRepo()
	return &fixture{
		t:       t,
		repo:    repo,
		state:   &memory.StateStore{},
		log:     &memory.ConflictLog{},
		journal: &memory.RunJournal{},
		cfg:     config.Default().Resolved(),
		base:    repo.Ref("refs/heads/main"),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func (f *fixture) service() *SyncService {
	return NewSyncService(f.cfg, SyncServiceDeps{
		VCS:         f.repo,
		State:       f.state,
		ConflictLog: f.log,
		Journal:     f.journal,
		Logger:      testLogger(),
	})
}

// targetAt starts the target system as a copy of the given monorepo commit.
func (f *fixture) targetAt(id string) {
	f.repo.InitTarget(f.cfg.TrackingRef, id)
}

// root is the initial commit of main.
func (f *fixture) root() string {
	return f.base
}

func (f *fixture) commit(path, content, message string) string {
	return f.repo.CommitOn("main", map[string]*string{path: memory.Str(content)}, message)
}

func (f *fixture) publish() {
	f.repo.Publish("main")
}

func (f *fixture) export() *primary.ExportResponse {
	f.t.Helper()
	resp, err := f.service().Export(context.Background())
	if err != nil {
		f.t.Fatalf("Export() error = %v", err)
	}
	return resp
}

func (f *fixture) marker() string {
	return f.repo.RemoteHead(f.cfg.MarkerBranch)
}

func (f *fixture) revisions() int {
	return len(f.repo.TargetRevisions())
}

func (f *fixture) publishMarker(id string) {
	f.t.Helper()
	ctx := context.Background()
	if err := f.repo.PushRef(ctx, f.cfg.Remote, id, f.cfg.MarkerRef()); err != nil {
		f.t.Fatalf("PushRef() error = %v", err)
	}
}

func (f *fixture) called(prefix string) bool {
	return slices.ContainsFunc(f.repo.Calls, func(c string) bool {
		return strings.HasPrefix(c, prefix)
	})
}

func planIDs(resp *primary.ExportResponse) []string {
	ids := make([]string, 0, len(resp.Plan))
	for _, p := range resp.Plan {
		ids = append(ids, p.ID)
	}
	return ids
}
