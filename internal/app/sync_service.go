package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/monosync/internal/config"
	"github.com/example/monosync/internal/core/conflict"
	"github.com/example/monosync/internal/core/plan"
	"github.com/example/monosync/internal/core/syncerr"
	"github.com/example/monosync/internal/core/syncflow"
	"github.com/example/monosync/internal/ports/primary"
	"github.com/example/monosync/internal/ports/secondary"
)

// SyncService implements the primary.SyncService interface.
// It is the orchestrator: it sequences the components through one run and
// owns the export branch guard.
type SyncService struct {
	cfg       config.Config
	vcs       secondary.VersionControl
	state     secondary.OperationStateStore
	conflicts secondary.ConflictLog
	journal   secondary.RunJournal
	markers   *MarkerStore
	planner   *CommitPlanner
	exporter  *PatchExporter
	ladder    *ConflictController
	executor  EffectExecutor
	progress  primary.ProgressReporter
	logger    *slog.Logger
	now       func() time.Time
}

// SyncServiceDeps are the secondary ports a SyncService is built from.
// Journal and Progress are optional.
type SyncServiceDeps struct {
	VCS         secondary.VersionControl
	State       secondary.OperationStateStore
	ConflictLog secondary.ConflictLog
	Journal     secondary.RunJournal
	Progress    primary.ProgressReporter
	Logger      *slog.Logger
}

// NewSyncService creates a new SyncService with injected dependencies.
func NewSyncService(cfg config.Config, deps SyncServiceDeps) *SyncService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	progress := deps.Progress
	if progress == nil {
		progress = noopProgress{}
	}
	markers := NewMarkerStore(deps.VCS, cfg, logger)
	ladder := NewConflictController(deps.VCS, deps.ConflictLog, cfg.Automation, logger)
	return &SyncService{
		cfg:       cfg,
		vcs:       deps.VCS,
		state:     deps.State,
		conflicts: deps.ConflictLog,
		journal:   deps.Journal,
		markers:   markers,
		planner:   NewCommitPlanner(deps.VCS),
		exporter:  NewPatchExporter(deps.VCS, ladder),
		ladder:    ladder,
		executor:  NewEffectExecutor(deps.VCS, markers, deps.State, cfg, logger),
		progress:  progress,
		logger:    logger,
		now:       time.Now,
	}
}

var _ primary.SyncService = (*SyncService)(nil)

type noopProgress struct{}

func (noopProgress) Phase(syncflow.Phase, string) {}
func (noopProgress) Commit(primary.CommitResult)  {}

// ============================================================================
// Environment
// ============================================================================

// checkEnvironment runs the environment guard and returns the current branch.
func (s *SyncService) checkEnvironment(ctx context.Context, resuming bool) (string, error) {
	const op syncerr.Op = "environment.check"
	s.progress.Phase(syncflow.PhaseCheckEnvironment, "checking working copy")

	envCtx := syncflow.EnvironmentContext{
		ExportBranch:   s.cfg.ExportBranch,
		OnExportBranch: resuming,
	}
	info, err := s.vcs.Repository(ctx)
	if errors.Is(err, secondary.ErrNotRepository) {
		return "", syncflow.CanRun(envCtx).Error()
	}
	if err != nil {
		return "", syncerr.E(op, syncerr.Environment, err)
	}
	envCtx.InRepository = true
	envCtx.AtTopLevel = info.AtTopLevel

	if envCtx.Branch, envCtx.Detached, err = s.vcs.CurrentBranch(ctx); err != nil {
		return "", syncerr.E(op, syncerr.Environment, err)
	}
	if envCtx.Clean, err = s.vcs.IsClean(ctx); err != nil {
		return "", syncerr.E(op, syncerr.Environment, err)
	}
	if err := syncflow.CanRun(envCtx).Error(); err != nil {
		return "", err
	}
	return envCtx.Branch, nil
}

func (s *SyncService) fetch(ctx context.Context) error {
	s.progress.Phase(syncflow.PhaseFetchRemote, "fetching "+s.cfg.Remote)
	if err := s.vcs.Fetch(ctx, s.cfg.Remote); err != nil {
		return syncerr.E("remote.fetch", syncerr.Upstream, err)
	}
	return nil
}

// updateMirror syncs the target bridge and moves the mirror branch to the
// tracking ref. It returns the mirror tip.
func (s *SyncService) updateMirror(ctx context.Context) (string, error) {
	const op syncerr.Op = "mirror.update"

	if s.cfg.Simulate {
		s.progress.Phase(syncflow.PhaseUpdateMirror, "reading "+s.cfg.TrackingRef)
		id, err := s.vcs.ResolveRef(ctx, s.cfg.TrackingRef)
		if errors.Is(err, secondary.ErrRefNotFound) {
			return "", syncerr.E(op, syncerr.Configuration, fmt.Errorf("tracking ref %s not found", s.cfg.TrackingRef))
		}
		if err != nil {
			return "", syncerr.E(op, syncerr.Other, err)
		}
		return id, nil
	}

	s.progress.Phase(syncflow.PhaseUpdateMirror, fmt.Sprintf("syncing %s from %s", s.cfg.MirrorBranch, s.cfg.Target))
	err := s.vcs.RebaseMirror(ctx, s.cfg.MirrorBranch, s.cfg.TrackingRef)
	if errors.Is(err, secondary.ErrRefNotFound) {
		return "", syncerr.E(op, syncerr.Configuration,
			fmt.Errorf("tracking ref %s not found; clone the target into this repository first", s.cfg.TrackingRef))
	}
	if err != nil {
		return "", syncerr.E(op, syncerr.Upstream, err)
	}
	id, err := s.vcs.ResolveRef(ctx, config.BranchRef(s.cfg.MirrorBranch))
	if err != nil {
		return "", syncerr.E(op, syncerr.Other, err)
	}
	return id, nil
}

func (s *SyncService) remoteTip(ctx context.Context) (string, error) {
	tip, err := s.vcs.ResolveRef(ctx, s.cfg.RemoteMainRef())
	if errors.Is(err, secondary.ErrRefNotFound) {
		return "", syncerr.E("remote.tip", syncerr.Configuration,
			fmt.Errorf("%s not found; is %s the published mainline?", s.cfg.RemoteMainRef(), s.cfg.MainBranch))
	}
	if err != nil {
		return "", syncerr.E("remote.tip", syncerr.Other, err)
	}
	return tip, nil
}

// pending counts commits awaiting export without publishing anything.
func (s *SyncService) pending(ctx context.Context, tip, mirrorTip string) (int, error) {
	position, err := s.markers.Read(ctx)
	if errors.Is(err, syncerr.ErrMarkerMissing) {
		if mirrorTip == "" {
			return -1, err
		}
		position, err = s.markers.Locate(ctx, tip, mirrorTip)
	}
	if err != nil {
		return -1, err
	}
	if err := s.markers.Validate(ctx, position, tip); err != nil {
		return -1, err
	}
	p, err := s.planner.Plan(ctx, position, tip)
	if err != nil {
		return -1, err
	}
	return len(p.Entries), nil
}

// ============================================================================
// Pull
// ============================================================================

// Pull fetches the remote and refreshes the mirror. It never creates
// operation state.
func (s *SyncService) Pull(ctx context.Context, req primary.PullRequest) (*primary.PullResponse, error) {
	run := s.startRun(ctx, "pull")
	resp, err := s.pull(ctx, req)
	s.finishRun(ctx, run, func(r *secondary.RunRecord) {
		r.Status = int(syncflow.StatusOK)
	}, err)
	return resp, err
}

func (s *SyncService) pull(ctx context.Context, req primary.PullRequest) (*primary.PullResponse, error) {
	branch, err := s.checkEnvironment(ctx, false)
	if err != nil {
		return nil, err
	}
	if err := s.fetch(ctx); err != nil {
		return nil, err
	}
	mirrorTip, err := s.updateMirror(ctx)
	if err != nil {
		return nil, err
	}

	resp := &primary.PullResponse{MirrorTip: mirrorTip, Pending: -1}
	if tip, err := s.remoteTip(ctx); err == nil {
		if resp.Pending, err = s.pending(ctx, tip, mirrorTip); err != nil {
			resp.Warnings = append(resp.Warnings, "could not count pending commits: "+err.Error())
		}
	} else {
		resp.Warnings = append(resp.Warnings, err.Error())
	}

	if !req.Merge {
		return resp, nil
	}
	if branch != s.cfg.MainBranch {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("not merging %s: on %s, not %s", s.cfg.MirrorBranch, branch, s.cfg.MainBranch))
		return resp, nil
	}
	if s.cfg.Simulate {
		s.logger.Info("would merge mirror", "mirror", s.cfg.MirrorBranch, "into", branch)
		return resp, nil
	}
	err = s.vcs.MergeInto(ctx, secondary.MergeRequest{
		Branch:  s.cfg.MainBranch,
		Source:  s.cfg.MirrorBranch,
		Message: fmt.Sprintf("Merge %s into %s", s.cfg.MirrorBranch, s.cfg.MainBranch),
	})
	if err != nil {
		return resp, syncerr.E("pull.merge", syncerr.Upstream, err)
	}
	resp.Merged = true
	return resp, nil
}

// ============================================================================
// Export
// ============================================================================

// Export runs one export from the marker to the remote tip.
// A non-nil error is always fatal (status 1). An interactive halt is reported
// through the response with a nil error.
func (s *SyncService) Export(ctx context.Context) (*primary.ExportResponse, error) {
	run := s.startRun(ctx, "export")
	resp, err := s.export(ctx)
	s.finishExportRun(ctx, run, resp, err)
	return resp, err
}

func (s *SyncService) export(ctx context.Context) (*primary.ExportResponse, error) {
	resp := &primary.ExportResponse{Status: syncflow.StatusFailed, Simulated: s.cfg.Simulate}

	original, err := s.checkEnvironment(ctx, false)
	if err != nil {
		return resp, err
	}
	if _, err := s.state.Load(ctx); err == nil {
		return resp, syncerr.E("export", syncerr.State, syncerr.ErrOperationInProgress)
	} else if !errors.Is(err, syncerr.ErrNoOperation) {
		return resp, err
	}

	if err := s.fetch(ctx); err != nil {
		return resp, err
	}
	mirrorTip, err := s.updateMirror(ctx)
	if err != nil {
		return resp, err
	}
	tip, err := s.remoteTip(ctx)
	if err != nil {
		return resp, err
	}

	s.progress.Phase(syncflow.PhaseMarker, "reading "+s.cfg.RemoteMarkerRef())
	position, err := s.markers.Read(ctx)
	switch {
	case errors.Is(err, syncerr.ErrMarkerMissing):
		if s.cfg.Simulate {
			position, err = s.markers.Locate(ctx, tip, mirrorTip)
		} else {
			position, err = s.markers.Initialize(ctx, tip, mirrorTip)
		}
	case err == nil:
		err = s.markers.Validate(ctx, position, tip)
	}
	if err != nil {
		return resp, err
	}
	resp.MarkerBefore = position

	s.progress.Phase(syncflow.PhasePlan, fmt.Sprintf("walking %s..%s", plan.Abbrev(position), plan.Abbrev(tip)))
	p, err := s.planner.Plan(ctx, position, tip)
	if err != nil {
		return resp, err
	}
	resp.Plan = plannedCommits(p.Entries)

	if p.Empty() {
		resp.NothingToExport = true
		resp.MarkerAfter = position
		resp.Status = syncflow.StatusOK
		return resp, nil
	}
	if s.cfg.Simulate {
		resp.MarkerAfter = tip
		resp.Status = syncflow.StatusOK
		return resp, nil
	}

	s.progress.Phase(syncflow.PhasePrepare, fmt.Sprintf("creating %s at %s", s.cfg.ExportBranch, plan.Abbrev(mirrorTip)))
	if err := s.vcs.CreateBranch(ctx, s.cfg.ExportBranch, s.cfg.MirrorBranch); err != nil {
		return resp, syncerr.E("export.prepare", syncerr.Other, err)
	}
	guard := newBranchGuard(s.vcs, original, s.cfg.ExportBranch, s.logger)
	defer func() { resp.Warnings = append(resp.Warnings, guard.release()...) }()

	if err := s.vcs.Checkout(ctx, s.cfg.ExportBranch, false); err != nil {
		return resp, syncerr.E("export.prepare", syncerr.Other, err)
	}

	st := &secondary.OperationState{
		OriginalBranch: original,
		BaseID:         position,
		TipID:          tip,
		Remaining:      p.IDs(),
	}
	if err := s.saveState(ctx, st); err != nil {
		return resp, err
	}
	return resp, s.exportLoop(ctx, st, guard, resp)
}

// ============================================================================
// Continue / Abort
// ============================================================================

// Continue resumes a halted export after the operator resolved the conflict.
func (s *SyncService) Continue(ctx context.Context) (*primary.ExportResponse, error) {
	run := s.startRun(ctx, "continue")
	resp, err := s.resume(ctx)
	s.finishExportRun(ctx, run, resp, err)
	return resp, err
}

func (s *SyncService) resume(ctx context.Context) (*primary.ExportResponse, error) {
	const op syncerr.Op = "continue"
	resp := &primary.ExportResponse{Status: syncflow.StatusFailed}

	if _, err := s.checkEnvironment(ctx, true); err != nil {
		return resp, err
	}
	st, err := s.state.Load(ctx)
	if err != nil {
		return resp, syncerr.E(op, syncerr.State, err)
	}
	resp.MarkerBefore = st.BaseID

	guard := newBranchGuard(s.vcs, st.OriginalBranch, s.cfg.ExportBranch, s.logger)
	defer func() { resp.Warnings = append(resp.Warnings, guard.release()...) }()

	if st.CurrentCommit != "" {
		entry, err := s.planner.Entry(ctx, st.CurrentCommit)
		if err != nil {
			return resp, err
		}
		head, err := s.vcs.ResolveRef(ctx, config.BranchRef(s.cfg.ExportBranch))
		if err != nil {
			return resp, syncerr.E(op, syncerr.State, err)
		}

		result := primary.CommitResult{ID: entry.ID, Subject: entry.Subject, Outcome: syncflow.Skipped}
		if head != st.ExportHead {
			result.Outcome = syncflow.Applied
			result.NewID = head
			result.Resolved = true
		}
		s.logger.Info("resolved paused commit", "commit", entry.ShortID(), "outcome", result.Outcome)
		resp.Results = append(resp.Results, result)
		s.progress.Commit(result)

		st.CurrentCommit = ""
		st.ExportHead = ""
		if err := s.saveState(ctx, st); err != nil {
			return resp, err
		}
	}
	return resp, s.exportLoop(ctx, st, guard, resp)
}

// Abort discards an in-flight export and restores the original branch.
func (s *SyncService) Abort(ctx context.Context) (*primary.AbortResponse, error) {
	run := s.startRun(ctx, "abort")
	resp, err := s.abort(ctx)
	s.finishRun(ctx, run, func(r *secondary.RunRecord) {
		r.Status = int(syncflow.StatusOK)
	}, err)
	return resp, err
}

func (s *SyncService) abort(ctx context.Context) (*primary.AbortResponse, error) {
	const op syncerr.Op = "abort"

	st, err := s.state.Load(ctx)
	if err != nil {
		return nil, syncerr.E(op, syncerr.State, err)
	}
	if err := s.vcs.ResetHard(ctx); err != nil {
		return nil, syncerr.E(op, syncerr.Other, err)
	}
	if err := s.vcs.Checkout(ctx, st.OriginalBranch, true); err != nil {
		return nil, syncerr.E(op, syncerr.Other, err)
	}

	resp := &primary.AbortResponse{RestoredBranch: st.OriginalBranch}
	err = s.vcs.DeleteBranch(ctx, s.cfg.ExportBranch)
	switch {
	case err == nil:
		resp.DeletedBranch = s.cfg.ExportBranch
	case errors.Is(err, secondary.ErrRefNotFound):
		s.logger.Debug("export branch already gone", "branch", s.cfg.ExportBranch)
	default:
		return nil, syncerr.E(op, syncerr.Other, err)
	}

	if err := s.state.Clear(ctx); err != nil {
		return nil, syncerr.E(op, syncerr.State, err)
	}
	s.logger.Info("export aborted", "restored", st.OriginalBranch)
	return resp, nil
}

// ============================================================================
// Export loop and finalize
// ============================================================================

func (s *SyncService) exportLoop(ctx context.Context, st *secondary.OperationState, guard *branchGuard, resp *primary.ExportResponse) error {
	s.progress.Phase(syncflow.PhaseExport, fmt.Sprintf("%d commit(s) to export", len(st.Remaining)))

	for len(st.Remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, err := s.planner.Entry(ctx, st.Remaining[0])
		if err != nil {
			return err
		}
		head, err := s.vcs.ResolveRef(ctx, config.BranchRef(s.cfg.ExportBranch))
		if err != nil {
			return syncerr.E("export.loop", syncerr.Other, err)
		}
		st.Remaining = st.Remaining[1:]
		st.CurrentCommit = entry.ID
		st.ExportHead = head
		if err := s.saveState(ctx, st); err != nil {
			return err
		}

		res, err := s.exporter.ExportCommit(ctx, entry)
		if err != nil {
			s.requeue(ctx, st, entry.ID)
			return err
		}
		result := primary.CommitResult{ID: entry.ID, Subject: entry.Subject, Outcome: res.Outcome, NewID: res.NewID}

		if res.Outcome == syncflow.Conflicted {
			switch s.ladder.Escalation() {
			case conflict.ForceCommit:
				// Persisted before the forced commit exists, so a later
				// failure cannot lose the conflict status on continue.
				st.HadConflicts = true
				if err := s.saveState(ctx, st); err != nil {
					return err
				}
				if result.NewID, err = s.ladder.ForceCommit(ctx, res.Source, res.Patch, res.Apply); err != nil {
					return err
				}
			case conflict.Halt:
				resp.Results = append(resp.Results, result)
				s.progress.Commit(result)
				return s.halt(ctx, st, entry, res, guard, resp)
			}
		}

		resp.Results = append(resp.Results, result)
		s.progress.Commit(result)
		st.CurrentCommit = ""
		st.ExportHead = ""
	}

	if err := s.saveState(ctx, st); err != nil {
		return err
	}
	return s.finalize(ctx, st, guard, resp)
}

// halt persists the operation and leaves the operator on the export branch.
func (s *SyncService) halt(ctx context.Context, st *secondary.OperationState, entry plan.Entry, res ExportResult, guard *branchGuard, resp *primary.ExportResponse) error {
	if err := s.saveState(ctx, st); err != nil {
		return err
	}
	guard.pause()

	resp.Halted = true
	resp.HaltedAt = &primary.PlannedCommit{ID: entry.ID, Subject: entry.Subject, Author: entry.Author.String()}
	resp.Status = syncflow.StatusFailed
	s.logger.Warn("export halted on conflict",
		"commit", entry.ShortID(),
		"apply", res.Apply,
		"files", res.Patch.Paths(),
		"remaining", len(st.Remaining))
	return nil
}

func (s *SyncService) finalize(ctx context.Context, st *secondary.OperationState, guard *branchGuard, resp *primary.ExportResponse) error {
	const op syncerr.Op = "export.finalize"

	mirrorTip, err := s.vcs.ResolveRef(ctx, config.BranchRef(s.cfg.MirrorBranch))
	if err != nil {
		return syncerr.E(op, syncerr.Other, err)
	}
	exportTip, err := s.vcs.ResolveRef(ctx, config.BranchRef(s.cfg.ExportBranch))
	if err != nil {
		return syncerr.E(op, syncerr.Other, err)
	}
	pendingSubmit, err := s.vcs.FirstParentLog(ctx, exportTip, mirrorTip)
	if err != nil {
		return syncerr.E(op, syncerr.Other, err)
	}

	fp := syncflow.GenerateFinalizePlan(syncflow.FinalizeInput{
		Applied:      len(pendingSubmit),
		Tip:          st.TipID,
		Remote:       s.cfg.Remote,
		MainBranch:   s.cfg.MainBranch,
		MirrorBranch: s.cfg.MirrorBranch,
		ExportBranch: s.cfg.ExportBranch,
		PushMain:     s.cfg.PushMain,
	})
	if fp.Submitted {
		s.progress.Phase(syncflow.PhaseFinalize, fmt.Sprintf("submitting %d change(s) to %s", len(pendingSubmit), s.cfg.Target))
	} else {
		s.progress.Phase(syncflow.PhaseFinalize, "nothing to submit")
	}

	report, err := s.executor.Execute(ctx, fp.Effects)
	if report != nil {
		resp.Warnings = append(resp.Warnings, report.Warnings...)
	}
	if err != nil {
		return err
	}

	guard.succeed()
	resp.Submitted = fp.Submitted
	resp.MarkerAfter = st.TipID
	resp.Status = syncflow.FinalStatus(st.HadConflicts)
	s.progress.Phase(syncflow.PhaseDone, "marker at "+plan.Abbrev(st.TipID))
	return nil
}

// requeue puts a commit that failed before producing anything back at the
// head of the remaining list, so a later continue retries it.
func (s *SyncService) requeue(ctx context.Context, st *secondary.OperationState, id string) {
	st.Remaining = append([]string{id}, st.Remaining...)
	st.CurrentCommit = ""
	st.ExportHead = ""
	if err := s.state.Save(context.WithoutCancel(ctx), st); err != nil {
		s.logger.Warn("failed to save operation state", "error", err)
	}
}

func (s *SyncService) saveState(ctx context.Context, st *secondary.OperationState) error {
	if err := s.state.Save(ctx, st); err != nil {
		return syncerr.E("state.save", syncerr.State, err)
	}
	return nil
}

func plannedCommits(entries []plan.Entry) []primary.PlannedCommit {
	out := make([]primary.PlannedCommit, 0, len(entries))
	for _, e := range entries {
		out = append(out, primary.PlannedCommit{ID: e.ID, Subject: e.Subject, Author: e.Author.String()})
	}
	return out
}

// ============================================================================
// Status / History
// ============================================================================

// Status reports the sync state without changing anything.
func (s *SyncService) Status(ctx context.Context) (*primary.StatusResponse, error) {
	resp := &primary.StatusResponse{Pending: -1}

	tip, err := s.remoteTip(ctx)
	if err != nil {
		return nil, err
	}
	resp.Tip = tip

	mirrorTip, err := s.vcs.ResolveRef(ctx, config.BranchRef(s.cfg.MirrorBranch))
	if err != nil && !errors.Is(err, secondary.ErrRefNotFound) {
		return nil, syncerr.E("status", syncerr.Other, err)
	}
	resp.MirrorTip = mirrorTip

	position, err := s.markers.Read(ctx)
	switch {
	case errors.Is(err, syncerr.ErrMarkerMissing):
		resp.MarkerMissing = true
	case err != nil:
		return nil, err
	default:
		resp.Marker = position
	}
	if resp.Pending, err = s.pending(ctx, tip, mirrorTip); err != nil && !resp.MarkerMissing {
		return nil, err
	}

	st, err := s.state.Load(ctx)
	switch {
	case err == nil:
		resp.InProgress = true
		resp.RemainingInPause = len(st.Remaining)
		resp.PausedAt = st.CurrentCommit
	case !errors.Is(err, syncerr.ErrNoOperation):
		return nil, syncerr.E("status", syncerr.State, err)
	}

	entries, err := s.conflicts.Entries(ctx)
	if err != nil {
		return nil, syncerr.E("status", syncerr.State, err)
	}
	resp.ConflictLogLength = len(entries)
	return resp, nil
}

// History lists recent runs, newest first.
func (s *SyncService) History(ctx context.Context, limit int) ([]*primary.Run, error) {
	if s.journal == nil {
		return nil, nil
	}
	records, err := s.journal.List(ctx, limit)
	if err != nil {
		return nil, syncerr.E("history", syncerr.State, err)
	}
	runs := make([]*primary.Run, 0, len(records))
	for _, r := range records {
		run := primary.Run(*r)
		runs = append(runs, &run)
	}
	return runs, nil
}

// ============================================================================
// Run journal
// ============================================================================

// startRun records the start of a run. The journal is best effort: failures
// are logged and never change the outcome.
func (s *SyncService) startRun(ctx context.Context, command string) *secondary.RunRecord {
	if s.journal == nil || s.cfg.Simulate {
		return nil
	}
	run := &secondary.RunRecord{
		ID:        uuid.NewString(),
		Command:   command,
		StartedAt: s.now().UTC(),
	}
	if err := s.journal.Start(ctx, run); err != nil {
		s.logger.Warn("failed to record run", "command", command, "error", err)
		return nil
	}
	return run
}

func (s *SyncService) finishRun(ctx context.Context, run *secondary.RunRecord, fill func(*secondary.RunRecord), err error) {
	if run == nil {
		return
	}
	fill(run)
	if err != nil {
		run.Status = int(syncflow.StatusFailed)
		run.Error = err.Error()
	}
	run.FinishedAt = s.now().UTC()
	if jerr := s.journal.Finish(context.WithoutCancel(ctx), run); jerr != nil {
		s.logger.Warn("failed to record run", "command", run.Command, "error", jerr)
	}
}

func (s *SyncService) finishExportRun(ctx context.Context, run *secondary.RunRecord, resp *primary.ExportResponse, err error) {
	s.finishRun(ctx, run, func(r *secondary.RunRecord) {
		if resp == nil {
			return
		}
		r.Status = int(resp.Status)
		r.MarkerBefore = resp.MarkerBefore
		r.MarkerAfter = resp.MarkerAfter
		r.Applied, r.Skipped, r.Conflicted = resp.Counts()
	}, err)
}
