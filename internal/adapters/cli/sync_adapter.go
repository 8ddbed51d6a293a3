package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/monosync/internal/core/plan"
	"github.com/example/monosync/internal/core/syncflow"
	"github.com/example/monosync/internal/ports/primary"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
)

// SyncAdapter is a thin adapter that translates CLI operations to SyncService calls
// and renders their results.
type SyncAdapter struct {
	service      primary.SyncService
	out          io.Writer
	exportBranch string
}

// NewSyncAdapter creates a new SyncAdapter with the given service.
func NewSyncAdapter(service primary.SyncService, out io.Writer, exportBranch string) *SyncAdapter {
	return &SyncAdapter{
		service:      service,
		out:          out,
		exportBranch: exportBranch,
	}
}

// Pull refreshes the mirror and reports what is pending.
func (a *SyncAdapter) Pull(ctx context.Context, merge bool) (*primary.PullResponse, error) {
	resp, err := a.service.Pull(ctx, primary.PullRequest{Merge: merge})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "%s Mirror at %s\n", okMark, plan.Abbrev(resp.MirrorTip))
	switch {
	case resp.Pending < 0:
		fmt.Fprintln(a.out, "  Pending: unknown")
	case resp.Pending == 0:
		fmt.Fprintln(a.out, "  Nothing pending export")
	default:
		fmt.Fprintf(a.out, "  %d commit(s) pending export\n", resp.Pending)
	}
	if resp.Merged {
		fmt.Fprintf(a.out, "%s Merged mirror into the main branch\n", okMark)
	}
	a.warnings(resp.Warnings)
	return resp, nil
}

// Export runs an export and renders the outcome. Warnings are shown even when
// the export failed.
func (a *SyncAdapter) Export(ctx context.Context) (*primary.ExportResponse, error) {
	resp, err := a.service.Export(ctx)
	if resp != nil {
		a.warnings(resp.Warnings)
	}
	if err != nil {
		return resp, err
	}
	a.renderExport(resp)
	return resp, nil
}

// Continue resumes a halted export.
func (a *SyncAdapter) Continue(ctx context.Context) (*primary.ExportResponse, error) {
	resp, err := a.service.Continue(ctx)
	if resp != nil {
		a.warnings(resp.Warnings)
	}
	if err != nil {
		return resp, err
	}
	a.renderExport(resp)
	return resp, nil
}

// Abort discards a halted export.
func (a *SyncAdapter) Abort(ctx context.Context) (*primary.AbortResponse, error) {
	resp, err := a.service.Abort(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s Export aborted\n", okMark)
	fmt.Fprintf(a.out, "  Restored branch: %s\n", resp.RestoredBranch)
	if resp.DeletedBranch != "" {
		fmt.Fprintf(a.out, "  Deleted branch:  %s\n", resp.DeletedBranch)
	}
	return resp, nil
}

func (a *SyncAdapter) renderExport(resp *primary.ExportResponse) {
	switch {
	case resp.Simulated && !resp.NothingToExport:
		fmt.Fprintf(a.out, "Dry run: %d commit(s) would be exported\n", len(resp.Plan))
		for _, c := range resp.Plan {
			fmt.Fprintf(a.out, "  %s %s\n", plan.Abbrev(c.ID), c.Subject)
		}
		fmt.Fprintf(a.out, "Marker would move %s → %s\n", plan.Abbrev(resp.MarkerBefore), plan.Abbrev(resp.MarkerAfter))

	case resp.NothingToExport:
		fmt.Fprintf(a.out, "%s Nothing to export (marker at %s)\n", okMark, plan.Abbrev(resp.MarkerBefore))

	case resp.Halted:
		fmt.Fprintf(a.out, "%s Export halted on a conflict in %s %s\n", failMark, plan.Abbrev(resp.HaltedAt.ID), resp.HaltedAt.Subject)
		fmt.Fprintln(a.out)
		fmt.Fprintf(a.out, "Resolve it on branch %s, then either:\n", a.exportBranch)
		fmt.Fprintf(a.out, "  git add -A && git commit -C %s   # keep your resolution\n", plan.Abbrev(resp.HaltedAt.ID))
		fmt.Fprintln(a.out, "  git reset --hard                 # skip this commit")
		fmt.Fprintln(a.out, "and run: monosync push --continue  (or monosync push --abort)")

	default:
		applied, skipped, conflicted := resp.Counts()
		fmt.Fprintf(a.out, "%s Export complete: %d applied, %d skipped, %d conflicted\n", okMark, applied, skipped, conflicted)
		if resp.Submitted {
			fmt.Fprintln(a.out, "  Submitted to the target system")
		}
		fmt.Fprintf(a.out, "  Marker: %s → %s\n", plan.Abbrev(resp.MarkerBefore), plan.Abbrev(resp.MarkerAfter))
		if resp.Status == syncflow.StatusConflicts {
			fmt.Fprintf(a.out, "%s %d commit(s) were committed with conflict markers; see the conflict log\n", warnMark, conflicted)
		}
	}
}

func (a *SyncAdapter) warnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(a.out, "%s %s\n", warnMark, w)
	}
}

// Status shows the read-only sync status.
func (a *SyncAdapter) Status(ctx context.Context) (*primary.StatusResponse, error) {
	resp, err := a.service.Status(ctx)
	if err != nil {
		return nil, err
	}

	marker := plan.Abbrev(resp.Marker)
	if resp.MarkerMissing {
		marker = "(not initialized)"
	}
	mirror := plan.Abbrev(resp.MirrorTip)
	if mirror == "" {
		mirror = "(not synced; run monosync pull)"
	}
	pending := "unknown"
	if resp.Pending >= 0 {
		pending = fmt.Sprintf("%d", resp.Pending)
	}

	fmt.Fprintf(a.out, "Marker:    %s\n", marker)
	fmt.Fprintf(a.out, "Tip:       %s\n", plan.Abbrev(resp.Tip))
	fmt.Fprintf(a.out, "Mirror:    %s\n", mirror)
	fmt.Fprintf(a.out, "Pending:   %s\n", pending)
	fmt.Fprintf(a.out, "Conflicts: %d logged\n", resp.ConflictLogLength)
	if resp.InProgress {
		fmt.Fprintln(a.out)
		fmt.Fprintf(a.out, "%s Export in progress: %d commit(s) remaining", warnMark, resp.RemainingInPause)
		if resp.PausedAt != "" {
			fmt.Fprintf(a.out, ", paused at %s", plan.Abbrev(resp.PausedAt))
		}
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "  Run monosync push --continue or monosync push --abort")
	}
	return resp, nil
}

// History lists recent runs.
func (a *SyncAdapter) History(ctx context.Context, limit int) ([]*primary.Run, error) {
	runs, err := a.service.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No runs recorded.")
		return runs, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMMAND\tSTARTED\tSTATUS\tAPPLIED\tSKIPPED\tCONFLICTED\tMARKER")
	fmt.Fprintln(w, "--\t-------\t-------\t------\t-------\t-------\t----------\t------")
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		status := syncflow.Status(r.Status).String()
		if r.FinishedAt.IsZero() {
			status = "running"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			id,
			r.Command,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			status,
			r.Applied,
			r.Skipped,
			r.Conflicted,
			plan.Abbrev(r.MarkerAfter),
		)
	}
	w.Flush()
	return runs, nil
}
