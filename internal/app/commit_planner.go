package app

import (
	"context"

	"github.com/example/monosync/internal/core/plan"
	"github.com/example/monosync/internal/core/syncerr"
	"github.com/example/monosync/internal/ports/secondary"
)

// CommitPlanner builds the ordered list of commits to export.
type CommitPlanner struct {
	vcs secondary.VersionControl
}

// NewCommitPlanner creates a new CommitPlanner.
func NewCommitPlanner(vcs secondary.VersionControl) *CommitPlanner {
	return &CommitPlanner{vcs: vcs}
}

// Plan returns every commit reachable from tip by first-parent edges down to,
// but excluding, marker, oldest first. Merged-in side histories never appear.
func (p *CommitPlanner) Plan(ctx context.Context, marker, tip string) (plan.Plan, error) {
	chain, err := p.vcs.FirstParentLog(ctx, tip, marker)
	if err != nil {
		return plan.Plan{}, syncerr.E("plan.commits", syncerr.Other, err)
	}
	entries := make([]plan.Entry, 0, len(chain))
	for _, c := range chain {
		entries = append(entries, toEntry(c))
	}
	result, err := plan.GeneratePlan(plan.PlanInput{Marker: marker, Tip: tip, Chain: entries})
	if err != nil {
		return plan.Plan{}, syncerr.E("plan.commits", syncerr.Marker, err)
	}
	return result, nil
}

// Entry looks up a single commit as a plan entry.
func (p *CommitPlanner) Entry(ctx context.Context, id string) (plan.Entry, error) {
	c, err := p.vcs.Commit(ctx, id)
	if err != nil {
		return plan.Entry{}, syncerr.E("plan.entry", syncerr.State, err)
	}
	return toEntry(c), nil
}

func toEntry(c secondary.CommitRecord) plan.Entry {
	return plan.Entry{
		ID:            c.ID,
		FirstParentID: c.FirstParentID(),
		Subject:       c.Subject(),
		Author:        plan.Identity{Name: c.AuthorName, Email: c.AuthorEmail},
		AuthorTime:    c.AuthorTime,
		CommitterTime: c.CommitterTime,
	}
}
