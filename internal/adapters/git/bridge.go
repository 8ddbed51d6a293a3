package git

import (
	"context"
	"fmt"

	"github.com/example/monosync/internal/config"
)

// Bridge drives the git front end of the target system.
type Bridge interface {
	// Sync imports new target revisions under the tracking ref.
	Sync(ctx context.Context, r *Runner) error
	// Submit sends the commits of the checked-out branch that are not yet in
	// the target. It fails if the target rejects any of them.
	Submit(ctx context.Context, r *Runner, branch string) error
}

// NewBridge returns the bridge for a target system.
func NewBridge(t config.Target, trackingRef string) (Bridge, error) {
	switch t {
	case config.TargetP4:
		return &p4Bridge{trackingRef: trackingRef}, nil
	case config.TargetSVN:
		return &svnBridge{}, nil
	}
	return nil, fmt.Errorf("unsupported target %q", t)
}

// p4Bridge uses git-p4.
type p4Bridge struct {
	trackingRef string
}

func (b *p4Bridge) Sync(ctx context.Context, r *Runner) error {
	_, err := r.Run(ctx, "p4", "sync")
	return err
}

func (b *p4Bridge) Submit(ctx context.Context, r *Runner, branch string) error {
	// --conflict=quit stops at the first changelist p4 refuses instead of prompting.
	_, err := r.Run(ctx, "p4", "submit", "--origin", b.trackingRef, "--conflict=quit", "--disable-rebase")
	return err
}

// svnBridge uses git-svn.
type svnBridge struct{}

func (b *svnBridge) Sync(ctx context.Context, r *Runner) error {
	_, err := r.Run(ctx, "svn", "fetch")
	return err
}

func (b *svnBridge) Submit(ctx context.Context, r *Runner, branch string) error {
	_, err := r.Run(ctx, "svn", "dcommit")
	return err
}
