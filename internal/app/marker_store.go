package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/example/monosync/internal/config"
	"github.com/example/monosync/internal/core/marker"
	"github.com/example/monosync/internal/core/plan"
	"github.com/example/monosync/internal/core/syncerr"
	"github.com/example/monosync/internal/ports/secondary"
)

// MarkerStore owns the published "last exported" reference.
// The marker lives as a branch on the remote; its remote-tracking ref is the
// local copy that reads go through.
type MarkerStore struct {
	vcs    secondary.VersionControl
	cfg    config.Config
	logger *slog.Logger
}

// NewMarkerStore creates a new MarkerStore.
func NewMarkerStore(vcs secondary.VersionControl, cfg config.Config, logger *slog.Logger) *MarkerStore {
	return &MarkerStore{vcs: vcs, cfg: cfg, logger: logger}
}

// Read returns the marker position, or syncerr.ErrMarkerMissing.
func (m *MarkerStore) Read(ctx context.Context) (string, error) {
	id, err := m.vcs.ResolveRef(ctx, m.cfg.RemoteMarkerRef())
	if errors.Is(err, secondary.ErrRefNotFound) {
		return "", syncerr.ErrMarkerMissing
	}
	if err != nil {
		return "", syncerr.E("marker.read", syncerr.Other, err)
	}
	return id, nil
}

// Locate computes the initial marker position without publishing it: the newest
// commit on tip's first-parent chain that the mirror already contains.
func (m *MarkerStore) Locate(ctx context.Context, tip, mirrorTip string) (string, error) {
	const op syncerr.Op = "marker.initialize"

	base, err := m.vcs.MergeBase(ctx, tip, mirrorTip)
	if errors.Is(err, secondary.ErrRefNotFound) {
		return "", syncerr.E(op, syncerr.Configuration,
			fmt.Errorf("%s and the mirror %s share no history", plan.Abbrev(tip), plan.Abbrev(mirrorTip)))
	}
	if err != nil {
		return "", syncerr.E(op, syncerr.Other, err)
	}

	// The walk stops at base when base is on the chain.
	chain, err := m.vcs.FirstParentLog(ctx, tip, base)
	if err != nil {
		return "", syncerr.E(op, syncerr.Other, err)
	}
	if len(chain) == 0 || chain[len(chain)-1].FirstParentID() == base {
		return base, nil
	}

	// base came in through a merged side history. Ancestry of base is
	// monotone along the first-parent chain, so search for the first hit.
	var searchErr error
	i := sort.Search(len(chain), func(i int) bool {
		if searchErr != nil {
			return true
		}
		ok, err := m.vcs.IsAncestor(ctx, chain[i].ID, base)
		if err != nil {
			searchErr = err
			return true
		}
		return ok
	})
	if searchErr != nil {
		return "", syncerr.E(op, syncerr.Other, searchErr)
	}
	if i == len(chain) {
		return "", syncerr.E(op, syncerr.Configuration,
			fmt.Errorf("no commit on the first-parent chain of %s is contained in the mirror", plan.Abbrev(tip)))
	}
	return chain[i].ID, nil
}

// Initialize publishes a first marker. It is only legal while the marker is
// missing; running it again after a failed publish computes the same position.
func (m *MarkerStore) Initialize(ctx context.Context, tip, mirrorTip string) (string, error) {
	if _, err := m.Read(ctx); err == nil {
		return "", syncerr.E("marker.initialize", syncerr.Marker, errors.New("marker already exists"))
	} else if !errors.Is(err, syncerr.ErrMarkerMissing) {
		return "", err
	}

	pos, err := m.Locate(ctx, tip, mirrorTip)
	if err != nil {
		return "", err
	}
	m.logger.Info("initializing marker", "position", plan.Abbrev(pos), "tip", plan.Abbrev(tip))
	if err := m.publish(ctx, pos); err != nil {
		return "", err
	}
	return pos, nil
}

// onFirstParent reports whether position is on tip's first-parent chain.
func (m *MarkerStore) onFirstParent(ctx context.Context, position, tip string) (bool, error) {
	if position == tip {
		return true, nil
	}
	chain, err := m.vcs.FirstParentLog(ctx, tip, position)
	if err != nil {
		return false, err
	}
	return len(chain) > 0 && chain[len(chain)-1].FirstParentID() == position, nil
}

// Validate checks the marker against the tip. It never repairs anything.
func (m *MarkerStore) Validate(ctx context.Context, position, tip string) error {
	isAncestor, err := m.vcs.IsAncestor(ctx, position, tip)
	if err != nil {
		return syncerr.E("marker.validate", syncerr.Other, err)
	}
	vctx := marker.ValidateContext{Position: position, Tip: tip, IsAncestor: isAncestor}
	if isAncestor {
		if vctx.OnFirstParent, err = m.onFirstParent(ctx, position, tip); err != nil {
			return syncerr.E("marker.validate", syncerr.Other, err)
		}
	}
	return marker.CanUseMarker(vctx).Error()
}

// Advance publishes a new position. The move must be forward along the
// first-parent chain. In simulate mode it only reports the would-be value.
func (m *MarkerStore) Advance(ctx context.Context, next string) error {
	current, err := m.Read(ctx)
	if err != nil && !errors.Is(err, syncerr.ErrMarkerMissing) {
		return err
	}

	actx := marker.AdvanceContext{Current: current, Next: next}
	if current != "" && current != next {
		if actx.OnFirstParent, err = m.onFirstParent(ctx, current, next); err != nil {
			return syncerr.E("marker.advance", syncerr.Other, err)
		}
	}
	if err := marker.CanAdvance(actx).Error(); err != nil {
		return err
	}

	if m.cfg.Simulate {
		m.logger.Info("would advance marker", "from", plan.Abbrev(current), "to", plan.Abbrev(next))
		return nil
	}
	if current == next {
		return nil
	}
	m.logger.Info("advancing marker", "from", plan.Abbrev(current), "to", plan.Abbrev(next))
	return m.publish(ctx, next)
}

func (m *MarkerStore) publish(ctx context.Context, pos string) error {
	const op syncerr.Op = "marker.publish"
	if err := m.vcs.PushRef(ctx, m.cfg.Remote, pos, m.cfg.MarkerRef()); err != nil {
		return syncerr.E(op, syncerr.Upstream, err)
	}
	if err := m.vcs.UpdateRef(ctx, m.cfg.RemoteMarkerRef(), pos); err != nil {
		return syncerr.E(op, syncerr.Other, err)
	}
	return nil
}
