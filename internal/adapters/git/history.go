package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/example/monosync/internal/ports/secondary"
)

// ResolveRef implements secondary.VersionControl.
func (r *Repository) ResolveRef(ctx context.Context, ref string) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, plumbing.ErrObjectNotFound) {
			return "", fmt.Errorf("%s: %w", ref, secondary.ErrRefNotFound)
		}
		return "", fmt.Errorf("%s: %w", ref, errors.Join(secondary.ErrRefNotFound, err))
	}
	return hash.String(), nil
}

func (r *Repository) commitObject(id string) (*object.Commit, error) {
	repo, err := r.open()
	if err != nil {
		return nil, err
	}
	c, err := repo.CommitObject(plumbing.NewHash(id))
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, fmt.Errorf("commit %s: %w", id, secondary.ErrRefNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", id, err)
	}
	return c, nil
}

func toRecord(c *object.Commit) secondary.CommitRecord {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return secondary.CommitRecord{
		ID:             c.Hash.String(),
		ParentIDs:      parents,
		Message:        c.Message,
		AuthorName:     c.Author.Name,
		AuthorEmail:    c.Author.Email,
		AuthorTime:     c.Author.When,
		CommitterName:  c.Committer.Name,
		CommitterEmail: c.Committer.Email,
		CommitterTime:  c.Committer.When,
	}
}

// Commit implements secondary.VersionControl.
func (r *Repository) Commit(ctx context.Context, id string) (secondary.CommitRecord, error) {
	c, err := r.commitObject(id)
	if err != nil {
		return secondary.CommitRecord{}, err
	}
	return toRecord(c), nil
}

// FirstParentLog implements secondary.VersionControl.
func (r *Repository) FirstParentLog(ctx context.Context, tip, stop string) ([]secondary.CommitRecord, error) {
	var out []secondary.CommitRecord
	id := tip
	for id != "" && id != stop {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := r.commitObject(id)
		if err != nil {
			return nil, err
		}
		rec := toRecord(c)
		out = append(out, rec)
		id = rec.FirstParentID()
	}
	return out, nil
}

// IsAncestor implements secondary.VersionControl.
func (r *Repository) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}
	a, err := r.commitObject(ancestor)
	if err != nil {
		return false, err
	}
	d, err := r.commitObject(descendant)
	if err != nil {
		return false, err
	}
	return a.IsAncestor(d)
}

// MergeBase implements secondary.VersionControl. With several best common
// ancestors the first one go-git reports is used.
func (r *Repository) MergeBase(ctx context.Context, a, b string) (string, error) {
	ca, err := r.commitObject(a)
	if err != nil {
		return "", err
	}
	cb, err := r.commitObject(b)
	if err != nil {
		return "", err
	}
	bases, err := ca.MergeBase(cb)
	if err != nil {
		return "", err
	}
	if len(bases) == 0 {
		return "", fmt.Errorf("no common ancestor of %s and %s: %w", a, b, secondary.ErrRefNotFound)
	}
	return bases[0].Hash.String(), nil
}
