package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/example/monosync/internal/ports/secondary"
)

// Repository implements secondary.VersionControl for a local checkout.
type Repository struct {
	run    *Runner
	bridge Bridge
	repo   *gogit.Repository
}

var _ secondary.VersionControl = (*Repository)(nil)

// NewRepository creates the adapter for the checkout containing dir. Git
// invocations are logged to logger at debug level; logger may be nil.
func NewRepository(dir string, bridge Bridge, logger *slog.Logger) (*Repository, error) {
	runner, err := NewRunner(dir)
	if err != nil {
		return nil, err
	}
	runner.Logger = logger
	return &Repository{run: runner, bridge: bridge}, nil
}

// open lazily opens the repository with go-git. Reads go through this handle;
// it sees objects and refs written by the git binary because both share the
// same on-disk storage.
func (r *Repository) open() (*gogit.Repository, error) {
	if r.repo != nil {
		return r.repo, nil
	}
	repo, err := gogit.PlainOpenWithOptions(r.run.Dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, secondary.ErrNotRepository
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	r.repo = repo
	return repo, nil
}

// Repository implements secondary.VersionControl.
func (r *Repository) Repository(ctx context.Context) (secondary.RepositoryInfo, error) {
	res, err := r.run.Run(ctx, "rev-parse", "--show-toplevel", "--absolute-git-dir")
	if err != nil {
		if ExitCode(err) == 128 {
			return secondary.RepositoryInfo{}, secondary.ErrNotRepository
		}
		return secondary.RepositoryInfo{}, err
	}
	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	if len(lines) != 2 {
		return secondary.RepositoryInfo{}, fmt.Errorf("unexpected rev-parse output %q", res.Stdout)
	}

	info := secondary.RepositoryInfo{TopLevel: lines[0], GitDir: lines[1]}
	info.AtTopLevel = samePath(r.run.Dir, info.TopLevel)
	return info, nil
}

func samePath(a, b string) bool {
	resolve := func(p string) string {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if real, err := filepath.EvalSymlinks(p); err == nil {
			p = real
		}
		return filepath.Clean(p)
	}
	if a == "" {
		wd, err := os.Getwd()
		if err != nil {
			return false
		}
		a = wd
	}
	return resolve(a) == resolve(b)
}

// CurrentBranch implements secondary.VersionControl.
func (r *Repository) CurrentBranch(ctx context.Context) (string, bool, error) {
	res, err := r.run.Run(ctx, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		if ExitCode(err) == 1 {
			return "", true, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(res.Stdout), false, nil
}

// IsClean implements secondary.VersionControl. Untracked files are ignored.
func (r *Repository) IsClean(ctx context.Context) (bool, error) {
	res, err := r.run.Run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) == "", nil
}

// UpdateRef implements secondary.VersionControl.
func (r *Repository) UpdateRef(ctx context.Context, ref, commit string) error {
	_, err := r.run.Run(ctx, "update-ref", ref, commit)
	return err
}

// Fetch implements secondary.VersionControl.
func (r *Repository) Fetch(ctx context.Context, remote string) error {
	_, err := r.run.Run(ctx, "fetch", "--prune", remote)
	return err
}

// AddNote implements secondary.VersionControl. An existing note is replaced.
func (r *Repository) AddNote(ctx context.Context, notesRef, commit, body string) error {
	_, err := r.run.Exec(ctx, Invocation{
		Args:  []string{"notes", "--ref", notesRef, "add", "--force", "--file", "-", commit},
		Stdin: strings.NewReader(body),
	})
	return err
}

// CreateBranch implements secondary.VersionControl. An existing branch is moved.
func (r *Repository) CreateBranch(ctx context.Context, name, at string) error {
	_, err := r.run.Run(ctx, "branch", "--force", "--no-track", name, at)
	return err
}

// Checkout implements secondary.VersionControl.
func (r *Repository) Checkout(ctx context.Context, branch string, force bool) error {
	args := []string{"checkout", "--quiet"}
	if force {
		args = append(args, "--force")
	}
	_, err := r.run.Run(ctx, append(args, branch)...)
	return err
}

// DeleteBranch implements secondary.VersionControl.
func (r *Repository) DeleteBranch(ctx context.Context, name string) error {
	_, err := r.run.Run(ctx, "branch", "-D", name)
	return err
}

// MergeInto implements secondary.VersionControl. A failed merge is aborted
// before the error is returned.
func (r *Repository) MergeInto(ctx context.Context, req secondary.MergeRequest) error {
	if err := r.Checkout(ctx, req.Branch, false); err != nil {
		return err
	}
	if req.Upstream != "" {
		if _, err := r.run.Run(ctx, "merge", "--ff-only", "--quiet", req.Upstream); err != nil {
			return err
		}
	}
	_, err := r.run.Run(ctx, "merge", "--no-ff", "--quiet", "-m", req.Message, req.Source)
	if err != nil {
		if _, abortErr := r.run.Run(ctx, "merge", "--abort"); abortErr != nil {
			return errors.Join(err, abortErr)
		}
		return err
	}
	return nil
}

// PushRef implements secondary.VersionControl.
func (r *Repository) PushRef(ctx context.Context, remote, commit, ref string) error {
	_, err := r.run.Run(ctx, "push", "--quiet", remote, commit+":"+ref)
	return err
}

// PushBranch implements secondary.VersionControl.
func (r *Repository) PushBranch(ctx context.Context, remote, branch string) error {
	_, err := r.run.Run(ctx, "push", "--quiet", remote, branch)
	return err
}

// RebaseMirror implements secondary.VersionControl.
func (r *Repository) RebaseMirror(ctx context.Context, mirrorBranch, trackingRef string) error {
	if err := r.bridge.Sync(ctx, r.run); err != nil {
		return err
	}
	if _, err := r.ResolveRef(ctx, trackingRef); err != nil {
		return err
	}

	current, detached, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if !detached && current == mirrorBranch {
		_, err = r.run.Run(ctx, "rebase", "--quiet", trackingRef)
		return err
	}
	return r.CreateBranch(ctx, mirrorBranch, trackingRef)
}

// SubmitToTarget implements secondary.VersionControl. The branch must be checked out.
func (r *Repository) SubmitToTarget(ctx context.Context, branch string) error {
	return r.bridge.Submit(ctx, r.run, branch)
}
