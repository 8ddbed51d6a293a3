package git

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/example/monosync/internal/ports/secondary"
)

// emptyTree is the id of git's empty tree object.
const emptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Diff implements secondary.VersionControl. The patch carries full blob ids
// so a three-way apply can fall back on them.
func (r *Repository) Diff(ctx context.Context, from, to string) (secondary.Patch, error) {
	base := from
	if base == "" {
		base = emptyTree
	}
	res, err := r.run.Run(ctx, "diff", "--binary", "--full-index", "--no-color", "--no-ext-diff", "-M", base, to)
	if err != nil {
		return secondary.Patch{}, err
	}

	p := secondary.Patch{From: from, To: to}
	if res.Stdout == "" {
		return p, nil
	}
	files, err := SummarizePatch([]byte(res.Stdout))
	if err != nil {
		return secondary.Patch{}, err
	}
	p.Data = []byte(res.Stdout)
	p.Files = files
	return p, nil
}

// SummarizePatch lists the files a git patch touches.
func SummarizePatch(data []byte) ([]secondary.PatchFile, error) {
	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing patch: %w", err)
	}

	out := make([]secondary.PatchFile, 0, len(files))
	for _, f := range files {
		pf := secondary.PatchFile{OldPath: f.OldName, NewPath: f.NewName, Binary: f.IsBinary}
		switch {
		case f.IsNew:
			pf.Op = "add"
		case f.IsDelete:
			pf.Op = "delete"
		case f.IsRename:
			pf.Op = "rename"
		case f.IsCopy:
			pf.Op = "copy"
		case f.OldMode != f.NewMode && len(f.TextFragments) == 0 && f.BinaryFragment == nil:
			pf.Op = "mode"
		default:
			pf.Op = "modify"
		}
		out = append(out, pf)
	}
	return out, nil
}

// ApplyPatch implements secondary.VersionControl. A failed strict apply leaves
// the index untouched. A three-way apply that leaves unmerged paths reports
// AppliedWithConflictMarkers; the markers are in the working tree.
func (r *Repository) ApplyPatch(ctx context.Context, patch secondary.Patch, mode secondary.ApplyMode) (secondary.ApplyOutcome, error) {
	if patch.Empty() {
		return secondary.Applied, nil
	}

	args := []string{"apply", "--index", "--whitespace=nowarn"}
	if mode == secondary.ApplyThreeWay {
		args = append(args, "--3way")
	}
	_, err := r.run.Exec(ctx, Invocation{Args: append(args, "-"), Stdin: bytes.NewReader(patch.Data)})
	if err == nil {
		return secondary.Applied, nil
	}
	if ExitCode(err) < 0 {
		return secondary.Rejected, err
	}
	if mode == secondary.ApplyStrict {
		return secondary.Rejected, nil
	}

	unmerged, uerr := r.unmergedPaths(ctx)
	if uerr != nil {
		return secondary.Rejected, uerr
	}
	if len(unmerged) > 0 {
		return secondary.AppliedWithConflictMarkers, nil
	}
	return secondary.Rejected, nil
}

func (r *Repository) unmergedPaths(ctx context.Context) ([]string, error) {
	res, err := r.run.Run(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	return strings.Fields(res.Stdout), nil
}

// HasStagedChanges implements secondary.VersionControl.
func (r *Repository) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := r.run.Run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	if ExitCode(err) == 1 {
		return true, nil
	}
	return false, err
}

// StageTracked implements secondary.VersionControl. Untracked files are left
// alone; paths added by a patch are already in the index.
func (r *Repository) StageTracked(ctx context.Context) error {
	_, err := r.run.Run(ctx, "add", "--update")
	return err
}

// CommitIndex implements secondary.VersionControl. Author identity and dates
// come from the request; the committer is the local user.
func (r *Repository) CommitIndex(ctx context.Context, req secondary.CommitRequest) (string, error) {
	var env []string
	if req.AuthorName != "" {
		env = append(env, "GIT_AUTHOR_NAME="+req.AuthorName, "GIT_AUTHOR_EMAIL="+req.AuthorEmail)
	}
	if !req.AuthorTime.IsZero() {
		env = append(env, "GIT_AUTHOR_DATE="+gitDate(req.AuthorTime))
	}
	if !req.CommitterTime.IsZero() {
		env = append(env, "GIT_COMMITTER_DATE="+gitDate(req.CommitterTime))
	}

	_, err := r.run.Exec(ctx, Invocation{
		Args:  []string{"commit", "--quiet", "--no-verify", "--cleanup=verbatim", "--file", "-"},
		Stdin: strings.NewReader(req.Message),
		Env:   env,
	})
	if err != nil {
		return "", err
	}
	res, err := r.run.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// gitDate renders t in git's internal date format, which keeps the zone offset.
func gitDate(t time.Time) string {
	return fmt.Sprintf("@%d %s", t.Unix(), t.Format("-0700"))
}

// ResetHard implements secondary.VersionControl.
func (r *Repository) ResetHard(ctx context.Context) error {
	_, err := r.run.Run(ctx, "reset", "--hard", "--quiet")
	return err
}
