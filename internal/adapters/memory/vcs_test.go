package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/monosync/internal/adapters/memory"
	"github.com/example/monosync/internal/ports/secondary"
)

func TestRepo_FirstParentLogSkipsSideBranches(t *testing.T) {
	ctx := context.Background()
	r := memory.NewRepo()
	root := r.Ref("refs/heads/main")

	side := r.CommitDetached(root, map[string]*string{"vendor.txt": memory.Str("v1\n")}, "vendor drop")
	a := r.CommitOn("main", map[string]*string{"a.txt": memory.Str("a\n")}, "add a")
	m := r.MergeOn("main", side, "merge vendor")

	log, err := r.FirstParentLog(ctx, m, "")
	require.NoError(t, err)

	var ids []string
	for _, c := range log {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{m, a, root}, ids)

	log, err = r.FirstParentLog(ctx, m, a)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, m, log[0].ID)
}

func TestRepo_StrictApplyRejectsMismatch(t *testing.T) {
	ctx := context.Background()
	r := memory.NewRepo()
	base := r.Ref("refs/heads/main")
	edit := r.CommitDetached(base, map[string]*string{"README.md": memory.Str("changed\n")}, "edit")
	patch, err := r.Diff(ctx, base, edit)
	require.NoError(t, err)

	r.CommitOn("main", map[string]*string{"README.md": memory.Str("diverged\n")}, "diverge")

	out, err := r.ApplyPatch(ctx, patch, secondary.ApplyStrict)
	require.NoError(t, err)
	assert.Equal(t, secondary.Rejected, out)
	clean, _ := r.IsClean(ctx)
	assert.True(t, clean)

	out, err = r.ApplyPatch(ctx, patch, secondary.ApplyThreeWay)
	require.NoError(t, err)
	assert.Equal(t, secondary.AppliedWithConflictMarkers, out)
	assert.Contains(t, r.Worktree()["README.md"], "<<<<<<<")
}

func TestRepo_SubmitRejectsEmptyChange(t *testing.T) {
	ctx := context.Background()
	r := memory.NewRepo()
	head := r.Ref("refs/heads/main")
	r.InitTarget("refs/remotes/p4/master", head)
	require.NoError(t, r.CreateBranch(ctx, "export", "refs/remotes/p4/master"))
	require.NoError(t, r.Checkout(ctx, "export", false))

	_, err := r.CommitIndex(ctx, secondary.CommitRequest{Message: "noop"})
	require.NoError(t, err)

	assert.Error(t, r.SubmitToTarget(ctx, "export"))
}

func TestRepo_RebaseMirrorImportsTargetEdits(t *testing.T) {
	ctx := context.Background()
	r := memory.NewRepo()
	r.InitTarget("refs/remotes/p4/master", r.Ref("refs/heads/main"))
	r.TargetEdit(map[string]*string{"hotfix.txt": memory.Str("fix\n")}, "hotfix in target")

	require.NoError(t, r.RebaseMirror(ctx, "mirror", "refs/remotes/p4/master"))

	tip := r.Ref("refs/heads/mirror")
	assert.Equal(t, "fix\n", r.TreeOf(tip)["hotfix.txt"])
	assert.Contains(t, r.MessageOf(tip), "hotfix in target")
}

func TestRepo_RebaseMirrorWithoutTarget(t *testing.T) {
	r := memory.NewRepo()
	err := r.RebaseMirror(context.Background(), "mirror", "refs/remotes/p4/master")
	assert.ErrorIs(t, err, secondary.ErrRefNotFound)
}

func TestRepo_MergeIntoCreatesMergeCommit(t *testing.T) {
	ctx := context.Background()
	r := memory.NewRepo()
	root := r.Ref("refs/heads/main")
	r.InitTarget("refs/remotes/p4/master", root)
	r.TargetEdit(map[string]*string{"t.txt": memory.Str("t\n")}, "target change")
	require.NoError(t, r.RebaseMirror(ctx, "mirror", "refs/remotes/p4/master"))
	local := r.CommitOn("main", map[string]*string{"m.txt": memory.Str("m\n")}, "main change")

	require.NoError(t, r.MergeInto(ctx, secondary.MergeRequest{Branch: "main", Source: "mirror", Message: "merge mirror"}))

	head := r.Ref("refs/heads/main")
	c, err := r.Commit(ctx, head)
	require.NoError(t, err)
	assert.Equal(t, local, c.FirstParentID())
	tree := r.TreeOf(head)
	assert.Equal(t, "t\n", tree["t.txt"])
	assert.Equal(t, "m\n", tree["m.txt"])
}

func TestRepo_StageTrackedSkipsUntracked(t *testing.T) {
	ctx := context.Background()
	r := memory.NewRepo()
	r.WriteWorktree("README.md", "edited\n")
	r.WriteWorktree("build.log", "noise\n")

	require.NoError(t, r.StageTracked(ctx))
	id, err := r.CommitIndex(ctx, secondary.CommitRequest{Message: "edit"})
	require.NoError(t, err)

	tree := r.TreeOf(id)
	assert.Equal(t, "edited\n", tree["README.md"])
	assert.NotContains(t, tree, "build.log")
}
