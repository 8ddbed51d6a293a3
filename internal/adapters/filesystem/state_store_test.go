package filesystem_test

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/monosync/internal/adapters/filesystem"
	"github.com/example/monosync/internal/core/syncerr"
	"github.com/example/monosync/internal/ports/secondary"
)

func TestStateStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := filesystem.NewStateStore(memfs.New())

	want := &secondary.OperationState{
		OriginalBranch: "feature/x",
		BaseID:         "1111111111",
		TipID:          "2222222222",
		Remaining:      []string{"aaaa", "bbbb"},
		CurrentCommit:  "cccc",
		HadConflicts:   true,
		ExportHead:     "dddd",
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStateStore_LoadWithoutState(t *testing.T) {
	store := filesystem.NewStateStore(memfs.New())
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, syncerr.ErrNoOperation)
}

func TestStateStore_SaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	store := filesystem.NewStateStore(memfs.New())

	require.NoError(t, store.Save(ctx, &secondary.OperationState{
		OriginalBranch: "main", BaseID: "b", TipID: "t",
		Remaining: []string{"one", "two"}, HadConflicts: true,
	}))
	require.NoError(t, store.Save(ctx, &secondary.OperationState{
		OriginalBranch: "main", BaseID: "b", TipID: "t",
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Remaining)
	assert.False(t, got.HadConflicts)
}

func TestStateStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := filesystem.NewStateStore(memfs.New())

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Save(ctx, &secondary.OperationState{OriginalBranch: "main", BaseID: "b", TipID: "t"}))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, syncerr.ErrNoOperation)
}

func TestStateStore_MissingRequiredFieldIsStateError(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "state/base", []byte("b\n"), 0644))

	_, err := filesystem.NewStateStore(fs).Load(context.Background())
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.State))
}

func TestStateStore_FallsBackToOldCopy(t *testing.T) {
	fs := memfs.New()
	for name, value := range map[string]string{
		"original-branch": "main",
		"base":            "b",
		"tip":             "t",
		"remaining":       "x",
	} {
		require.NoError(t, util.WriteFile(fs, "state.old/"+name, []byte(value+"\n"), 0644))
	}

	got, err := filesystem.NewStateStore(fs).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Remaining)
}
