package filesystem_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/monosync/internal/adapters/filesystem"
	"github.com/example/monosync/internal/core/conflict"
)

func TestConflictLog_AppendsInOrder(t *testing.T) {
	ctx := context.Background()
	log := filesystem.NewConflictLog(memfs.New())

	empty, err := log.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	ts := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, log.Append(ctx, conflict.LogEntry{CommitID: "aaaa", Subject: "first", Timestamp: ts, Note: "strict and three-way failed"}))
	require.NoError(t, log.Append(ctx, conflict.LogEntry{CommitID: "bbbb", Subject: "second\nline", Timestamp: ts.Add(time.Hour)}))

	entries, err := log.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "aaaa", entries[0].CommitID)
	assert.Equal(t, "strict and three-way failed", entries[0].Note)
	assert.Equal(t, "second line", entries[1].Subject)
	assert.True(t, entries[1].Timestamp.Equal(ts.Add(time.Hour)))
}
