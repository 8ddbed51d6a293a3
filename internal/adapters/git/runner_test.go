package git_test

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/monosync/internal/adapters/git"
)

func TestRepository_LogsGitCommandsAtDebug(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	dir := t.TempDir()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	repo, err := git.NewRepository(dir, nil, logger)
	require.NoError(t, err)

	_, _ = repo.Repository(ctx)

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "rev-parse --show-toplevel")
}

func TestRunner_SilentAboveDebug(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	runner, err := git.NewRunner(t.TempDir())
	require.NoError(t, err)

	var buf bytes.Buffer
	runner.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	_, err = runner.Run(context.Background(), "--version")
	require.NoError(t, err)

	assert.Empty(t, buf.String())
}
