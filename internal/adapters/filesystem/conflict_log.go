package filesystem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/example/monosync/internal/core/conflict"
	"github.com/example/monosync/internal/ports/secondary"
)

// ConflictLogFile is the conflict log's file name.
const ConflictLogFile = "conflicts.log"

// ConflictLog implements secondary.ConflictLog as an append-only text file.
type ConflictLog struct {
	fs billy.Filesystem
}

var _ secondary.ConflictLog = (*ConflictLog)(nil)

// NewConflictLog creates a conflict log on fs.
func NewConflictLog(fs billy.Filesystem) *ConflictLog {
	return &ConflictLog{fs: fs}
}

// Append adds one entry at the end of the log.
func (l *ConflictLog) Append(ctx context.Context, entry conflict.LogEntry) error {
	f, err := l.fs.OpenFile(ConflictLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open conflict log: %w", err)
	}
	if _, err := f.Write([]byte(entry.Line())); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to conflict log: %w", err)
	}
	return f.Close()
}

// Entries returns all entries, oldest first. A missing log has no entries.
func (l *ConflictLog) Entries(ctx context.Context) ([]conflict.LogEntry, error) {
	f, err := l.fs.Open(ConflictLogFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open conflict log: %w", err)
	}
	defer f.Close()

	var entries []conflict.LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := conflict.ParseLine(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
