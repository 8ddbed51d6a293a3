// Package filesystem contains filesystem-based adapter implementations.
// Everything lives under the tool's directory inside the repository's git
// directory and is accessed through a go-billy filesystem rooted there.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/example/monosync/internal/core/syncerr"
	"github.com/example/monosync/internal/ports/secondary"
)

// DirName is the tool's directory inside the git directory.
const DirName = "monosync"

const (
	stateDir     = "state"
	stateOldDir  = "state.old"
	fileOriginal = "original-branch"
	fileBase     = "base"
	fileTip      = "tip"
	fileRemain   = "remaining"
	fileCurrent  = "current"
	fileConflict = "had-conflicts"
	fileExport   = "export-head"
)

// OpenDir returns a filesystem rooted at the tool's directory for gitDir.
func OpenDir(gitDir string) billy.Filesystem {
	return osfs.New(filepath.Join(gitDir, DirName))
}

// StateStore implements secondary.OperationStateStore with one file per field.
// A save writes a fresh directory and swaps it in with renames, so a reader
// sees either the previous state or the new one.
type StateStore struct {
	fs billy.Filesystem
}

var _ secondary.OperationStateStore = (*StateStore)(nil)

// NewStateStore creates a state store on fs.
func NewStateStore(fs billy.Filesystem) *StateStore {
	return &StateStore{fs: fs}
}

const opSave syncerr.Op = "state.save"

// Save implements secondary.OperationStateStore.
func (s *StateStore) Save(ctx context.Context, state *secondary.OperationState) error {
	tmp, err := util.TempDir(s.fs, ".", "pending-")
	if err != nil {
		return syncerr.E(opSave, syncerr.State, err)
	}

	had := "false"
	if state.HadConflicts {
		had = "true"
	}
	files := []struct{ name, value string }{
		{fileOriginal, state.OriginalBranch},
		{fileBase, state.BaseID},
		{fileTip, state.TipID},
		{fileRemain, strings.Join(state.Remaining, "\n")},
		{fileCurrent, state.CurrentCommit},
		{fileConflict, had},
		{fileExport, state.ExportHead},
	}
	for _, f := range files {
		if err := util.WriteFile(s.fs, path.Join(tmp, f.name), []byte(f.value+"\n"), 0644); err != nil {
			_ = util.RemoveAll(s.fs, tmp)
			return syncerr.E(opSave, syncerr.State, fmt.Errorf("write %s: %w", f.name, err))
		}
	}

	if err := util.RemoveAll(s.fs, stateOldDir); err != nil {
		return syncerr.E(opSave, syncerr.State, err)
	}
	if s.exists(stateDir) {
		if err := s.fs.Rename(stateDir, stateOldDir); err != nil {
			return syncerr.E(opSave, syncerr.State, err)
		}
	}
	if err := s.fs.Rename(tmp, stateDir); err != nil {
		return syncerr.E(opSave, syncerr.State, err)
	}
	return util.RemoveAll(s.fs, stateOldDir)
}

const opLoad syncerr.Op = "state.load"

// Load implements secondary.OperationStateStore.
func (s *StateStore) Load(ctx context.Context) (*secondary.OperationState, error) {
	dir := stateDir
	if !s.exists(dir) {
		// A save interrupted between its two renames leaves only the old copy.
		if !s.exists(stateOldDir) {
			return nil, syncerr.ErrNoOperation
		}
		dir = stateOldDir
	}

	read := func(name string, required bool) (string, error) {
		data, err := util.ReadFile(s.fs, path.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) && !required {
			return "", nil
		}
		if err != nil {
			return "", syncerr.E(opLoad, syncerr.State, fmt.Errorf("read %s: %w", name, err))
		}
		return strings.TrimRight(string(data), "\n"), nil
	}

	state := &secondary.OperationState{}
	var err error
	if state.OriginalBranch, err = read(fileOriginal, true); err != nil {
		return nil, err
	}
	if state.BaseID, err = read(fileBase, true); err != nil {
		return nil, err
	}
	if state.TipID, err = read(fileTip, true); err != nil {
		return nil, err
	}
	remaining, err := read(fileRemain, true)
	if err != nil {
		return nil, err
	}
	if remaining != "" {
		state.Remaining = strings.Split(remaining, "\n")
	}
	if state.CurrentCommit, err = read(fileCurrent, false); err != nil {
		return nil, err
	}
	had, err := read(fileConflict, false)
	if err != nil {
		return nil, err
	}
	state.HadConflicts = had == "true"
	if state.ExportHead, err = read(fileExport, false); err != nil {
		return nil, err
	}
	return state, nil
}

// Clear implements secondary.OperationStateStore. Clearing nothing is not an error.
func (s *StateStore) Clear(ctx context.Context) error {
	for _, dir := range []string{stateDir, stateOldDir} {
		if err := util.RemoveAll(s.fs, dir); err != nil {
			return syncerr.E("state.clear", syncerr.State, err)
		}
	}
	return nil
}

func (s *StateStore) exists(name string) bool {
	_, err := s.fs.Stat(name)
	return err == nil
}
