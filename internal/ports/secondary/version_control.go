// Package secondary defines the secondary ports (driven adapters) for the application.
package secondary

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotRepository is returned when the working directory is not inside a repository.
var ErrNotRepository = errors.New("not a git repository")

// ErrRefNotFound is returned when a ref or revision cannot be resolved.
var ErrRefNotFound = errors.New("ref not found")

// RepositoryInfo describes where the command is running.
type RepositoryInfo struct {
	TopLevel   string
	GitDir     string
	AtTopLevel bool
}

// CommitRecord is the metadata of one commit.
type CommitRecord struct {
	ID             string
	ParentIDs      []string
	Message        string
	AuthorName     string
	AuthorEmail    string
	AuthorTime     time.Time
	CommitterName  string
	CommitterEmail string
	CommitterTime  time.Time
}

// FirstParentID returns the first parent, or "" for a root commit.
func (c CommitRecord) FirstParentID() string {
	if len(c.ParentIDs) == 0 {
		return ""
	}
	return c.ParentIDs[0]
}

// Subject returns the first line of the message.
func (c CommitRecord) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// PatchFile summarizes one file touched by a patch.
type PatchFile struct {
	OldPath string
	NewPath string
	Op      string // "add", "delete", "modify", "rename", "copy", "mode"
	Binary  bool
}

// Path returns the path the change lands on.
func (f PatchFile) Path() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// Patch is the net content diff between two commits.
type Patch struct {
	From  string
	To    string
	Data  []byte
	Files []PatchFile
}

// Empty reports whether the patch carries no content change.
func (p Patch) Empty() bool {
	return len(p.Data) == 0 && len(p.Files) == 0
}

// Paths returns the paths the patch touches.
func (p Patch) Paths() []string {
	paths := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		paths = append(paths, f.Path())
	}
	return paths
}

// ApplyMode selects a rung of the apply ladder.
type ApplyMode int

const (
	// ApplyStrict requires an exact context match against the index.
	ApplyStrict ApplyMode = iota
	// ApplyThreeWay falls back to a three-way merge using the recorded blobs.
	ApplyThreeWay
)

func (m ApplyMode) String() string {
	if m == ApplyThreeWay {
		return "three-way"
	}
	return "strict"
}

// ApplyOutcome is the tagged result of applying a patch.
type ApplyOutcome int

const (
	// Applied means the patch landed cleanly in the index.
	Applied ApplyOutcome = iota
	// AppliedWithConflictMarkers means a three-way merge left unresolved regions.
	AppliedWithConflictMarkers
	// Rejected means nothing was applied; the index is unchanged.
	Rejected
)

func (o ApplyOutcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case AppliedWithConflictMarkers:
		return "applied-with-conflict-markers"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// CommitRequest carries the provenance a replayed commit keeps.
type CommitRequest struct {
	Message       string
	AuthorName    string
	AuthorEmail   string
	AuthorTime    time.Time
	CommitterTime time.Time
}

// MergeRequest merges Source into Branch after fast-forwarding Branch to Upstream.
type MergeRequest struct {
	Branch   string
	Upstream string
	Source   string
	Message  string
}

// VersionControl is the capability interface over the underlying VCS.
// All calls block; timeouts are the implementation's concern.
type VersionControl interface {
	// Environment
	Repository(ctx context.Context) (RepositoryInfo, error)
	CurrentBranch(ctx context.Context) (branch string, detached bool, err error)
	IsClean(ctx context.Context) (bool, error)

	// Refs and history
	ResolveRef(ctx context.Context, ref string) (string, error)
	UpdateRef(ctx context.Context, ref, commit string) error
	Fetch(ctx context.Context, remote string) error
	// FirstParentLog walks first parents from tip, newest first, stopping before
	// stop. With an empty or unreachable stop the walk runs to the root.
	FirstParentLog(ctx context.Context, tip, stop string) ([]CommitRecord, error)
	Commit(ctx context.Context, id string) (CommitRecord, error)
	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)
	MergeBase(ctx context.Context, a, b string) (string, error)

	// Patches and the index
	Diff(ctx context.Context, from, to string) (Patch, error)
	ApplyPatch(ctx context.Context, patch Patch, mode ApplyMode) (ApplyOutcome, error)
	HasStagedChanges(ctx context.Context) (bool, error)
	// StageTracked stages working tree changes to tracked paths only.
	StageTracked(ctx context.Context) error
	CommitIndex(ctx context.Context, req CommitRequest) (string, error)
	ResetHard(ctx context.Context) error
	AddNote(ctx context.Context, notesRef, commit, body string) error

	// Branches
	CreateBranch(ctx context.Context, name, at string) error
	Checkout(ctx context.Context, branch string, force bool) error
	DeleteBranch(ctx context.Context, name string) error
	MergeInto(ctx context.Context, req MergeRequest) error
	PushRef(ctx context.Context, remote, commit, ref string) error
	PushBranch(ctx context.Context, remote, branch string) error

	// Target system
	RebaseMirror(ctx context.Context, mirrorBranch, trackingRef string) error
	SubmitToTarget(ctx context.Context, branch string) error
}
