// Package memory contains in-memory implementations of the secondary ports.
// The repository fake models just enough of git, a remote and a target system to
// drive the sync engine end to end without touching disk.
package memory

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/example/monosync/internal/ports/secondary"
)

// Tree maps paths to file contents.
type Tree map[string]string

func (t Tree) clone() Tree {
	if t == nil {
		return Tree{}
	}
	return maps.Clone(t)
}

type commit struct {
	id        string
	parents   []string
	tree      Tree
	message   string
	author    string
	email     string
	authored  time.Time
	committed time.Time
}

// TargetRevision is one revision in the fake target system.
type TargetRevision struct {
	Number  int
	Tree    Tree
	Message string
	Author  string
}

type target struct {
	configured  bool
	trackingRef string
	revisions   []TargetRevision
	imported    int
}

// Repo is an in-memory repository with one remote and one target system.
type Repo struct {
	commits  map[string]*commit
	refs     map[string]string
	head     string
	index    Tree
	worktree Tree
	// unmerged holds paths a three-way apply left in conflict; they count as tracked.
	unmerged map[string]bool
	notes    map[string]map[string]string

	remoteName  string
	remoteHeads map[string]string
	target      target

	seq   int
	clock time.Time

	// NotRepository and NotTopLevel simulate running outside the top level.
	NotRepository bool
	NotTopLevel   bool

	// Failure injection.
	FailSubmit  error
	FailFetch   error
	FailRebase  error
	FailPushRef error

	// Calls records port calls in order, for sequencing assertions.
	Calls []string
}

var _ secondary.VersionControl = (*Repo)(nil)

// NewRepo creates a repository with a root commit on main, published to origin.
func NewRepo() *Repo {
	r := &Repo{
		commits:     map[string]*commit{},
		refs:        map[string]string{},
		notes:       map[string]map[string]string{},
		remoteName:  "origin",
		remoteHeads: map[string]string{},
		clock:       time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	root := r.newCommit(nil, Tree{"README.md": "monorepo\n"}, "Initial commit", "Root", "root@example.com")
	r.refs["refs/heads/main"] = root
	r.head = "main"
	r.index = Tree{"README.md": "monorepo\n"}
	r.worktree = r.index.clone()
	r.remoteHeads["main"] = root
	return r
}

func (r *Repo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *Repo) newCommit(parents []string, tree Tree, message, author, email string) string {
	r.seq++
	now := r.tick()
	h := sha1.New()
	fmt.Fprintf(h, "%d\x00%v\x00%s\x00%s", r.seq, parents, message, author)
	for _, p := range slices.Sorted(maps.Keys(tree)) {
		fmt.Fprintf(h, "\x00%s=%s", p, tree[p])
	}
	id := hex.EncodeToString(h.Sum(nil))
	r.commits[id] = &commit{
		id:        id,
		parents:   slices.Clone(parents),
		tree:      tree.clone(),
		message:   message,
		author:    author,
		email:     email,
		authored:  now,
		committed: now,
	}
	return id
}

// --- test helpers -----------------------------------------------------------

// CommitOn records a commit on branch applying changes to its tree. A nil value
// deletes the path. The worktree follows when branch is checked out.
func (r *Repo) CommitOn(branch string, changes map[string]*string, message string) string {
	parent := r.refs["refs/heads/"+branch]
	var tree Tree
	if parent != "" {
		tree = r.commits[parent].tree.clone()
	} else {
		tree = Tree{}
	}
	for path, content := range changes {
		if content == nil {
			delete(tree, path)
			continue
		}
		tree[path] = *content
	}
	var parents []string
	if parent != "" {
		parents = []string{parent}
	}
	id := r.newCommit(parents, tree, message, "Dev", "dev@example.com")
	r.refs["refs/heads/"+branch] = id
	if r.head == branch {
		r.index = tree.clone()
		r.worktree = tree.clone()
	}
	return id
}

// MergeOn records a merge commit on branch whose second parent is other and whose
// tree is the union of both trees, other winning on overlap.
func (r *Repo) MergeOn(branch, other, message string) string {
	first := r.refs["refs/heads/"+branch]
	tree := r.commits[first].tree.clone()
	for p, c := range r.commits[other].tree {
		tree[p] = c
	}
	id := r.newCommit([]string{first, other}, tree, message, "Dev", "dev@example.com")
	r.refs["refs/heads/"+branch] = id
	if r.head == branch {
		r.index = tree.clone()
		r.worktree = tree.clone()
	}
	return id
}

// CommitDetached records a commit outside any branch, for building side histories.
func (r *Repo) CommitDetached(parent string, changes map[string]*string, message string) string {
	tree := Tree{}
	var parents []string
	if parent != "" {
		tree = r.commits[parent].tree.clone()
		parents = []string{parent}
	}
	for path, content := range changes {
		if content == nil {
			delete(tree, path)
			continue
		}
		tree[path] = *content
	}
	return r.newCommit(parents, tree, message, "Vendor", "vendor@example.com")
}

// Publish pushes a local branch to the remote.
func (r *Repo) Publish(branch string) {
	r.remoteHeads[branch] = r.refs["refs/heads/"+branch]
}

// RemoteHead returns the remote's head for branch.
func (r *Repo) RemoteHead(branch string) string {
	return r.remoteHeads[branch]
}

// Ref returns the commit a ref points to, or "".
func (r *Repo) Ref(ref string) string {
	return r.refs[ref]
}

// Head returns the current branch.
func (r *Repo) Head() string {
	return r.head
}

// TreeOf returns a copy of the tree of a commit.
func (r *Repo) TreeOf(id string) Tree {
	c, ok := r.commits[id]
	if !ok {
		return nil
	}
	return c.tree.clone()
}

// MessageOf returns the full message of a commit.
func (r *Repo) MessageOf(id string) string {
	if c, ok := r.commits[id]; ok {
		return c.message
	}
	return ""
}

// Worktree returns a copy of the working tree.
func (r *Repo) Worktree() Tree {
	return r.worktree.clone()
}

// WriteWorktree edits a working tree file, as an operator resolving a conflict would.
func (r *Repo) WriteWorktree(path, content string) {
	r.worktree[path] = content
}

// Notes returns the notes attached under notesRef.
func (r *Repo) Notes(notesRef string) map[string]string {
	return maps.Clone(r.notes[notesRef])
}

// InitTarget configures the target system with a first revision mirroring the
// given commit and imports it under trackingRef.
func (r *Repo) InitTarget(trackingRef, from string) {
	r.target = target{
		configured:  true,
		trackingRef: trackingRef,
		revisions: []TargetRevision{{
			Number:  1,
			Tree:    r.commits[from].tree.clone(),
			Message: "Initial import",
			Author:  "p4admin",
		}},
		imported: 1,
	}
	r.refs[trackingRef] = from
}

// TargetEdit records a revision made directly in the target system.
func (r *Repo) TargetEdit(changes map[string]*string, message string) {
	last := r.target.revisions[len(r.target.revisions)-1]
	tree := last.Tree.clone()
	for path, content := range changes {
		if content == nil {
			delete(tree, path)
			continue
		}
		tree[path] = *content
	}
	r.target.revisions = append(r.target.revisions, TargetRevision{
		Number:  len(r.target.revisions) + 1,
		Tree:    tree,
		Message: message,
		Author:  "p4user",
	})
}

// TargetRevisions returns the revisions of the target system.
func (r *Repo) TargetRevisions() []TargetRevision {
	return slices.Clone(r.target.revisions)
}

// Str returns a pointer to s, for change maps.
func Str(s string) *string { return &s }

// --- environment -------------------------------------------------------------

func (r *Repo) Repository(ctx context.Context) (secondary.RepositoryInfo, error) {
	r.Calls = append(r.Calls, "repository")
	if r.NotRepository {
		return secondary.RepositoryInfo{}, secondary.ErrNotRepository
	}
	return secondary.RepositoryInfo{TopLevel: "/repo", GitDir: "/repo/.git", AtTopLevel: !r.NotTopLevel}, nil
}

func (r *Repo) CurrentBranch(ctx context.Context) (string, bool, error) {
	if r.head == "" {
		return "", true, nil
	}
	return r.head, false, nil
}

func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	headTree := r.headTree()
	return maps.Equal(headTree, r.index) && maps.Equal(r.index, r.worktree), nil
}

func (r *Repo) headTree() Tree {
	id := r.refs["refs/heads/"+r.head]
	if c, ok := r.commits[id]; ok {
		return c.tree
	}
	return Tree{}
}

// --- refs and history --------------------------------------------------------

func (r *Repo) ResolveRef(ctx context.Context, ref string) (string, error) {
	candidates := []string{ref, "refs/heads/" + ref, "refs/remotes/" + ref}
	for _, c := range candidates {
		if id, ok := r.refs[c]; ok {
			return id, nil
		}
	}
	if _, ok := r.commits[ref]; ok {
		return ref, nil
	}
	return "", fmt.Errorf("%s: %w", ref, secondary.ErrRefNotFound)
}

func (r *Repo) UpdateRef(ctx context.Context, ref, id string) error {
	r.Calls = append(r.Calls, "update-ref "+ref)
	if _, ok := r.commits[id]; !ok {
		return fmt.Errorf("%s: %w", id, secondary.ErrRefNotFound)
	}
	r.refs[ref] = id
	return nil
}

func (r *Repo) Fetch(ctx context.Context, remote string) error {
	r.Calls = append(r.Calls, "fetch")
	if r.FailFetch != nil {
		return r.FailFetch
	}
	if remote != r.remoteName {
		return fmt.Errorf("unknown remote %q", remote)
	}
	for ref := range r.refs {
		if strings.HasPrefix(ref, "refs/remotes/"+remote+"/") {
			delete(r.refs, ref)
		}
	}
	for branch, id := range r.remoteHeads {
		r.refs["refs/remotes/"+remote+"/"+branch] = id
	}
	return nil
}

func (r *Repo) FirstParentLog(ctx context.Context, tip, stop string) ([]secondary.CommitRecord, error) {
	var out []secondary.CommitRecord
	id := tip
	for id != "" && id != stop {
		c, ok := r.commits[id]
		if !ok {
			return nil, fmt.Errorf("%s: %w", id, secondary.ErrRefNotFound)
		}
		out = append(out, record(c))
		if len(c.parents) == 0 {
			break
		}
		id = c.parents[0]
	}
	return out, nil
}

func record(c *commit) secondary.CommitRecord {
	return secondary.CommitRecord{
		ID:             c.id,
		ParentIDs:      slices.Clone(c.parents),
		Message:        c.message,
		AuthorName:     c.author,
		AuthorEmail:    c.email,
		AuthorTime:     c.authored,
		CommitterName:  c.author,
		CommitterEmail: c.email,
		CommitterTime:  c.committed,
	}
}

func (r *Repo) Commit(ctx context.Context, id string) (secondary.CommitRecord, error) {
	c, ok := r.commits[id]
	if !ok {
		return secondary.CommitRecord{}, fmt.Errorf("%s: %w", id, secondary.ErrRefNotFound)
	}
	return record(c), nil
}

func (r *Repo) ancestors(id string) map[string]int {
	seen := map[string]int{}
	queue := []string{id}
	seen[id] = 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range r.commits[cur].parents {
			if _, ok := seen[p]; !ok {
				seen[p] = seen[cur] + 1
				queue = append(queue, p)
			}
		}
	}
	return seen
}

func (r *Repo) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	if _, ok := r.commits[descendant]; !ok {
		return false, fmt.Errorf("%s: %w", descendant, secondary.ErrRefNotFound)
	}
	_, ok := r.ancestors(descendant)[ancestor]
	return ok, nil
}

func (r *Repo) MergeBase(ctx context.Context, a, b string) (string, error) {
	if _, ok := r.commits[a]; !ok {
		return "", fmt.Errorf("%s: %w", a, secondary.ErrRefNotFound)
	}
	if _, ok := r.commits[b]; !ok {
		return "", fmt.Errorf("%s: %w", b, secondary.ErrRefNotFound)
	}
	ofA := r.ancestors(a)
	ofB := r.ancestors(b)
	best, bestDist := "", -1
	for id, d := range ofB {
		if _, ok := ofA[id]; ok && (bestDist < 0 || d < bestDist) {
			best, bestDist = id, d
		}
	}
	if best == "" {
		return "", fmt.Errorf("no common ancestor of %s and %s: %w", a, b, secondary.ErrRefNotFound)
	}
	return best, nil
}

// --- patches -----------------------------------------------------------------

type fileChange struct {
	Path string  `json:"path"`
	Old  *string `json:"old,omitempty"`
	New  *string `json:"new,omitempty"`
}

func (r *Repo) Diff(ctx context.Context, from, to string) (secondary.Patch, error) {
	r.Calls = append(r.Calls, "diff")
	var before Tree
	if from != "" {
		c, ok := r.commits[from]
		if !ok {
			return secondary.Patch{}, fmt.Errorf("%s: %w", from, secondary.ErrRefNotFound)
		}
		before = c.tree
	}
	c, ok := r.commits[to]
	if !ok {
		return secondary.Patch{}, fmt.Errorf("%s: %w", to, secondary.ErrRefNotFound)
	}
	after := c.tree

	var changes []fileChange
	var files []secondary.PatchFile
	paths := map[string]bool{}
	for p := range before {
		paths[p] = true
	}
	for p := range after {
		paths[p] = true
	}
	for _, p := range slices.Sorted(maps.Keys(paths)) {
		oldC, hadOld := before[p]
		newC, hasNew := after[p]
		switch {
		case hadOld && hasNew && oldC == newC:
			continue
		case hadOld && hasNew:
			changes = append(changes, fileChange{Path: p, Old: Str(oldC), New: Str(newC)})
			files = append(files, secondary.PatchFile{OldPath: p, NewPath: p, Op: "modify"})
		case hasNew:
			changes = append(changes, fileChange{Path: p, New: Str(newC)})
			files = append(files, secondary.PatchFile{NewPath: p, Op: "add"})
		default:
			changes = append(changes, fileChange{Path: p, Old: Str(oldC)})
			files = append(files, secondary.PatchFile{OldPath: p, Op: "delete"})
		}
	}

	p := secondary.Patch{From: from, To: to, Files: files}
	if len(changes) > 0 {
		data, err := json.Marshal(changes)
		if err != nil {
			return secondary.Patch{}, err
		}
		p.Data = data
	}
	return p, nil
}

func eq(content string, ok bool, want *string) bool {
	if want == nil {
		return !ok
	}
	return ok && content == *want
}

func (r *Repo) ApplyPatch(ctx context.Context, patch secondary.Patch, mode secondary.ApplyMode) (secondary.ApplyOutcome, error) {
	r.Calls = append(r.Calls, "apply "+mode.String())
	var changes []fileChange
	if len(patch.Data) > 0 {
		if err := json.Unmarshal(patch.Data, &changes); err != nil {
			return secondary.Rejected, fmt.Errorf("corrupt patch: %w", err)
		}
	}

	if mode == secondary.ApplyStrict {
		for _, ch := range changes {
			cur, ok := r.index[ch.Path]
			if !eq(cur, ok, ch.Old) {
				return secondary.Rejected, nil
			}
		}
		for _, ch := range changes {
			setPath(r.index, ch.Path, ch.New)
			setPath(r.worktree, ch.Path, ch.New)
		}
		return secondary.Applied, nil
	}

	conflicted := false
	for _, ch := range changes {
		cur, ok := r.index[ch.Path]
		switch {
		case eq(cur, ok, ch.Old):
			setPath(r.index, ch.Path, ch.New)
			setPath(r.worktree, ch.Path, ch.New)
		case eq(cur, ok, ch.New):
			// already applied
		default:
			conflicted = true
			theirs := ""
			if ch.New != nil {
				theirs = *ch.New
			}
			r.worktree[ch.Path] = "<<<<<<< ours\n" + cur + "=======\n" + theirs + ">>>>>>> theirs\n"
			if r.unmerged == nil {
				r.unmerged = map[string]bool{}
			}
			r.unmerged[ch.Path] = true
		}
	}
	if conflicted {
		return secondary.AppliedWithConflictMarkers, nil
	}
	return secondary.Applied, nil
}

func setPath(t Tree, path string, content *string) {
	if content == nil {
		delete(t, path)
		return
	}
	t[path] = *content
}

func (r *Repo) HasStagedChanges(ctx context.Context) (bool, error) {
	return !maps.Equal(r.headTree(), r.index), nil
}

// StageTracked updates the index from the working tree for paths the index
// already knows about. Files that exist only in the working tree stay untracked.
func (r *Repo) StageTracked(ctx context.Context) error {
	for p := range r.index {
		if c, ok := r.worktree[p]; ok {
			r.index[p] = c
		} else {
			delete(r.index, p)
		}
	}
	for p := range r.unmerged {
		if c, ok := r.worktree[p]; ok {
			r.index[p] = c
		}
	}
	r.unmerged = nil
	return nil
}

func (r *Repo) CommitIndex(ctx context.Context, req secondary.CommitRequest) (string, error) {
	r.Calls = append(r.Calls, "commit")
	if r.head == "" {
		return "", errors.New("cannot commit on a detached HEAD")
	}
	parent := r.refs["refs/heads/"+r.head]
	id := r.newCommit([]string{parent}, r.index, req.Message, req.AuthorName, req.AuthorEmail)
	c := r.commits[id]
	c.authored = req.AuthorTime
	c.committed = req.CommitterTime
	r.refs["refs/heads/"+r.head] = id
	return id, nil
}

func (r *Repo) ResetHard(ctx context.Context) error {
	r.unmerged = nil
	r.index = r.headTree().clone()
	r.worktree = r.index.clone()
	return nil
}

func (r *Repo) AddNote(ctx context.Context, notesRef, id, body string) error {
	r.Calls = append(r.Calls, "note")
	if _, ok := r.commits[id]; !ok {
		return fmt.Errorf("%s: %w", id, secondary.ErrRefNotFound)
	}
	if r.notes[notesRef] == nil {
		r.notes[notesRef] = map[string]string{}
	}
	r.notes[notesRef][id] = body
	return nil
}

// --- branches ----------------------------------------------------------------

func (r *Repo) CreateBranch(ctx context.Context, name, at string) error {
	r.Calls = append(r.Calls, "branch "+name)
	id, err := r.ResolveRef(ctx, at)
	if err != nil {
		return err
	}
	r.refs["refs/heads/"+name] = id
	return nil
}

func (r *Repo) Checkout(ctx context.Context, branch string, force bool) error {
	r.Calls = append(r.Calls, "checkout "+branch)
	id, ok := r.refs["refs/heads/"+branch]
	if !ok {
		return fmt.Errorf("branch %s: %w", branch, secondary.ErrRefNotFound)
	}
	if !force {
		if clean, _ := r.IsClean(ctx); !clean {
			return errors.New("checkout would overwrite local changes")
		}
	}
	r.head = branch
	r.index = r.commits[id].tree.clone()
	r.worktree = r.index.clone()
	r.unmerged = nil
	return nil
}

func (r *Repo) DeleteBranch(ctx context.Context, name string) error {
	r.Calls = append(r.Calls, "delete-branch "+name)
	if name == r.head {
		return fmt.Errorf("cannot delete the checked out branch %s", name)
	}
	if _, ok := r.refs["refs/heads/"+name]; !ok {
		return fmt.Errorf("branch %s: %w", name, secondary.ErrRefNotFound)
	}
	delete(r.refs, "refs/heads/"+name)
	return nil
}

func (r *Repo) MergeInto(ctx context.Context, req secondary.MergeRequest) error {
	r.Calls = append(r.Calls, "merge "+req.Source+" into "+req.Branch)
	if err := r.Checkout(ctx, req.Branch, false); err != nil {
		return err
	}
	head := r.refs["refs/heads/"+req.Branch]

	if req.Upstream != "" {
		up, err := r.ResolveRef(ctx, req.Upstream)
		if err != nil {
			return err
		}
		if ok, _ := r.IsAncestor(ctx, head, up); ok {
			head = up
		} else if ok, _ := r.IsAncestor(ctx, up, head); !ok {
			return fmt.Errorf("%s has diverged from %s", req.Branch, req.Upstream)
		}
	}

	src, err := r.ResolveRef(ctx, req.Source)
	if err != nil {
		return err
	}
	if ok, _ := r.IsAncestor(ctx, src, head); ok {
		r.setBranchHead(req.Branch, head)
		return nil
	}

	base, err := r.MergeBase(ctx, head, src)
	if err != nil {
		return err
	}
	merged, err := mergeTrees(r.commits[base].tree, r.commits[head].tree, r.commits[src].tree)
	if err != nil {
		return err
	}
	id := r.newCommit([]string{head, src}, merged, req.Message, "Monosync", "monosync@example.com")
	r.setBranchHead(req.Branch, id)
	return nil
}

func (r *Repo) setBranchHead(branch, id string) {
	r.refs["refs/heads/"+branch] = id
	if r.head == branch {
		r.index = r.commits[id].tree.clone()
		r.worktree = r.index.clone()
	}
}

func mergeTrees(base, ours, theirs Tree) (Tree, error) {
	out := Tree{}
	paths := map[string]bool{}
	for _, t := range []Tree{base, ours, theirs} {
		for p := range t {
			paths[p] = true
		}
	}
	for p := range paths {
		b, hasB := base[p]
		o, hasO := ours[p]
		t, hasT := theirs[p]
		switch {
		case hasO == hasT && o == t:
			if hasO {
				out[p] = o
			}
		case hasO == hasB && o == b:
			if hasT {
				out[p] = t
			}
		case hasT == hasB && t == b:
			if hasO {
				out[p] = o
			}
		default:
			return nil, fmt.Errorf("merge conflict in %s", p)
		}
	}
	return out, nil
}

func (r *Repo) PushRef(ctx context.Context, remote, id, ref string) error {
	r.Calls = append(r.Calls, "push-ref "+ref)
	if r.FailPushRef != nil {
		return r.FailPushRef
	}
	if remote != r.remoteName {
		return fmt.Errorf("unknown remote %q", remote)
	}
	branch, ok := strings.CutPrefix(ref, "refs/heads/")
	if !ok {
		return fmt.Errorf("unsupported ref %s", ref)
	}
	r.remoteHeads[branch] = id
	return nil
}

func (r *Repo) PushBranch(ctx context.Context, remote, branch string) error {
	r.Calls = append(r.Calls, "push "+branch)
	id, ok := r.refs["refs/heads/"+branch]
	if !ok {
		return fmt.Errorf("branch %s: %w", branch, secondary.ErrRefNotFound)
	}
	if cur, ok := r.remoteHeads[branch]; ok {
		if ff, _ := r.IsAncestor(ctx, cur, id); !ff {
			return fmt.Errorf("push of %s rejected: non-fast-forward", branch)
		}
	}
	r.remoteHeads[branch] = id
	r.refs["refs/remotes/"+remote+"/"+branch] = id
	return nil
}

// --- target system -----------------------------------------------------------

func (r *Repo) RebaseMirror(ctx context.Context, mirrorBranch, trackingRef string) error {
	r.Calls = append(r.Calls, "rebase-mirror")
	if r.FailRebase != nil {
		return r.FailRebase
	}
	if !r.target.configured || r.target.trackingRef != trackingRef {
		return fmt.Errorf("tracking ref %s: %w", trackingRef, secondary.ErrRefNotFound)
	}
	r.importTarget()
	r.refs["refs/heads/"+mirrorBranch] = r.refs[trackingRef]
	if r.head == mirrorBranch {
		r.index = r.commits[r.refs[trackingRef]].tree.clone()
		r.worktree = r.index.clone()
	}
	return nil
}

func (r *Repo) importTarget() {
	for r.target.imported < len(r.target.revisions) {
		rev := r.target.revisions[r.target.imported]
		parent := r.refs[r.target.trackingRef]
		msg := fmt.Sprintf("%s\n\n[target: change = %d]", rev.Message, rev.Number)
		id := r.newCommit([]string{parent}, rev.Tree, msg, rev.Author, rev.Author+"@target")
		r.refs[r.target.trackingRef] = id
		r.target.imported++
	}
}

func (r *Repo) SubmitToTarget(ctx context.Context, branch string) error {
	r.Calls = append(r.Calls, "submit "+branch)
	if r.FailSubmit != nil {
		return r.FailSubmit
	}
	if !r.target.configured {
		return fmt.Errorf("tracking ref: %w", secondary.ErrRefNotFound)
	}
	tracking := r.refs[r.target.trackingRef]
	tip := r.refs["refs/heads/"+branch]
	var pending []*commit
	for id := tip; id != "" && id != tracking; {
		c := r.commits[id]
		pending = append(pending, c)
		if len(c.parents) == 0 {
			break
		}
		id = c.parents[0]
	}
	slices.Reverse(pending)
	for _, c := range pending {
		last := r.target.revisions[len(r.target.revisions)-1]
		if maps.Equal(last.Tree, c.tree) {
			return fmt.Errorf("target rejected empty change for %s", c.id[:10])
		}
		r.target.revisions = append(r.target.revisions, TargetRevision{
			Number:  len(r.target.revisions) + 1,
			Tree:    c.tree.clone(),
			Message: c.message,
			Author:  c.author,
		})
	}
	return nil
}
