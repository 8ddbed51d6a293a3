// Package plan contains the pure commit planning logic.
// This is part of the Functional Core - no I/O, only pure functions.
package plan

import (
	"fmt"
	"time"
)

// Identity is an author or committer identity.
type Identity struct {
	Name  string
	Email string
}

func (i Identity) String() string {
	return fmt.Sprintf("%s <%s>", i.Name, i.Email)
}

// Entry is one commit to export. Entries are never mutated once planned.
type Entry struct {
	ID            string
	FirstParentID string
	Subject       string
	Author        Identity
	AuthorTime    time.Time
	CommitterTime time.Time
}

// ShortID returns the abbreviated commit id used in progress output.
func (e Entry) ShortID() string {
	return Abbrev(e.ID)
}

// Abbrev shortens a commit id to 10 characters.
func Abbrev(id string) string {
	if len(id) > 10 {
		return id[:10]
	}
	return id
}

// PlanInput contains the inputs needed to generate an export plan.
// Chain is the first-parent chain of Tip, newest first, as produced by the
// version-control port. The walk may include Marker or stop just before it.
type PlanInput struct {
	Marker string
	Tip    string
	Chain  []Entry
}

// Plan is the ordered list of commits to export, oldest first.
type Plan struct {
	Marker  string
	Tip     string
	Entries []Entry
}

// Empty reports whether there is nothing to export.
func (p Plan) Empty() bool {
	return len(p.Entries) == 0
}

// IDs returns the planned commit ids in export order.
func (p Plan) IDs() []string {
	ids := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// GeneratePlan cuts the first-parent chain at the marker and returns it oldest first.
// The marker itself is excluded. When the tip equals the marker the plan is empty.
// A chain that never reaches the marker is an error: the marker is not on the
// first-parent path of the tip and the plan would replay unrelated history.
func GeneratePlan(input PlanInput) (Plan, error) {
	p := Plan{Marker: input.Marker, Tip: input.Tip}
	if input.Tip == input.Marker {
		return p, nil
	}

	var collected []Entry
	found := input.Marker == ""
	for _, e := range input.Chain {
		if e.ID == input.Marker {
			found = true
			break
		}
		collected = append(collected, e)
		if input.Marker != "" && e.FirstParentID == input.Marker {
			found = true
			break
		}
	}
	if !found {
		return Plan{}, fmt.Errorf("marker %s not found on the first-parent chain of %s", Abbrev(input.Marker), Abbrev(input.Tip))
	}

	p.Entries = make([]Entry, 0, len(collected))
	for i := len(collected) - 1; i >= 0; i-- {
		p.Entries = append(p.Entries, collected[i])
	}
	return p, nil
}
