// Package syncerr defines the error values shared by the synchronization engine.
// Errors carry the operation that failed and a Kind that decides how the
// orchestrator and the CLI react to them.
package syncerr

import (
	"errors"
	"strings"
)

// Op names the operation being performed, e.g. "marker.validate".
type Op string

// Kind is the class of a sync error.
type Kind int

const (
	Other         Kind = iota // Unclassified. Not printed.
	Environment               // Repository or working tree not usable.
	Configuration             // Options or target tracking not set up.
	Marker                    // Marker present but invalid.
	Conflict                  // Patch could not be applied cleanly.
	Upstream                  // Submission, fetch or push failed.
	State                     // Operation state missing or unreadable.
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other error"
	case Environment:
		return "environment error"
	case Configuration:
		return "configuration error"
	case Marker:
		return "marker error"
	case Conflict:
		return "apply conflict"
	case Upstream:
		return "upstream command failure"
	case State:
		return "operation state error"
	}
	return "unknown kind"
}

// Sentinel errors matched with errors.Is.
var (
	// ErrMarkerMissing is returned by the marker store when no marker has been published.
	ErrMarkerMissing = errors.New("marker not found")

	// ErrNotAncestor means the marker is not an ancestor of the tip at all.
	ErrNotAncestor = errors.New("marker is not an ancestor of the tip")

	// ErrOffFirstParent means the marker is an ancestor of the tip, but only through a
	// merged-in side history.
	ErrOffFirstParent = errors.New("stale marker: not on the first-parent path of the tip")

	// ErrNoOperation is returned when continue or abort finds no saved operation.
	ErrNoOperation = errors.New("no operation in progress")

	// ErrOperationInProgress is returned when an export is started while one is paused.
	ErrOperationInProgress = errors.New("an export is already in progress (use --continue or --abort)")
)

// Error is a classified sync error.
type Error struct {
	Op   Op
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	b := new(strings.Builder)
	if e.Op != "" {
		b.WriteString(string(e.Op))
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func pad(b *strings.Builder, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}

// E builds an *Error. An existing *Error passed as err keeps its Kind when kind is Other.
func E(op Op, kind Kind, err error) error {
	if kind == Other {
		kind = KindOf(err)
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the Kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return Other
		}
		if e.Kind != Other {
			return e.Kind
		}
		err = e.Err
	}
	return Other
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
