package syncerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := E("marker.validate", Marker, ErrNotAncestor)
	want := "marker.validate: marker error: marker is not an ancestor of the tip"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindOf(t *testing.T) {
	inner := E("git.fetch", Upstream, errors.New("exit status 128"))
	outer := fmt.Errorf("fetch remote: %w", inner)

	if KindOf(outer) != Upstream {
		t.Errorf("KindOf() = %v, want upstream", KindOf(outer))
	}
	if !Is(outer, Upstream) {
		t.Error("Is() should see through fmt wrapping")
	}
	if KindOf(errors.New("plain")) != Other {
		t.Error("plain errors have no kind")
	}
}

func TestE_InheritsKind(t *testing.T) {
	inner := E("state.load", State, ErrNoOperation)
	outer := E("sync.continue", Other, inner)

	if KindOf(outer) != State {
		t.Errorf("KindOf() = %v, want state", KindOf(outer))
	}
	if !errors.Is(outer, ErrNoOperation) {
		t.Error("errors.Is should reach the sentinel")
	}
}
