package marker

import (
	"errors"
	"testing"

	"github.com/example/monosync/internal/core/syncerr"
)

func TestCanUseMarker(t *testing.T) {
	tests := []struct {
		name        string
		ctx         ValidateContext
		wantAllowed bool
		wantCause   error
	}{
		{
			name:        "marker equals tip",
			ctx:         ValidateContext{Position: "aaa", Tip: "aaa"},
			wantAllowed: true,
		},
		{
			name:        "first-parent ancestor",
			ctx:         ValidateContext{Position: "aaa", Tip: "bbb", IsAncestor: true, OnFirstParent: true},
			wantAllowed: true,
		},
		{
			name:      "not an ancestor",
			ctx:       ValidateContext{Position: "aaa", Tip: "bbb"},
			wantCause: syncerr.ErrNotAncestor,
		},
		{
			name:      "ancestor through merged-in history",
			ctx:       ValidateContext{Position: "aaa", Tip: "bbb", IsAncestor: true},
			wantCause: syncerr.ErrOffFirstParent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanUseMarker(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Fatalf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if tt.wantAllowed {
				if result.Error() != nil {
					t.Errorf("Error() = %v, want nil", result.Error())
				}
				return
			}
			err := result.Error()
			if !errors.Is(err, tt.wantCause) {
				t.Errorf("Error() = %v, want cause %v", err, tt.wantCause)
			}
			if !syncerr.Is(err, syncerr.Marker) {
				t.Errorf("Error() kind = %v, want marker", syncerr.KindOf(err))
			}
		})
	}
}

func TestCanAdvance(t *testing.T) {
	if !CanAdvance(AdvanceContext{Current: "", Next: "bbb"}).Allowed {
		t.Error("advancing from no marker should be allowed")
	}
	if !CanAdvance(AdvanceContext{Current: "aaa", Next: "aaa"}).Allowed {
		t.Error("advancing to the same position should be allowed")
	}
	if !CanAdvance(AdvanceContext{Current: "aaa", Next: "bbb", OnFirstParent: true}).Allowed {
		t.Error("forward first-parent move should be allowed")
	}
	result := CanAdvance(AdvanceContext{Current: "aaa", Next: "bbb"})
	if result.Allowed {
		t.Error("sideways move should be rejected")
	}
	if !errors.Is(result.Error(), syncerr.ErrOffFirstParent) {
		t.Errorf("Error() = %v", result.Error())
	}
}
