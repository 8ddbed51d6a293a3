package syncflow

import (
	"testing"

	"github.com/example/monosync/internal/core/syncerr"
)

func TestCanRun(t *testing.T) {
	base := EnvironmentContext{
		InRepository: true,
		AtTopLevel:   true,
		Branch:       "main",
		Clean:        true,
		ExportBranch: "monosync/export",
	}

	tests := []struct {
		name        string
		mutate      func(*EnvironmentContext)
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "clean main branch is allowed",
			mutate:      func(*EnvironmentContext) {},
			wantAllowed: true,
		},
		{
			name:       "outside repository",
			mutate:     func(c *EnvironmentContext) { c.InRepository = false },
			wantReason: "not inside a git repository",
		},
		{
			name:       "subdirectory",
			mutate:     func(c *EnvironmentContext) { c.AtTopLevel = false },
			wantReason: "must be run from the top level of the repository",
		},
		{
			name:       "detached head",
			mutate:     func(c *EnvironmentContext) { c.Detached = true; c.Branch = "" },
			wantReason: "HEAD is detached; check out a branch first",
		},
		{
			name:       "on export branch",
			mutate:     func(c *EnvironmentContext) { c.Branch = "monosync/export" },
			wantReason: "cannot run from the export branch monosync/export",
		},
		{
			name:       "dirty tree",
			mutate:     func(c *EnvironmentContext) { c.Clean = false },
			wantReason: "working tree has uncommitted changes; commit or stash them first",
		},
		{
			name: "continue on export branch",
			mutate: func(c *EnvironmentContext) {
				c.Branch = "monosync/export"
				c.OnExportBranch = true
			},
			wantAllowed: true,
		},
		{
			name:       "continue from another branch",
			mutate:     func(c *EnvironmentContext) { c.OnExportBranch = true },
			wantReason: "must be on the export branch monosync/export to continue (currently on main)",
		},
		{
			name: "continue with dirty tree",
			mutate: func(c *EnvironmentContext) {
				c.Branch = "monosync/export"
				c.OnExportBranch = true
				c.Clean = false
			},
			wantReason: "working tree has uncommitted changes; commit or stash them first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := base
			tt.mutate(&ctx)
			result := CanRun(ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed {
				if result.Reason != tt.wantReason {
					t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
				}
				if !syncerr.Is(result.Error(), syncerr.Environment) {
					t.Errorf("Error() kind = %v, want environment", syncerr.KindOf(result.Error()))
				}
			}
		})
	}
}
