package syncflow

import (
	"fmt"

	"github.com/example/monosync/internal/core/effects"
	"github.com/example/monosync/internal/core/plan"
)

// Status is the three-valued process status of a sync command.
type Status int

const (
	// StatusOK means completed without conflicts, including nothing to export.
	StatusOK Status = 0
	// StatusFailed means a fatal error or an interactive halt.
	StatusFailed Status = 1
	// StatusConflicts means completed with at least one forced conflict resolution.
	StatusConflicts Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusConflicts:
		return "conflicts"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// FinalStatus returns the status of a run that reached the end of the export loop.
func FinalStatus(hadConflicts bool) Status {
	if hadConflicts {
		return StatusConflicts
	}
	return StatusOK
}

// Phase names a step of the export state machine.
type Phase string

const (
	PhaseCheckEnvironment Phase = "check-environment"
	PhaseFetchRemote      Phase = "fetch-remote"
	PhaseUpdateMirror     Phase = "update-mirror"
	PhaseMarker           Phase = "validate-or-init-marker"
	PhasePlan             Phase = "plan-commits"
	PhasePrepare          Phase = "prepare-export-branch"
	PhaseExport           Phase = "export-loop"
	PhaseFinalize         Phase = "finalize"
	PhaseDone             Phase = "done"
)

// Outcome is the result of exporting one commit.
type Outcome int

const (
	Applied Outcome = iota
	Skipped
	Conflicted
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case Conflicted:
		return "conflicted"
	}
	return "unknown"
}

// FinalizeInput contains the inputs needed to generate the post-loop plan.
type FinalizeInput struct {
	Applied      int
	Tip          string
	Remote       string
	MainBranch   string
	MirrorBranch string
	ExportBranch string
	PushMain     bool
}

// FinalizePlan represents the planned effects after the export loop.
type FinalizePlan struct {
	Submitted bool
	Effects   []effects.Effect
}

// GenerateFinalizePlan creates the ordered post-loop effects.
// The marker effect always comes after submission and mirror refresh, so a failed
// submission can never leave the marker advanced. Merging the mirror back into
// the main branch and pushing it are optional: once the target accepted the
// changes they only produce warnings.
func GenerateFinalizePlan(input FinalizeInput) FinalizePlan {
	var p FinalizePlan

	if input.Applied == 0 {
		p.Effects = append(p.Effects,
			effects.LogEffect{Level: "info", Message: "no commits produced changes; advancing marker only"},
			effects.MarkerEffect{Position: input.Tip},
			effects.StateEffect{Operation: "clear"},
		)
		return p
	}

	p.Submitted = true
	p.Effects = append(p.Effects,
		effects.GitEffect{Operation: effects.OpSubmit, Branch: input.ExportBranch},
		effects.GitEffect{Operation: effects.OpRefreshMirror, Branch: input.MirrorBranch},
		effects.MarkerEffect{Position: input.Tip},
		effects.GitEffect{
			Operation: effects.OpMerge,
			Branch:    input.MainBranch,
			Upstream:  input.Remote + "/" + input.MainBranch,
			Source:    input.MirrorBranch,
			Message:   fmt.Sprintf("Merge %s after export of %s", input.MirrorBranch, plan.Abbrev(input.Tip)),
			Optional:  true,
		},
	)
	if input.PushMain {
		p.Effects = append(p.Effects, effects.GitEffect{
			Operation: effects.OpPushBranch,
			Branch:    input.MainBranch,
			Remote:    input.Remote,
			Optional:  true,
		})
	}
	p.Effects = append(p.Effects, effects.StateEffect{Operation: "clear"})
	return p
}
