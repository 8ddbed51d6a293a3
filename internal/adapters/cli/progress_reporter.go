package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/monosync/internal/core/plan"
	"github.com/example/monosync/internal/core/syncflow"
	"github.com/example/monosync/internal/ports/primary"
)

// ProgressReporter renders engine progress as it happens.
type ProgressReporter struct {
	out     io.Writer
	verbose bool
}

// NewProgressReporter creates a reporter. Phases are only shown when verbose.
func NewProgressReporter(out io.Writer, verbose bool) *ProgressReporter {
	return &ProgressReporter{out: out, verbose: verbose}
}

var _ primary.ProgressReporter = (*ProgressReporter)(nil)

// Phase implements primary.ProgressReporter.
func (p *ProgressReporter) Phase(phase syncflow.Phase, message string) {
	if !p.verbose {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", color.New(color.FgCyan).Sprintf("[%s]", phase), message)
}

// Commit implements primary.ProgressReporter.
func (p *ProgressReporter) Commit(result primary.CommitResult) {
	label := outcomeColor(result.Outcome).Sprintf("%-10s", result.Outcome)
	line := fmt.Sprintf("  %s %s %s", label, plan.Abbrev(result.ID), result.Subject)
	if result.Resolved {
		line += " (resolved by operator)"
	}
	fmt.Fprintln(p.out, line)
}

func outcomeColor(o syncflow.Outcome) *color.Color {
	switch o {
	case syncflow.Applied:
		return color.New(color.FgGreen)
	case syncflow.Conflicted:
		return color.New(color.FgRed)
	}
	return color.New(color.FgYellow)
}
