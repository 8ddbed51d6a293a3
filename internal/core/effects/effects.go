// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// LogEffect represents a progress message.
type LogEffect struct {
	Level   string
	Message string
}

func (e LogEffect) EffectType() string { return "log" }

// Git operations understood by the executor.
const (
	OpSubmit        = "submit"         // submit Branch to the target system
	OpRefreshMirror = "refresh_mirror" // re-sync Branch (the mirror) from the target system
	OpMerge         = "merge"          // merge Source into Branch, after fast-forwarding to Upstream
	OpPushBranch    = "push_branch"    // push Branch to Remote
)

// GitEffect represents a git or target-system operation.
type GitEffect struct {
	Operation string
	Branch    string
	Source    string
	Upstream  string
	Remote    string
	Message   string
	// Optional failures are reported but do not stop the plan.
	Optional bool
}

func (e GitEffect) EffectType() string { return "git" }

// MarkerEffect moves the export marker to Position.
type MarkerEffect struct {
	Position string
}

func (e MarkerEffect) EffectType() string { return "marker" }

// StateEffect represents an operation on the persisted operation state.
type StateEffect struct {
	Operation string // "clear"
}

func (e StateEffect) EffectType() string { return "state" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }
