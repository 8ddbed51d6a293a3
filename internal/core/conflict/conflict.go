// Package conflict contains the pure rules for escalating apply conflicts:
// how a forced commit is tagged, what the attached note says and how a
// conflict log line is rendered.
package conflict

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SubjectTag prefixes the subject of commits created with unresolved conflicts.
const SubjectTag = "[CONFLICT] "

// NotesRef is the notes ref conflict annotations are attached under.
const NotesRef = "refs/notes/monosync"

// Escalation is what happens to a conflicted commit.
type Escalation int

const (
	// Halt persists the operation and stops for the operator.
	Halt Escalation = iota
	// ForceCommit commits the tree as left by the three-way merge and continues.
	ForceCommit
)

func (e Escalation) String() string {
	if e == ForceCommit {
		return "force-commit"
	}
	return "halt"
}

// Escalate decides the escalation for a conflict.
func Escalate(automation bool) Escalation {
	if automation {
		return ForceCommit
	}
	return Halt
}

// TagMessage tags the first line of a commit message. Already tagged messages are
// returned unchanged so a replayed conflict commit is never double tagged.
func TagMessage(message string) string {
	if strings.HasPrefix(message, SubjectTag) {
		return message
	}
	return SubjectTag + message
}

// Subject returns the first line of a commit message.
func Subject(message string) string {
	subject, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(subject)
}

// Note is the structured annotation attached to a force-committed conflict.
type Note struct {
	SourceCommit string    `yaml:"source_commit"`
	Subject      string    `yaml:"subject"`
	Files        []string  `yaml:"files,omitempty"`
	Rejected     bool      `yaml:"rejected,omitempty"`
	DetectedAt   time.Time `yaml:"detected_at"`
}

// Render returns the note body.
func (n Note) Render() (string, error) {
	doc := struct {
		Conflict Note `yaml:"conflict"`
	}{Conflict: n}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to render conflict note: %w", err)
	}
	return string(out), nil
}

// LogEntry is one line of the append-only conflict log.
type LogEntry struct {
	CommitID  string
	Subject   string
	Timestamp time.Time
	Note      string
}

// Line renders the entry as a single tab separated line.
func (e LogEntry) Line() string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\n",
		e.Timestamp.UTC().Format(time.RFC3339),
		e.CommitID,
		oneLine(e.Subject),
		oneLine(e.Note),
	)
}

// ParseLine reads a line written by Line.
func ParseLine(line string) (LogEntry, error) {
	parts := strings.SplitN(strings.TrimRight(line, "\n"), "\t", 4)
	if len(parts) != 4 {
		return LogEntry{}, fmt.Errorf("malformed conflict log line: %q", line)
	}
	ts, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return LogEntry{}, fmt.Errorf("malformed conflict log timestamp: %w", err)
	}
	return LogEntry{Timestamp: ts, CommitID: parts[1], Subject: parts[2], Note: parts[3]}, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
