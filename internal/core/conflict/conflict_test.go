package conflict

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestEscalate(t *testing.T) {
	if got := Escalate(false); got != Halt {
		t.Errorf("Escalate(false) = %v, want halt", got)
	}
	if got := Escalate(true); got != ForceCommit {
		t.Errorf("Escalate(true) = %v, want force-commit", got)
	}
}

func TestTagMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"subject only", "Fix build", "[CONFLICT] Fix build"},
		{"subject and body", "Fix build\n\nDetails here\n", "[CONFLICT] Fix build\n\nDetails here\n"},
		{"already tagged", "[CONFLICT] Fix build", "[CONFLICT] Fix build"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TagMessage(tt.message); got != tt.want {
				t.Errorf("TagMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubject(t *testing.T) {
	if got := Subject("  Add file  \n\nbody"); got != "Add file" {
		t.Errorf("Subject() = %q, want %q", got, "Add file")
	}
}

func TestNoteRender(t *testing.T) {
	detected := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	note := Note{
		SourceCommit: "abc123",
		Subject:      "Edit README",
		Files:        []string{"README.md"},
		DetectedAt:   detected,
	}

	body, err := note.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(body, "conflict:\n") {
		t.Errorf("note body should start with conflict key, got %q", body)
	}

	var doc struct {
		Conflict Note `yaml:"conflict"`
	}
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("note body is not yaml: %v", err)
	}
	parsed := doc.Conflict
	if parsed.SourceCommit != "abc123" || parsed.Subject != "Edit README" {
		t.Errorf("parsed note = %+v", parsed)
	}
	if len(parsed.Files) != 1 || parsed.Files[0] != "README.md" {
		t.Errorf("parsed files = %v, want [README.md]", parsed.Files)
	}
	if !parsed.DetectedAt.Equal(detected) {
		t.Errorf("DetectedAt = %v, want %v", parsed.DetectedAt, detected)
	}
}

func TestLogEntryLine(t *testing.T) {
	entry := LogEntry{
		CommitID:  "abc123",
		Subject:   "Edit\tREADME",
		Timestamp: time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC),
		Note:      "three-way merge left\nconflict markers",
	}

	line := entry.Line()
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("Line() should be a single line, got %q", line)
	}

	parsed, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if parsed.CommitID != "abc123" {
		t.Errorf("CommitID = %q", parsed.CommitID)
	}
	if parsed.Subject != "Edit README" {
		t.Errorf("Subject = %q, want tabs collapsed", parsed.Subject)
	}
	if parsed.Note != "three-way merge left conflict markers" {
		t.Errorf("Note = %q", parsed.Note)
	}
}

func TestParseLine_Malformed(t *testing.T) {
	if _, err := ParseLine("garbage"); err == nil {
		t.Error("expected error for malformed line")
	}
}
