package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	Commit = "0123456789abcdef"
	BuildTime = "2026-01-01T00:00:00Z"

	got := String()
	if !strings.HasPrefix(got, "monosync dev (commit: 0123456") {
		t.Errorf("String() = %q", got)
	}
	if strings.Contains(got, "0123456789") {
		t.Errorf("commit should be shortened: %q", got)
	}
}
