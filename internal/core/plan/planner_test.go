package plan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func chain(ids ...string) []Entry {
	entries := make([]Entry, 0, len(ids))
	for i, id := range ids {
		parent := ""
		if i+1 < len(ids) {
			parent = ids[i+1]
		}
		entries = append(entries, Entry{ID: id, FirstParentID: parent, Subject: "commit " + id})
	}
	return entries
}

func TestGeneratePlan(t *testing.T) {
	tests := []struct {
		name    string
		input   PlanInput
		want    []string
		wantErr bool
	}{
		{
			name:  "tip equals marker",
			input: PlanInput{Marker: "A", Tip: "A", Chain: chain("A")},
			want:  []string{},
		},
		{
			name:  "marker excluded and order reversed",
			input: PlanInput{Marker: "A", Tip: "C", Chain: chain("C", "B", "A", "root")},
			want:  []string{"B", "C"},
		},
		{
			name:  "chain stops at marker",
			input: PlanInput{Marker: "A", Tip: "B", Chain: chain("B", "A")},
			want:  []string{"B"},
		},
		{
			name: "walk stopped before marker",
			input: PlanInput{Marker: "A", Tip: "C", Chain: []Entry{
				{ID: "C", FirstParentID: "B"},
				{ID: "B", FirstParentID: "A"},
			}},
			want: []string{"B", "C"},
		},
		{
			name:  "no marker exports whole chain",
			input: PlanInput{Tip: "B", Chain: chain("B", "A")},
			want:  []string{"A", "B"},
		},
		{
			name:    "marker missing from chain",
			input:   PlanInput{Marker: "X", Tip: "C", Chain: chain("C", "B", "A")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GeneratePlan(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("GeneratePlan() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got.IDs()); diff != "" {
				t.Errorf("plan ids mismatch (-want +got):\n%s", diff)
			}
			if got.Empty() != (len(tt.want) == 0) {
				t.Errorf("Empty() = %v", got.Empty())
			}
		})
	}
}

func TestAbbrev(t *testing.T) {
	if got := Abbrev("0123456789abcdef"); got != "0123456789" {
		t.Errorf("Abbrev() = %q", got)
	}
	if got := Abbrev("abc"); got != "abc" {
		t.Errorf("Abbrev() = %q", got)
	}
}
