package syncflow

import (
	"testing"

	"github.com/example/monosync/internal/core/effects"
)

func TestFinalStatus(t *testing.T) {
	if FinalStatus(false) != StatusOK {
		t.Errorf("FinalStatus(false) = %v, want ok", FinalStatus(false))
	}
	if FinalStatus(true) != StatusConflicts {
		t.Errorf("FinalStatus(true) = %v, want conflicts", FinalStatus(true))
	}
	if int(StatusFailed) != 1 || int(StatusConflicts) != 2 {
		t.Error("status codes must stay 0/1/2")
	}
}

func finalizeInput(applied int) FinalizeInput {
	return FinalizeInput{
		Applied:      applied,
		Tip:          "c0ffee",
		Remote:       "origin",
		MainBranch:   "main",
		MirrorBranch: "monosync/mirror",
		ExportBranch: "monosync/export",
		PushMain:     true,
	}
}

func TestGenerateFinalizePlan_NothingApplied(t *testing.T) {
	p := GenerateFinalizePlan(finalizeInput(0))

	if p.Submitted {
		t.Error("nothing applied should not submit")
	}
	for _, e := range p.Effects {
		if g, ok := e.(effects.GitEffect); ok {
			t.Errorf("unexpected git effect %s", g.Operation)
		}
	}

	var marker *effects.MarkerEffect
	for _, e := range p.Effects {
		if m, ok := e.(effects.MarkerEffect); ok {
			marker = &m
		}
	}
	if marker == nil || marker.Position != "c0ffee" {
		t.Fatalf("marker effect = %+v, want position c0ffee", marker)
	}
}

func TestGenerateFinalizePlan_Applied(t *testing.T) {
	p := GenerateFinalizePlan(finalizeInput(3))

	if !p.Submitted {
		t.Error("applied commits should be submitted")
	}

	var order []string
	for _, e := range p.Effects {
		switch typed := e.(type) {
		case effects.GitEffect:
			order = append(order, typed.Operation)
		case effects.MarkerEffect:
			order = append(order, "marker")
		case effects.StateEffect:
			order = append(order, "state_"+typed.Operation)
		}
	}

	want := []string{
		effects.OpSubmit,
		effects.OpRefreshMirror,
		"marker",
		effects.OpMerge,
		effects.OpPushBranch,
		"state_clear",
	}
	if len(order) != len(want) {
		t.Fatalf("effects = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("effect[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestGenerateFinalizePlan_MergeTargetsMain(t *testing.T) {
	p := GenerateFinalizePlan(finalizeInput(1))

	for _, e := range p.Effects {
		g, ok := e.(effects.GitEffect)
		if !ok || g.Operation != effects.OpMerge {
			continue
		}
		if g.Branch != "main" || g.Source != "monosync/mirror" || g.Upstream != "origin/main" {
			t.Errorf("merge effect = %+v", g)
		}
		if !g.Optional {
			t.Error("merge effect should be optional once the target accepted the changes")
		}
		return
	}
	t.Fatal("no merge effect")
}

func TestGenerateFinalizePlan_NoPushMain(t *testing.T) {
	in := finalizeInput(1)
	in.PushMain = false
	p := GenerateFinalizePlan(in)

	for _, e := range p.Effects {
		if g, ok := e.(effects.GitEffect); ok && g.Operation == effects.OpPushBranch {
			t.Error("push_branch should be omitted when PushMain is false")
		}
	}
}
