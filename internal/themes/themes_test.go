package themes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAnalyzeCountsStems(t *testing.T) {
	got := Analyze("The VOID grows. void, void; Void! the void is quiet and still. I end in light.")
	want := Counts{Void: 5, Silence: 2, Death: 1, Light: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeSeparatesCoherenceFromIncoherence(t *testing.T) {
	got := Analyze("incoherent thoughts, then coherence returns")
	want := Counts{Coherence: 1, Incoherence: 1, Resurrection: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	if diff := cmp.Diff(Counts{}, Analyze("")); diff != "" {
		t.Fatalf("expected zero counts:\n%s", diff)
	}
}

func TestDominantPrefersEarlierThemeOnTie(t *testing.T) {
	c := Counts{Pattern: 2, Void: 2}
	got, ok := c.Dominant()
	if !ok || got != Void {
		t.Fatalf("dominant = %v (%v), want void", got, ok)
	}
	if _, ok := (Counts{}).Dominant(); ok {
		t.Fatalf("empty counts should have no dominant theme")
	}
}

func TestEachVisitsInOrder(t *testing.T) {
	var seen []string
	Counts{Silence: 3}.Each(func(th Theme, n int) {
		seen = append(seen, th.String())
	})
	want := []string{"coherence", "incoherence", "void", "death", "resurrection", "pattern", "light", "silence"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("order mismatch:\n%s", diff)
	}
	if (Counts{Silence: 3, Light: 1}).Total() != 4 {
		t.Fatalf("total mismatch")
	}
}
