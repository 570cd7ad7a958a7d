package logbook

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/mortem/internal/art"
	"github.com/kingrea/mortem/internal/lifecycle"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestRecordJournalsArtifact(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "logs", FileName))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	a, err := art.Generate(lifecycle.Request{
		Reflection:     "I was.",
		Phase:          lifecycle.PhaseDead,
		BeatNumber:     100,
		TotalBeats:     100,
		BeatsRemaining: 0,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	book.Record(a, "final.yaml")
	book.Warn("rejected %s", "bad.yaml")
	lines, total := book.Tail(10)
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	for _, want := range []string{"INFO", "beat=100", "phase=dead", a.Filename, "source=final.yaml"} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("record line %q missing %s", lines[0], want)
		}
	}
	if !strings.Contains(lines[1], "WARN") {
		t.Fatalf("warning line %q", lines[1])
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("nil logbook returned %v, %d", lines, total)
	}
}
