package tui

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/mortem/internal/artifact"
	"github.com/kingrea/mortem/internal/lifecycle"
)

func newTestPreview(t *testing.T, opts Options) *Preview {
	t.Helper()
	if opts.TotalBeats == 0 {
		opts.TotalBeats = 10000
	}
	p, err := NewPreview(opts)
	if err != nil {
		t.Fatalf("new preview: %v", err)
	}
	return p
}

func press(t *testing.T, p *Preview, keys ...tea.KeyMsg) *Preview {
	t.Helper()
	for _, key := range keys {
		model, _ := p.Update(key)
		next, ok := model.(*Preview)
		if !ok {
			t.Fatalf("unexpected model type %T", model)
		}
		p = next
	}
	return p
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewPreviewValidatesOptions(t *testing.T) {
	if _, err := NewPreview(Options{}); err == nil {
		t.Fatalf("zero total should fail")
	}
	if _, err := NewPreview(Options{TotalBeats: 5, Remaining: 6}); err == nil {
		t.Fatalf("remaining beyond total should fail")
	}
	if _, err := NewPreview(Options{TotalBeats: 5, Phase: "Ghost"}); err == nil {
		t.Fatalf("unknown phase should fail")
	}
}

func TestArrowKeysStepBeats(t *testing.T) {
	p := newTestPreview(t, Options{Reflection: "steady", Remaining: 10000, Step: 1000})
	startEye := p.Artifact().Geometry.EyeOpenHeight

	p = press(t, p, tea.KeyMsg{Type: tea.KeyRight})
	if got := p.Request().BeatsRemaining; got != 9000 {
		t.Fatalf("right should consume a step, remaining = %d", got)
	}
	p = press(t, p, tea.KeyMsg{Type: tea.KeyDown})
	if got := p.Request().BeatsRemaining; got != 0 {
		t.Fatalf("down should clamp at zero, remaining = %d", got)
	}
	if p.Artifact().Geometry.EyeOpenHeight >= startEye {
		t.Fatalf("eye should close as life runs out")
	}
	if p.Request().Phase != lifecycle.PhaseDead {
		t.Fatalf("auto phase should follow life, got %s", p.Request().Phase)
	}
	p = press(t, p, tea.KeyMsg{Type: tea.KeyUp})
	if got := p.Request().BeatsRemaining; got != 10000 {
		t.Fatalf("up should clamp at total, remaining = %d", got)
	}
	p = press(t, p, tea.KeyMsg{Type: tea.KeyEnd})
	if got := p.Request().BeatsRemaining; got != 0 {
		t.Fatalf("end should jump to the last beat, remaining = %d", got)
	}
}

func TestPhaseKeyCyclesPins(t *testing.T) {
	p := newTestPreview(t, Options{Reflection: "x", Remaining: 5000})
	seen := []lifecycle.Phase{}
	for i := 0; i < len(lifecycle.Phases); i++ {
		p = press(t, p, runes("p"))
		seen = append(seen, p.Request().Phase)
	}
	for i, phase := range lifecycle.Phases {
		if seen[i] != phase {
			t.Fatalf("pin %d = %s, want %s", i, seen[i], phase)
		}
	}
	p = press(t, p, runes("p"))
	if p.pinned != "" {
		t.Fatalf("cycling past Dead should return to auto, got %s", p.pinned)
	}
}

func TestEditReplacesReflection(t *testing.T) {
	p := newTestPreview(t, Options{Reflection: "old", Remaining: 5000})
	p = press(t, p, runes("e"))
	if !p.editing {
		t.Fatalf("e should enter edit mode")
	}
	p = press(t, p, runes(" and new"), tea.KeyMsg{Type: tea.KeyEnter})
	if p.editing {
		t.Fatalf("enter should leave edit mode")
	}
	if p.reflection != "old and new" {
		t.Fatalf("reflection = %q", p.reflection)
	}
	if !strings.Contains(p.View(), "ok (") {
		t.Fatalf("round trip should report ok:\n%s", p.View())
	}

	p = press(t, p, runes("e"), runes("zzz"), tea.KeyMsg{Type: tea.KeyEsc})
	if p.reflection != "old and new" {
		t.Fatalf("esc should discard edits, got %q", p.reflection)
	}
}

func TestSaveWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	p := newTestPreview(t, Options{Reflection: "keep this", Remaining: 0, Store: artifact.NewStore(dir)})
	p = press(t, p, runes("s"))
	if !strings.HasPrefix(p.status, "saved ") {
		t.Fatalf("unexpected status %q", p.status)
	}
	if _, err := os.Stat(strings.TrimPrefix(p.status, "saved ")); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}

	unsaved := newTestPreview(t, Options{Reflection: "x"})
	unsaved = press(t, unsaved, runes("s"))
	if !strings.Contains(unsaved.status, "disabled") {
		t.Fatalf("expected disabled status, got %q", unsaved.status)
	}
}

func TestViewShowsReadout(t *testing.T) {
	p := newTestPreview(t, Options{Reflection: "void void", Remaining: 2000})
	view := p.View()
	for _, want := range []string{"phase", "eye height", "void radius", "active nodes", p.Artifact().Filename} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	model, cmd := p.Update(runes("q"))
	if model == nil || cmd == nil {
		t.Fatalf("q should return a quit command")
	}
}
