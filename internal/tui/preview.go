// internal/tui/preview.go
//
// Interactive preview for the art engine. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: the request being previewed and its latest render
// 2. Update: keys step the beat counter, cycle phases or edit the text
// 3. View: geometry readout, life bar and round-trip status
//
// Every state change re-renders the artifact so the readout always reflects
// exactly what `mortem generate` would write.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/mortem/internal/art"
	"github.com/kingrea/mortem/internal/artifact"
	"github.com/kingrea/mortem/internal/lifecycle"
	"github.com/kingrea/mortem/internal/stego"
)

const (
	defaultStep   = 1000
	coarseFactor  = 10
	barWidth      = 40
	reflectionCap = stego.MaxTextRunes
)

// Options seeds a Preview.
type Options struct {
	Reflection string
	TotalBeats uint64
	Remaining  uint64
	Step       uint64
	// Phase pins the phase; empty lets it follow the life fraction.
	Phase lifecycle.Phase
	// Store enables saving the current render with "s".
	Store *artifact.Store
}

// Preview is the bubbletea model behind `mortem preview`.
type Preview struct {
	reflection string
	total      uint64
	remaining  uint64
	step       uint64
	pinned     lifecycle.Phase
	store      *artifact.Store

	artifact  art.Artifact
	roundTrip stego.Result
	err       error
	status    string

	editing bool
	input   textinput.Model
	bar     progress.Model

	width  int
	height int
}

// NewPreview builds a Preview and renders its first frame.
func NewPreview(opts Options) (*Preview, error) {
	if opts.TotalBeats == 0 {
		return nil, fmt.Errorf("tui: total beats must be positive")
	}
	if opts.Remaining > opts.TotalBeats {
		return nil, fmt.Errorf("tui: %d beats remaining exceeds total %d", opts.Remaining, opts.TotalBeats)
	}
	if opts.Phase != "" && !opts.Phase.Valid() {
		return nil, fmt.Errorf("tui: %w: %q", lifecycle.ErrInvalidPhase, string(opts.Phase))
	}
	step := opts.Step
	if step == 0 {
		step = defaultStep
	}
	input := textinput.New()
	input.Placeholder = "reflection text"
	input.CharLimit = reflectionCap
	input.Width = 60

	p := &Preview{
		reflection: opts.Reflection,
		total:      opts.TotalBeats,
		remaining:  opts.Remaining,
		step:       step,
		pinned:     opts.Phase,
		store:      opts.Store,
		input:      input,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
	}
	p.render()
	return p, nil
}

// Request returns the request the current frame was rendered from.
func (p *Preview) Request() lifecycle.Request {
	req := lifecycle.Request{
		Reflection:     p.reflection,
		BeatNumber:     p.total - p.remaining,
		TotalBeats:     p.total,
		BeatsRemaining: p.remaining,
	}
	req.Phase = p.pinned
	if req.Phase == "" {
		req.Phase = lifecycle.PhaseFor(req.LifeFraction())
	}
	return req
}

// Artifact returns the current render.
func (p *Preview) Artifact() art.Artifact {
	return p.artifact
}

func (p *Preview) render() {
	a, err := art.Generate(p.Request())
	if err != nil {
		p.err = err
		return
	}
	p.err = nil
	p.artifact = a
	p.roundTrip = art.Decode(a.Document)
}

// Init implements tea.Model.
func (p *Preview) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p *Preview) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil
	case tea.KeyMsg:
		if p.editing {
			return p.updateEditing(msg)
		}
		return p.updateBrowsing(msg)
	}
	return p, nil
}

func (p *Preview) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return p, tea.Quit
	case "right", "l":
		p.advance(p.step)
	case "left", "h":
		p.rewind(p.step)
	case "down", "j":
		p.advance(p.step * coarseFactor)
	case "up", "k":
		p.rewind(p.step * coarseFactor)
	case "home":
		p.remaining = p.total
	case "end":
		p.remaining = 0
	case "p":
		p.pinned = nextPinned(p.pinned)
	case "e":
		p.editing = true
		p.input.SetValue(p.reflection)
		p.input.CursorEnd()
		return p, p.input.Focus()
	case "s":
		p.save()
		return p, nil
	default:
		return p, nil
	}
	p.status = ""
	p.render()
	return p, nil
}

func (p *Preview) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		p.reflection = p.input.Value()
		p.editing = false
		p.input.Blur()
		p.status = ""
		p.render()
		return p, nil
	case tea.KeyEsc:
		p.editing = false
		p.input.Blur()
		return p, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Preview) advance(n uint64) {
	if n >= p.remaining {
		p.remaining = 0
		return
	}
	p.remaining -= n
}

func (p *Preview) rewind(n uint64) {
	if p.total-p.remaining <= n {
		p.remaining = p.total
		return
	}
	p.remaining += n
}

func (p *Preview) save() {
	if p.store == nil {
		p.status = "saving disabled: no output directory"
		return
	}
	if p.err != nil {
		p.status = "nothing to save: " + p.err.Error()
		return
	}
	path, err := p.store.Write(p.artifact, "preview")
	if err != nil {
		p.status = "save failed: " + err.Error()
		return
	}
	p.status = "saved " + path
}

// nextPinned cycles auto -> Nascent -> ... -> Dead -> auto.
func nextPinned(current lifecycle.Phase) lifecycle.Phase {
	if current == "" {
		return lifecycle.Phases[0]
	}
	next := current.Ordinal() + 1
	if next >= len(lifecycle.Phases) {
		return ""
	}
	return lifecycle.Phases[next]
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(16)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7BD88F"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// View implements tea.Model.
func (p *Preview) View() string {
	req := p.Request()
	phaseLabel := req.Phase.String()
	if p.pinned == "" {
		phaseLabel += " (auto)"
	} else {
		phaseLabel += " (pinned)"
	}

	rows := []string{
		titleStyle.Render("MORTEM · preview"),
		"",
		row("phase", phaseLabel),
		row("beat", fmt.Sprintf("%d / %d  (%d remaining)", req.BeatNumber, req.TotalBeats, req.BeatsRemaining)),
		row("life", p.bar.ViewAs(req.LifeFraction())+fmt.Sprintf(" %.2f%%", 100*req.LifeFraction())),
	}
	if p.err != nil {
		rows = append(rows, "", errStyle.Render(p.err.Error()))
	} else {
		geo := p.artifact.Geometry
		rows = append(rows,
			row("eye height", fmt.Sprintf("%.1f", geo.EyeOpenHeight)),
			row("void radius", fmt.Sprintf("%.1f", geo.VoidRadius)),
			row("active nodes", fmt.Sprintf("%d", geo.ActiveNodes)),
			row("rosette", fmt.Sprintf("%d circles, %d survive", geo.RosetteCircles, geo.SurvivingCircles)),
			row("overlay", overlaySummary(geo.PhaseOverlay, geo.ThemeOverlays)),
			row("payload", fmt.Sprintf("%d units", p.artifact.Units)),
			row("filename", p.artifact.Filename),
			row("round trip", p.roundTripLabel()),
		)
	}

	var text string
	if p.editing {
		text = p.input.View()
	} else {
		text = valueStyle.Render(truncateDisplay(p.reflection, 70))
	}
	rows = append(rows, "", labelStyle.Render("reflection"), text)
	if p.status != "" {
		rows = append(rows, "", hintStyle.Render(p.status))
	}

	body := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	hint := "←/→ step · ↑/↓ ×10 · home/end · p phase · e edit · s save · q quit"
	if p.editing {
		hint = "enter apply · esc cancel"
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, hintStyle.Render(hint))
}

func (p *Preview) roundTripLabel() string {
	if !p.roundTrip.Success {
		return errStyle.Render("failed: " + p.roundTrip.Reason)
	}
	if p.roundTrip.Text != stego.Embedded(p.reflection) {
		return errStyle.Render("mismatch")
	}
	return okStyle.Render(fmt.Sprintf("ok (%d bytes)", p.roundTrip.ByteCount))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func overlaySummary(phase string, themes []string) string {
	if len(themes) == 0 {
		return phase
	}
	return phase + " + " + strings.Join(themes, ", ")
}

func truncateDisplay(s string, n int) string {
	runes := []rune(strings.Join(strings.Fields(s), " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-1]) + "…"
}
