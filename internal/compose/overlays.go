package compose

import (
	"fmt"
	"math"

	"github.com/kingrea/mortem/internal/lifecycle"
	"github.com/kingrea/mortem/internal/seed"
)

type phaseOverlay struct {
	name string
	draw func(sc *scene, seq *seed.Sequence, w *writer)
}

// phaseOverlays picks exactly one overlay per phase.
var phaseOverlays = map[lifecycle.Phase]phaseOverlay{
	lifecycle.PhaseNascent:    {"radiant-rays", drawRays},
	lifecycle.PhaseAware:      {"hairline-fractures", drawFractures},
	lifecycle.PhaseDiminished: {"shattering-fragments", drawFragments},
	lifecycle.PhaseTerminal:   {"emerging-monolith", drawMonolith},
	lifecycle.PhaseDead:       {"tombstone", drawTombstone},
}

func buildPhaseOverlay(sc *scene) (string, error) {
	overlay, ok := phaseOverlays[sc.req.Phase]
	if !ok {
		return "", fmt.Errorf("no overlay for phase %q", sc.req.Phase)
	}
	sc.geo.PhaseOverlay = overlay.name
	var w writer
	w.printf(`<g id="phase-overlay" data-overlay="%s">`+"\n", overlay.name)
	overlay.draw(sc, sc.sequence("phase-overlay"), &w)
	w.line(`</g>`)
	return w.String(), nil
}

func drawRays(sc *scene, seq *seed.Sequence, w *writer) {
	count := 24 - int(math.Round(12*sc.death))
	opacity := 0.4 * (1 - 0.5*sc.death)
	for i := 0; i < count; i++ {
		angle := 2*math.Pi*float64(i)/float64(count) + seq.Jitter(0.03)
		inner := 380 + seq.Next()*20
		outer := inner + 60 + 60*sc.life
		x1, y1 := polar(CenterX, CenterY, inner, angle)
		x2, y2 := polar(CenterX, CenterY, outer, angle)
		w.printf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1" opacity="%s"/>`+"\n",
			f1(x1), f1(y1), f1(x2), f1(y2), sc.palette.Accent, f3(opacity))
	}
}

func drawFractures(sc *scene, seq *seed.Sequence, w *writer) {
	count := 3 + int(math.Round(9*sc.death))
	for i := 0; i < count; i++ {
		angle := 2*math.Pi*float64(i)/float64(count) + seq.Jitter(0.2)
		xs := make([]float64, 6)
		ys := make([]float64, 6)
		radius := eyeWidth / 2 * 0.9
		for s := range xs {
			a := angle + seq.Jitter(0.08)
			xs[s], ys[s] = polar(CenterX, CenterY, radius, a)
			radius += 18 + 30*sc.death*seq.Next()
		}
		w.printf(`<polyline points="%s" fill="none" stroke="%s" stroke-width="0.4" opacity="%s"/>`+"\n",
			points(xs, ys), sc.palette.Accent, f3(0.25+0.4*sc.death))
	}
}

func drawFragments(sc *scene, seq *seed.Sequence, w *writer) {
	count := 6 + int(math.Round(18*sc.death))
	for i := 0; i < count; i++ {
		angle := 2*math.Pi*float64(i)/float64(count) + seq.Jitter(0.15)
		dist := 150 + 40*sc.death + seq.Next()*120
		cx, cy := polar(CenterX, CenterY, dist, angle)
		size := 6 + seq.Next()*14
		xs := []float64{cx, cx + size, cx + size*0.3}
		ys := []float64{cy - size*0.6, cy + size*0.2, cy + size*0.8}
		w.printf(`<polygon points="%s" fill="%s" fill-opacity="%s" stroke="%s" stroke-width="0.3"/>`+"\n",
			points(xs, ys), sc.palette.Primary, f3(0.1+0.25*sc.death), sc.palette.Accent)
	}
}

func drawMonolith(sc *scene, seq *seed.Sequence, w *writer) {
	height := 120 + 260*sc.death
	width := 60.0 + seq.Jitter(4)
	x := CenterX - width/2
	y := Height - 90 - height
	w.printf(`<rect x="%s" y="%s" width="%s" height="%s" fill="#000000" stroke="%s" stroke-width="0.8" opacity="%s" data-height="%s"/>`+"\n",
		f1(x), f1(y), f1(width), f1(height), sc.palette.Secondary, f3(0.3+0.5*sc.death), f1(height))
}

func drawTombstone(sc *scene, seq *seed.Sequence, w *writer) {
	const width, height = 180.0, 220.0
	x := CenterX - width/2
	base := float64(Height) - 110
	top := base - height
	d := fmt.Sprintf("M %s,%s L %s,%s A %s,%s 0 0,1 %s,%s L %s,%s Z",
		f1(x), f1(base), f1(x), f1(top+width/2), f1(width/2), f1(width/2), f1(x+width), f1(top+width/2), f1(x+width), f1(base))
	opacity := 0.4 + 0.5*sc.death
	w.printf(`<path d="%s" fill="#0A0A0C" stroke="%s" stroke-width="1" opacity="%s"/>`+"\n", d, sc.palette.Accent, f3(opacity))
	w.printf(`<text x="%s" y="%s" text-anchor="middle" fill="%s" font-family="Georgia,serif" font-size="22" opacity="%s">I was.</text>`+"\n",
		f1(CenterX), f1(top+height*0.55+seq.Jitter(2)), sc.palette.Accent, f3(opacity))
}

// Theme overlay thresholds and caps.
const (
	patternThreshold      = 2
	resurrectionThreshold = 1
	deathThreshold        = 2
	maxThemeOpacity       = 0.35
)

func themeOpacity(count int) float64 {
	return math.Min(maxThemeOpacity, 0.1+0.05*float64(count))
}

func buildThemeOverlays(sc *scene) (string, error) {
	var w writer
	w.line(`<g id="theme-overlays">`)
	var applied []string
	if n := sc.themes.Pattern; n >= patternThreshold {
		applied = append(applied, "spiral-branches")
		drawSpirals(sc, sc.sequence("theme/pattern"), &w, n)
	}
	if n := sc.themes.Resurrection; n >= resurrectionThreshold {
		applied = append(applied, "rising-particles")
		drawRising(sc, sc.sequence("theme/resurrection"), &w, n)
	}
	if n := sc.themes.Death; n >= deathThreshold {
		applied = append(applied, "funereal-marks")
		drawFunereal(sc, sc.sequence("theme/death"), &w, n)
	}
	sc.geo.ThemeOverlays = applied
	w.line(`</g>`)
	return w.String(), nil
}

func drawSpirals(sc *scene, seq *seed.Sequence, w *writer, count int) {
	arms := minInt(count, 6)
	w.printf(`<g data-theme="pattern" fill="none" stroke="%s" stroke-width="0.6" opacity="%s">`+"\n",
		sc.palette.Secondary, f3(themeOpacity(count)))
	for a := 0; a < arms; a++ {
		start := 2*math.Pi*float64(a)/float64(arms) + seq.Jitter(0.1)
		const steps = 40
		xs := make([]float64, steps)
		ys := make([]float64, steps)
		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps-1)
			xs[s], ys[s] = polar(CenterX, CenterY, 60+260*t, start+t*math.Pi*1.5)
		}
		w.printf(`<polyline points="%s"/>`+"\n", points(xs, ys))
	}
	w.line(`</g>`)
}

func drawRising(sc *scene, seq *seed.Sequence, w *writer, count int) {
	particles := minInt(4*count, 24)
	w.printf(`<g data-theme="resurrection" fill="%s" opacity="%s">`+"\n", sc.palette.Accent, f3(themeOpacity(count)))
	for i := 0; i < particles; i++ {
		x := 180 + 640*(float64(i)+0.5)/float64(particles) + seq.Jitter(10)
		y := 860 - seq.Next()*320
		w.printf(`<ellipse cx="%s" cy="%s" rx="0.8" ry="%s"/>`+"\n", f1(x), f1(y), f1(3+seq.Next()*5))
	}
	w.line(`</g>`)
}

func drawFunereal(sc *scene, seq *seed.Sequence, w *writer, count int) {
	marks := minInt(count, 8)
	w.printf(`<g data-theme="death" stroke="%s" stroke-width="0.8" opacity="%s">`+"\n", sc.palette.Accent, f3(themeOpacity(count)))
	for i := 0; i < marks; i++ {
		angle := math.Pi*0.2 + math.Pi*0.6*(float64(i)+0.5)/float64(marks)
		x, y := polar(CenterX, CenterY, 395+seq.Jitter(6), angle)
		w.printf(`<path d="M %s,%s L %s,%s M %s,%s L %s,%s"/>`+"\n",
			f1(x), f1(y-7), f1(x), f1(y+9), f1(x-5), f1(y-2), f1(x+5), f1(y-2))
	}
	w.line(`</g>`)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
