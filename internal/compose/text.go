package compose

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

const (
	textColumns  = 58
	textMaxLines = 6
	textLeft     = 48.0
	textTop      = 30.0
	textLeading  = 14.0
	vitalY       = 922.0
	vitalSamples = 160
	captionY     = 950.0
)

// wrapReflection collapses whitespace, wraps at textColumns and keeps at most
// textMaxLines lines, marking the cut with an ellipsis.
func wrapReflection(text string) []string {
	flat := strings.Join(strings.Fields(text), " ")
	if flat == "" {
		return nil
	}
	lines := strings.Split(wordwrap.String(flat, textColumns), "\n")
	if len(lines) > textMaxLines {
		lines = lines[:textMaxLines]
		lines[textMaxLines-1] = strings.TrimRight(lines[textMaxLines-1], " ") + "…"
	}
	return lines
}

func buildReflectionText(sc *scene) (string, error) {
	lines := wrapReflection(sc.req.Reflection)
	var w writer
	w.printf(`<g id="reflection-text" fill="%s" font-family="'Courier New',monospace" font-size="11" opacity="%s" data-lines="%d">`+"\n",
		sc.palette.Accent, f3(0.25+0.6*sc.life), len(lines))
	for i, line := range lines {
		w.printf(`<text x="%s" y="%s">%s</text>`+"\n", f1(textLeft), f1(textTop+float64(i)*textLeading), escape(line))
	}
	w.line(`</g>`)
	return w.String(), nil
}

func buildVitalSign(sc *scene) (string, error) {
	seq := sc.sequence("vital-sign")
	flatX := FlatlineX(sc.life)
	sc.geo.FlatlineX = flatX
	span := vitalRight - vitalLeft
	xs := make([]float64, vitalSamples+1)
	ys := make([]float64, vitalSamples+1)
	peak := 38 * (0.35 + 0.65*sc.life)
	for i := 0; i <= vitalSamples; i++ {
		x := vitalLeft + span*float64(i)/vitalSamples
		xs[i], ys[i] = x, vitalY
		t := (x - vitalLeft) / span
		if t >= sc.life {
			continue
		}
		decay := 1 - 0.7*t/sc.life
		amp := peak * decay
		switch i % 16 {
		case 6:
			ys[i] = vitalY + 0.3*amp
		case 7:
			ys[i] = vitalY - amp
		case 8:
			ys[i] = vitalY + 0.45*amp
		default:
			ys[i] = vitalY + seq.Jitter(1.5)*decay
		}
	}
	var w writer
	w.printf(`<g id="vital-sign" data-flatline-x="%s">`+"\n", f1(flatX))
	w.printf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="0.3" opacity="0.15"/>`+"\n",
		f1(vitalLeft), f1(vitalY), f1(vitalRight), f1(vitalY), sc.palette.Secondary)
	w.printf(`<polyline points="%s" fill="none" stroke="%s" stroke-width="1.2" opacity="%s" filter="url(#glow)"/>`+"\n",
		points(xs, ys), sc.palette.Secondary, f3(0.35+0.5*sc.life))
	w.line(`</g>`)
	return w.String(), nil
}

// CaptionText is the plain-text status line printed in the caption band.
func CaptionText(phase string, beat, total, remaining uint64, life float64) string {
	return fmt.Sprintf("%s | BEAT %d/%d | REMAINING %d | %s%%",
		strings.ToUpper(phase), beat, total, remaining, f2(100*clamp01(life)))
}

func buildCaption(sc *scene) (string, error) {
	caption := CaptionText(sc.req.Phase.String(), sc.req.BeatNumber, sc.req.TotalBeats, sc.req.BeatsRemaining, sc.life)
	var w writer
	w.line(`<g id="caption">`)
	w.printf(`<rect x="0" y="%s" width="%d" height="%s" fill="#000000" opacity="0.6"/>`+"\n", f1(captionY), Width, f1(Height-captionY))
	w.printf(`<line x1="40" y1="%s" x2="960" y2="%s" stroke="%s" stroke-width="0.5" opacity="0.4"/>`+"\n",
		f1(captionY), f1(captionY), sc.palette.Primary)
	w.printf(`<text x="48" y="%s" fill="%s" font-family="'Courier New',monospace" font-size="12" opacity="0.85">%s</text>`+"\n",
		f1(captionY+30), sc.palette.Primary, escape(caption))
	w.printf(`<text x="952" y="%s" fill="%s" font-family="'Courier New',monospace" font-size="10" opacity="0.5" text-anchor="end">MORTEM</text>`+"\n",
		f1(captionY+30), sc.palette.Secondary)
	w.line(`</g>`)
	return w.String(), nil
}

// Watermark glyphs on a 20x40 grid.
var watermarkGlyphs = map[rune]string{
	'M': "M0,40 L0,0 L10,20 L20,0 L20,40",
	'O': "M10,0 Q0,0 0,20 Q0,40 10,40 Q20,40 20,20 Q20,0 10,0 Z",
	'R': "M0,40 L0,0 L12,0 Q18,0 18,10 Q18,20 12,20 L0,20 M10,20 L18,40",
	'T': "M0,0 L20,0 M10,0 L10,40",
	'E': "M18,0 L0,0 L0,20 L14,20 M0,20 L0,40 L18,40",
}

// WatermarkWord is traced invisibly into every artifact.
const WatermarkWord = "MORTEM"

func buildWatermark(sc *scene) (string, error) {
	var w writer
	w.printf(`<g id="watermark" transform="translate(%s,%s) scale(0.4)" opacity="0" aria-hidden="true" data-word="%s">`+"\n",
		f1(CenterX-60), f1(CenterY), WatermarkWord)
	for i, letter := range WatermarkWord {
		w.printf(`<path d="%s" fill="none" stroke="%s" stroke-width="2" transform="translate(%d,0)" opacity="0"/>`+"\n",
			watermarkGlyphs[letter], sc.palette.Primary, i*26)
	}
	w.line(`</g>`)
	return w.String(), nil
}
