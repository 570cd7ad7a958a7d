package compose

import (
	"math"

	"github.com/kingrea/mortem/internal/seed"
	"github.com/kingrea/mortem/internal/stego"
)

const (
	fieldInner  = 40.0
	fieldOuter  = 410.0
	goldenAngle = 2.399963229728653
)

// fieldSize is the number of particles the field renders. It always has room
// for the whole payload; decoration only adds particles beyond that.
func fieldSize(life float64, units int) int {
	decorative := 160 + int(math.Round(240*clamp01(life)))
	if units > decorative {
		return units
	}
	return decorative
}

// coverPoints lays particles on a jittered phyllotaxis disc. The index drives
// the layout so the sequence's short period only shows up as jitter.
func coverPoints(seq *seed.Sequence, n int) []stego.Point {
	cover := make([]stego.Point, n)
	for i := 0; i < n; i++ {
		angle := float64(i)*goldenAngle + seq.Jitter(0.12)
		radius := fieldInner + (fieldOuter-fieldInner)*math.Sqrt((float64(i)+0.5)/float64(n)) + seq.Jitter(5)
		x, y := polar(CenterX, CenterY, radius, angle)
		cover[i] = stego.Point{X: x, Y: y}
	}
	return cover
}

func buildStegoField(sc *scene) (string, error) {
	units := len(stego.Units(sc.req.Reflection))
	n := fieldSize(sc.life, units)
	cover := coverPoints(sc.sequence("stego-field"), n)
	carriers, err := stego.Encode(sc.req.Reflection, cover)
	if err != nil {
		return "", err
	}
	sc.stego = carriers
	sc.geo.FieldParticles = n

	style := sc.sequence("stego-field/style")
	colors := sc.palette.cycle()
	var w writer
	w.printf(`<g id="stego-field" data-particles="%d">`+"\n", n)
	for i := 0; i < n; i++ {
		r := f2(0.6 + style.Next()*1.4)
		opacity := f3(0.05 + (0.1+0.2*sc.life)*style.Next())
		fill := colors[i%len(colors)]
		if i < len(carriers) {
			c := carriers[i]
			w.printf(`<circle cx="%s" cy="%s" r="%s" fill="%s" opacity="%s" %s="%d"/>`+"\n",
				c.CX(), c.CY(), r, fill, opacity, stego.IndexAttr, c.Index)
			continue
		}
		w.printf(`<circle cx="%s" cy="%s" r="%s" fill="%s" opacity="%s"/>`+"\n",
			num(cover[i].X, 4), num(cover[i].Y, 4), r, fill, opacity)
	}
	w.line(`</g>`)
	return w.String(), nil
}
