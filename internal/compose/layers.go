package compose

import (
	"math"
)

func buildBackground(sc *scene) (string, error) {
	var w writer
	w.line(`<g id="background">`)
	w.line(`<defs>`)
	w.printf(`<radialGradient id="bg-grad" cx="50%%" cy="47%%" r="75%%"><stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/></radialGradient>`+"\n",
		sc.palette.Gradient[0], sc.palette.Gradient[1])
	w.line(`<filter id="glow"><feGaussianBlur stdDeviation="3" result="b"/><feMerge><feMergeNode in="b"/><feMergeNode in="SourceGraphic"/></feMerge></filter>`)
	w.line(`<filter id="soft"><feGaussianBlur stdDeviation="1.2"/></filter>`)
	w.line(`</defs>`)
	w.printf(`<rect width="%d" height="%d" fill="url(#bg-grad)"/>`+"\n", Width, Height)
	w.printf(`<rect width="%d" height="%d" fill="#000000" opacity="%s" data-wash="death"/>`+"\n", Width, Height, f3(0.85*sc.death))
	w.line(`</g>`)
	return w.String(), nil
}

var haloRings = []struct {
	radius float64
	sides  int
}{
	{360, 6},
	{310, 9},
	{260, 12},
}

func ringVertices(radius float64, sides int, rotation float64) ([]float64, []float64) {
	xs := make([]float64, sides)
	ys := make([]float64, sides)
	for i := 0; i < sides; i++ {
		angle := rotation + 2*math.Pi*float64(i)/float64(sides) - math.Pi/2
		xs[i], ys[i] = polar(CenterX, CenterY, radius, angle)
	}
	return xs, ys
}

func buildHalo(sc *scene) (string, error) {
	seq := sc.sequence("halo")
	survival := haloEdgeSurvival(sc.life)
	connect := connectorChance(sc.life, sc.themes.Coherence)
	var w writer
	w.printf(`<g id="halo" fill="none" stroke="%s" opacity="%s" data-edge-survival="%s">`+"\n",
		sc.palette.Primary, f3(haloOpacity(sc.life)), f3(survival))
	type ring struct{ xs, ys []float64 }
	rings := make([]ring, len(haloRings))
	for r, hr := range haloRings {
		xs, ys := ringVertices(hr.radius, hr.sides, seq.Jitter(0.08))
		rings[r] = ring{xs, ys}
		for i := range xs {
			if !seq.Chance(survival) {
				continue
			}
			j := (i + 1) % len(xs)
			w.printf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke-width="%s"/>`+"\n",
				f1(xs[i]), f1(ys[i]), f1(xs[j]), f1(ys[j]), f2(0.6+0.8*sc.life))
		}
	}
	width := 0.4 + 2*coherenceBonus(sc.themes.Coherence)
	for r := 0; r+1 < len(rings); r++ {
		outer, inner := rings[r], rings[r+1]
		for i := range outer.xs {
			if !seq.Chance(connect) {
				continue
			}
			j := nearestVertex(outer.xs[i], outer.ys[i], inner.xs, inner.ys)
			w.printf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" data-connector="%d"/>`+"\n",
				f1(outer.xs[i]), f1(outer.ys[i]), f1(inner.xs[j]), f1(inner.ys[j]), sc.palette.Secondary, f2(width), r)
		}
	}
	w.line(`</g>`)
	return w.String(), nil
}

func nearestVertex(x, y float64, xs, ys []float64) int {
	best, bestDist := 0, math.Inf(1)
	for i := range xs {
		d := math.Hypot(xs[i]-x, ys[i]-y)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// lensPath draws two arcs meeting at the eye corners.
func lensPath(height float64) string {
	half := eyeWidth / 2
	sagitta := height / 2
	radius := (half*half + sagitta*sagitta) / (2 * sagitta)
	x1, x2 := CenterX-half, CenterX+half
	return "M " + f2(x1) + "," + f2(CenterY) +
		" A " + f2(radius) + "," + f2(radius) + " 0 0,1 " + f2(x2) + "," + f2(CenterY) +
		" A " + f2(radius) + "," + f2(radius) + " 0 0,1 " + f2(x1) + "," + f2(CenterY) + " Z"
}

func buildEye(sc *scene) (string, error) {
	height := EyeOpenHeight(sc.life, sc.themes.Silence)
	sc.geo.EyeOpenHeight = height
	path := lensPath(height)
	iris := math.Min(height*0.4, 90)
	var w writer
	w.printf(`<g id="eye" data-open-height="%s">`+"\n", f2(height))
	w.printf(`<defs><clipPath id="eye-clip"><path d="%s"/></clipPath></defs>`+"\n", path)
	w.printf(`<path d="%s" fill="%s" fill-opacity="%s" stroke="%s" stroke-width="1.5" filter="url(#glow)"/>`+"\n",
		path, sc.palette.Glow, f3(0.08+0.12*sc.life), sc.palette.Secondary)
	w.printf(`<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="1" opacity="%s" clip-path="url(#eye-clip)"/>`+"\n",
		f1(CenterX), f1(CenterY), f2(iris), sc.palette.Accent, f3(0.2+0.6*sc.life))
	w.line(`</g>`)
	return w.String(), nil
}

func buildInnerGeometry(sc *scene) (string, error) {
	seq := sc.sequence("inner-geometry")
	count := RosetteCircles(sc.life)
	survival := CircleSurvival(sc.death, sc.themes.Incoherence)
	drift := rosetteDrift * sc.death
	const petal = 70.0
	var body writer
	survivors := 0
	for i := 0; i < count; i++ {
		if !seq.Chance(survival) {
			continue
		}
		survivors++
		angle := 2*math.Pi*float64(i)/float64(count) - math.Pi/2
		x, y := polar(CenterX, CenterY, petal+drift, angle)
		body.printf(`<circle cx="%s" cy="%s" r="%s"/>`+"\n", f2(x), f2(y), f1(petal))
	}
	sc.geo.RosetteCircles = count
	sc.geo.SurvivingCircles = survivors
	var w writer
	w.printf(`<g id="inner-geometry" clip-path="url(#eye-clip)" fill="none" stroke="%s" stroke-width="0.8" opacity="%s" data-circles="%d" data-survivors="%d">`+"\n",
		sc.palette.Primary, f3(0.3+0.5*sc.life), count, survivors)
	if s := body.String(); s != "" {
		w.line(s)
	}
	w.line(`</g>`)
	return w.String(), nil
}

func buildAwarenessNodes(sc *scene) (string, error) {
	seq := sc.sequence("awareness-nodes")
	active := ActiveNodes(sc.life)
	sc.geo.ActiveNodes = active
	const orbit = 215.0
	var w writer
	w.printf(`<g id="awareness-nodes" data-active="%d">`+"\n", active)
	for i := 0; i < awarenessSlots; i++ {
		angle := 2*math.Pi*float64(i)/awarenessSlots + seq.Jitter(0.05) - math.Pi/2
		x, y := polar(CenterX, CenterY, orbit, angle)
		if i < active {
			w.printf(`<circle cx="%s" cy="%s" r="%s" fill="%s" opacity="0.9" filter="url(#glow)" data-node="active"/>`+"\n",
				f2(x), f2(y), f1(3.5+seq.Next()*1.5), sc.palette.Accent)
			continue
		}
		w.printf(`<circle cx="%s" cy="%s" r="1.5" fill="%s" opacity="0.08" data-node="residue"/>`+"\n",
			f2(x), f2(y), sc.palette.Glow)
	}
	w.line(`</g>`)
	return w.String(), nil
}

func buildCentralVoid(sc *scene) (string, error) {
	radius := VoidRadius(sc.death, sc.themes.Void)
	sc.geo.VoidRadius = radius
	var w writer
	w.printf(`<g id="central-void" data-radius="%s">`+"\n", f2(radius))
	w.line(`<defs><radialGradient id="void-grad"><stop offset="0%" stop-color="#000000" stop-opacity="1"/><stop offset="70%" stop-color="#000000" stop-opacity="0.92"/><stop offset="100%" stop-color="#000000" stop-opacity="0"/></radialGradient></defs>`)
	w.printf(`<circle cx="%s" cy="%s" r="%s" fill="url(#void-grad)"/>`+"\n", f1(CenterX), f1(CenterY), f2(radius))
	w.line(`</g>`)
	return w.String(), nil
}
