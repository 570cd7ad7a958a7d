// Package compose builds the layered illustration for one lifecycle snapshot.
//
// Layers are produced back to front by a fixed table of builders. Every
// builder draws from its own seeded sequence, so adding draws to one layer
// never shifts another. Nothing here touches the clock or the filesystem.
package compose

import (
	"fmt"
	"strings"

	"github.com/kingrea/mortem/internal/lifecycle"
	"github.com/kingrea/mortem/internal/seed"
	"github.com/kingrea/mortem/internal/stego"
	"github.com/kingrea/mortem/internal/themes"
)

// Canvas geometry shared by every layer.
const (
	Width   = 1000
	Height  = 1000
	CenterX = 500.0
	CenterY = 470.0
)

// Input is everything the pipeline needs for one render.
type Input struct {
	Request lifecycle.Request
	Themes  themes.Counts
	// Seed is the base string every layer derives its sequence from.
	Seed string
}

// Layer is one rendered group of markup.
type Layer struct {
	ID     string
	Markup string
}

// Geometry records the parameters the pipeline resolved, for previews and tests.
type Geometry struct {
	LifeFraction     float64
	DeathFraction    float64
	EyeOpenHeight    float64
	VoidRadius       float64
	ActiveNodes      int
	RosetteCircles   int
	SurvivingCircles int
	FieldParticles   int
	FlatlineX        float64
	PhaseOverlay     string
	ThemeOverlays    []string
}

// Stack is the ordered output of the pipeline.
type Stack struct {
	Layers   []Layer
	Geometry Geometry
	Carriers []stego.Carrier
}

// Markup concatenates every layer in order.
func (s Stack) Markup() string {
	var b strings.Builder
	for _, layer := range s.Layers {
		b.WriteString(layer.Markup)
		b.WriteByte('\n')
	}
	return b.String()
}

// Layer returns the layer with the given id.
func (s Stack) Layer(id string) (Layer, bool) {
	for _, layer := range s.Layers {
		if layer.ID == id {
			return layer, true
		}
	}
	return Layer{}, false
}

// scene is the per-render state threaded through the builders.
type scene struct {
	req     lifecycle.Request
	life    float64
	death   float64
	palette Palette
	themes  themes.Counts
	seed    string
	geo     *Geometry
	stego   []stego.Carrier
}

func (sc *scene) sequence(layer string) *seed.Sequence {
	return seed.Derive(sc.seed, layer)
}

type builder struct {
	id    string
	build func(*scene) (string, error)
}

// pipeline is the back-to-front layer order.
var pipeline = []builder{
	{"background", buildBackground},
	{"halo", buildHalo},
	{"eye", buildEye},
	{"inner-geometry", buildInnerGeometry},
	{"awareness-nodes", buildAwarenessNodes},
	{"central-void", buildCentralVoid},
	{"stego-field", buildStegoField},
	{"phase-overlay", buildPhaseOverlay},
	{"theme-overlays", buildThemeOverlays},
	{"reflection-text", buildReflectionText},
	{"vital-sign", buildVitalSign},
	{"caption", buildCaption},
	{"watermark", buildWatermark},
}

// LayerIDs lists the layer ids in render order.
func LayerIDs() []string {
	ids := make([]string, len(pipeline))
	for i, b := range pipeline {
		ids[i] = b.id
	}
	return ids
}

// Build runs every layer builder for in.
func Build(in Input) (Stack, error) {
	if err := in.Request.Validate(); err != nil {
		return Stack{}, err
	}
	geo := Geometry{
		LifeFraction:  in.Request.LifeFraction(),
		DeathFraction: in.Request.DeathFraction(),
	}
	sc := &scene{
		req:     in.Request,
		life:    geo.LifeFraction,
		death:   geo.DeathFraction,
		palette: PaletteFor(in.Request.Phase),
		themes:  in.Themes,
		seed:    in.Seed,
		geo:     &geo,
	}
	layers := make([]Layer, 0, len(pipeline))
	for _, b := range pipeline {
		markup, err := b.build(sc)
		if err != nil {
			return Stack{}, fmt.Errorf("compose: %s: %w", b.id, err)
		}
		layers = append(layers, Layer{ID: b.id, Markup: markup})
	}
	return Stack{Layers: layers, Geometry: geo, Carriers: sc.stego}, nil
}
