package compose

import "math"

// Eye lens bounds, in canvas units.
const (
	eyeMinHeight   = 40.0
	eyeMaxHeight   = 320.0
	eyeFloor       = 12.0
	eyeWidth       = 540.0
	silencePerHit  = 6.0
	silenceMaxCut  = 30.0
	voidMinRadius  = 8.0
	voidMaxRadius  = 150.0
	voidPerHit     = 6.0
	voidMaxBonus   = 48.0
	awarenessSlots = 12
	rosetteMin     = 7
	rosetteMax     = 19
	rosetteDrift   = 60.0
	vitalLeft      = 40.0
	vitalRight     = 960.0
)

// EyeOpenHeight is minH + (maxH-minH)*life^0.7, narrowed by the silence theme.
func EyeOpenHeight(life float64, silence int) float64 {
	h := eyeMinHeight + (eyeMaxHeight-eyeMinHeight)*math.Pow(clamp01(life), 0.7)
	h -= math.Min(float64(silence)*silencePerHit, silenceMaxCut)
	return math.Max(h, eyeFloor)
}

// VoidRadius is minR + (maxR-minR)*death^0.8 plus a capped bonus for the void theme.
func VoidRadius(death float64, void int) float64 {
	r := voidMinRadius + (voidMaxRadius-voidMinRadius)*math.Pow(clamp01(death), 0.8)
	return r + math.Min(float64(void)*voidPerHit, voidMaxBonus)
}

// ActiveNodes is floor(12*life).
func ActiveNodes(life float64) int {
	return int(math.Floor(awarenessSlots * clamp01(life)))
}

// RosetteCircles grows from 7 to 19 circles with life.
func RosetteCircles(life float64) int {
	return rosetteMin + int(math.Round(float64(rosetteMax-rosetteMin)*clamp01(life)))
}

// CircleSurvival is 1 - (0.4*death + incoherence bonus), never below zero.
func CircleSurvival(death float64, incoherence int) float64 {
	bonus := math.Min(float64(incoherence)*0.05, 0.25)
	return math.Max(0, 1-(clamp01(death)*0.4+bonus))
}

// FlatlineX is where the vital sign goes flat.
func FlatlineX(life float64) float64 {
	return vitalLeft + (vitalRight-vitalLeft)*clamp01(life)
}

// haloOpacity and haloEdgeSurvival fade the halo with life.
func haloOpacity(life float64) float64      { return 0.15 + 0.55*clamp01(life) }
func haloEdgeSurvival(life float64) float64 { return 0.35 + 0.65*clamp01(life) }

// connectorChance strengthens cross-ring links for coherent reflections.
func connectorChance(life float64, coherence int) float64 {
	return 0.15 + 0.35*clamp01(life) + coherenceBonus(coherence)
}

func coherenceBonus(coherence int) float64 {
	return math.Min(float64(coherence)*0.08, 0.3)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
