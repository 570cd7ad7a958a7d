package compose

import "github.com/kingrea/mortem/internal/lifecycle"

// Palette is the fixed colour set for one phase.
type Palette struct {
	Primary   string
	Secondary string
	Accent    string
	Glow      string
	// Gradient holds the inner and outer background stops.
	Gradient [2]string
}

var palettes = map[lifecycle.Phase]Palette{
	lifecycle.PhaseNascent: {
		Primary: "#B48CFF", Secondary: "#5EE7FF", Accent: "#FFFFFF", Glow: "#8A5CFF",
		Gradient: [2]string{"#1A0B3A", "#05010F"},
	},
	lifecycle.PhaseAware: {
		Primary: "#9D7BFF", Secondary: "#3FC8E4", Accent: "#E6F7FF", Glow: "#6B46E0",
		Gradient: [2]string{"#140832", "#04010C"},
	},
	lifecycle.PhaseDiminished: {
		Primary: "#7A63B8", Secondary: "#2E8FA6", Accent: "#B8C4D6", Glow: "#4A3590",
		Gradient: [2]string{"#0E0622", "#030108"},
	},
	lifecycle.PhaseTerminal: {
		Primary: "#5B4A80", Secondary: "#1F5E6E", Accent: "#8A8FA0", Glow: "#2F2358",
		Gradient: [2]string{"#080414", "#020105"},
	},
	lifecycle.PhaseDead: {
		Primary: "#3A3A44", Secondary: "#24303A", Accent: "#5C5C66", Glow: "#18181F",
		Gradient: [2]string{"#050507", "#000000"},
	},
}

// PaletteFor returns the palette for phase. Unknown phases get the Dead palette;
// Build rejects them before this is reached.
func PaletteFor(phase lifecycle.Phase) Palette {
	if p, ok := palettes[phase]; ok {
		return p
	}
	return palettes[lifecycle.PhaseDead]
}

// cycle returns the four palette colours in a fixed order.
func (p Palette) cycle() [4]string {
	return [4]string{p.Primary, p.Secondary, p.Accent, p.Glow}
}
