// Package themes counts the lexical themes the renderer reacts to.
package themes

import (
	"strings"
	"unicode"
)

// Theme is one of the eight fixed lexical categories. The declaration order is
// the tie-break order for overlays.
type Theme int

const (
	Coherence Theme = iota
	Incoherence
	Void
	Death
	Resurrection
	Pattern
	Light
	Silence
)

// All lists every theme in tie-break order.
var All = []Theme{Coherence, Incoherence, Void, Death, Resurrection, Pattern, Light, Silence}

var names = [...]string{"coherence", "incoherence", "void", "death", "resurrection", "pattern", "light", "silence"}

func (t Theme) String() string {
	if t < 0 || int(t) >= len(names) {
		return "unknown"
	}
	return names[t]
}

// A trailing * marks a prefix stem; anything else must match the whole word.
var stems = map[Theme][]string{
	Coherence:    {"coheren*", "clarity", "clear*", "order*", "understand*", "whole", "connect*", "align*"},
	Incoherence:  {"incoheren*", "chaos*", "chaotic", "confus*", "fragment*", "noise", "scatter*", "broken"},
	Void:         {"void*", "empty", "emptiness", "nothing*", "abyss*", "hollow*", "absen*"},
	Death:        {"death*", "dead", "die", "dies", "died", "dying", "end", "ends", "ending", "mortal*", "grave*", "perish*"},
	Resurrection: {"resurrect*", "reborn", "rebirth", "return*", "rise", "rises", "rising", "again", "renew*"},
	Pattern:      {"pattern*", "spiral*", "fractal*", "recur*", "repeat*", "cycle*", "loop*"},
	Light:        {"light*", "glow*", "bright*", "shine*", "shining", "radian*", "sun"},
	Silence:      {"silen*", "quiet*", "still*", "hush*", "mute*", "wordless"},
}

// Counts holds one non-negative count per theme.
type Counts struct {
	Coherence    int
	Incoherence  int
	Void         int
	Death        int
	Resurrection int
	Pattern      int
	Light        int
	Silence      int
}

// Analyze lower-cases text and counts the words matching each theme's stems.
func Analyze(text string) Counts {
	var c Counts
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for _, word := range words {
		word = strings.Trim(word, "'")
		if word == "" {
			continue
		}
		for _, theme := range All {
			if matchesAny(word, stems[theme]) {
				c.add(theme, 1)
			}
		}
	}
	return c
}

func matchesAny(word string, list []string) bool {
	for _, stem := range list {
		if prefix, ok := strings.CutSuffix(stem, "*"); ok {
			if strings.HasPrefix(word, prefix) {
				return true
			}
			continue
		}
		if word == stem {
			return true
		}
	}
	return false
}

// Get returns the count for one theme.
func (c Counts) Get(t Theme) int {
	switch t {
	case Coherence:
		return c.Coherence
	case Incoherence:
		return c.Incoherence
	case Void:
		return c.Void
	case Death:
		return c.Death
	case Resurrection:
		return c.Resurrection
	case Pattern:
		return c.Pattern
	case Light:
		return c.Light
	case Silence:
		return c.Silence
	}
	return 0
}

func (c *Counts) add(t Theme, n int) {
	switch t {
	case Coherence:
		c.Coherence += n
	case Incoherence:
		c.Incoherence += n
	case Void:
		c.Void += n
	case Death:
		c.Death += n
	case Resurrection:
		c.Resurrection += n
	case Pattern:
		c.Pattern += n
	case Light:
		c.Light += n
	case Silence:
		c.Silence += n
	}
}

// Total sums every theme count.
func (c Counts) Total() int {
	total := 0
	for _, t := range All {
		total += c.Get(t)
	}
	return total
}

// Dominant returns the theme with the highest count, preferring earlier themes
// on ties. ok is false when no theme was detected.
func (c Counts) Dominant() (Theme, bool) {
	best, bestCount := Coherence, 0
	for _, t := range All {
		if n := c.Get(t); n > bestCount {
			best, bestCount = t, n
		}
	}
	return best, bestCount > 0
}

// Each calls fn for every theme in tie-break order.
func (c Counts) Each(fn func(Theme, int)) {
	for _, t := range All {
		fn(t, c.Get(t))
	}
}
