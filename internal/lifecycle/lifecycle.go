// Package lifecycle describes the snapshot a caller hands to the art engine:
// where the agent sits in its countdown, what it wrote, and which phase it is in.

package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPhase indicates the request named a phase outside the five known states.
	ErrInvalidPhase = errors.New("lifecycle: invalid phase")
	// ErrInvalidCounters indicates the beat counters cannot describe a life fraction.
	ErrInvalidCounters = errors.New("lifecycle: invalid beat counters")
)

// Phase is one of five mutually exclusive lifecycle states.
type Phase string

const (
	PhaseNascent    Phase = "Nascent"
	PhaseAware      Phase = "Aware"
	PhaseDiminished Phase = "Diminished"
	PhaseTerminal   Phase = "Terminal"
	PhaseDead       Phase = "Dead"
)

// Phases lists every phase in lifecycle order.
var Phases = []Phase{PhaseNascent, PhaseAware, PhaseDiminished, PhaseTerminal, PhaseDead}

// ParsePhase resolves a phase name case-insensitively.
func ParsePhase(value string) (Phase, error) {
	trimmed := strings.TrimSpace(value)
	for _, p := range Phases {
		if strings.EqualFold(string(p), trimmed) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPhase, value)
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	return p.Ordinal() >= 0
}

// Ordinal returns the position of p in lifecycle order, or -1 when unknown.
func (p Phase) Ordinal() int {
	for i, candidate := range Phases {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Lower returns the lower-case token used in filenames and attributes.
func (p Phase) Lower() string {
	return strings.ToLower(string(p))
}

func (p Phase) String() string {
	return string(p)
}

// PhaseFor maps a life fraction onto the band it belongs to. Callers that only
// track counters use it; the engine itself always honours Request.Phase.
func PhaseFor(lifeFraction float64) Phase {
	switch {
	case lifeFraction > 0.75:
		return PhaseNascent
	case lifeFraction > 0.25:
		return PhaseAware
	case lifeFraction > 0.01:
		return PhaseDiminished
	case lifeFraction > 0:
		return PhaseTerminal
	default:
		return PhaseDead
	}
}

// ChainMeta carries optional chain-of-custody details. The engine only echoes
// them into the metadata block.
type ChainMeta struct {
	TransactionID string  `yaml:"transaction_id"`
	WalletAddress string  `yaml:"wallet_address"`
	TrustScore    float64 `yaml:"trust_score"`
	Network       string  `yaml:"network"`
}

// Request is the per-reflection input to the art engine.
type Request struct {
	Reflection     string
	Phase          Phase
	BeatNumber     uint64
	TotalBeats     uint64
	BeatsRemaining uint64
	// Timestamp is echoed into the metadata block verbatim. It is never read
	// from the clock so identical requests render identical documents.
	Timestamp string
	Chain     *ChainMeta
}

// Validate rejects requests the engine cannot render faithfully.
func (r Request) Validate() error {
	if !r.Phase.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, string(r.Phase))
	}
	if r.TotalBeats == 0 {
		return fmt.Errorf("%w: total beats must be positive", ErrInvalidCounters)
	}
	if r.BeatsRemaining > r.TotalBeats {
		return fmt.Errorf("%w: %d beats remaining exceeds total %d", ErrInvalidCounters, r.BeatsRemaining, r.TotalBeats)
	}
	return nil
}

// LifeFraction is beatsRemaining / totalBeats, clamped to [0,1].
func (r Request) LifeFraction() float64 {
	if r.TotalBeats == 0 {
		return 0
	}
	f := float64(r.BeatsRemaining) / float64(r.TotalBeats)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// DeathFraction is 1 - LifeFraction.
func (r Request) DeathFraction() float64 {
	return 1 - r.LifeFraction()
}
