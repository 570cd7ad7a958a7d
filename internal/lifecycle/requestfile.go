package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyRequest indicates a request file carried no YAML document.
var ErrEmptyRequest = errors.New("lifecycle: empty request file")

// RequestFile is the on-disk shape written by the agent into the inbox. Its
// optional fields are filled in by Resolve.
type RequestFile struct {
	Reflection     string     `yaml:"reflection"`
	Phase          string     `yaml:"phase,omitempty"`
	Beat           uint64     `yaml:"beat"`
	TotalBeats     uint64     `yaml:"total_beats,omitempty"`
	BeatsRemaining *uint64    `yaml:"beats_remaining,omitempty"`
	Timestamp      string     `yaml:"timestamp,omitempty"`
	Chain          *ChainMeta `yaml:"chain,omitempty"`
}

// LoadRequest reads a YAML request file from disk.
func LoadRequest(path string, defaultTotal uint64) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("lifecycle: read %s: %w", path, err)
	}
	req, err := ParseRequest(data, defaultTotal)
	if err != nil {
		return Request{}, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// ParseRequest decodes a YAML request. A missing total falls back to
// defaultTotal, a missing remaining count is derived from the beat number, and
// a missing phase is derived from the resulting life fraction.
func ParseRequest(data []byte, defaultTotal uint64) (Request, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Request{}, ErrEmptyRequest
	}
	var raw RequestFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Request{}, fmt.Errorf("lifecycle: parse request: %w", err)
	}
	return raw.Resolve(defaultTotal)
}

// Resolve derives the missing counters and phase, then validates.
func (raw RequestFile) Resolve(defaultTotal uint64) (Request, error) {
	req := Request{
		Reflection: raw.Reflection,
		BeatNumber: raw.Beat,
		TotalBeats: raw.TotalBeats,
		Timestamp:  strings.TrimSpace(raw.Timestamp),
		Chain:      raw.Chain,
	}
	if req.TotalBeats == 0 {
		req.TotalBeats = defaultTotal
	}
	switch {
	case raw.BeatsRemaining != nil:
		req.BeatsRemaining = *raw.BeatsRemaining
	case req.BeatNumber <= req.TotalBeats:
		req.BeatsRemaining = req.TotalBeats - req.BeatNumber
	}
	if strings.TrimSpace(raw.Phase) == "" {
		req.Phase = PhaseFor(req.LifeFraction())
	} else {
		phase, err := ParsePhase(raw.Phase)
		if err != nil {
			return Request{}, err
		}
		req.Phase = phase
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// MarshalRequest renders a request in the inbox file format.
func MarshalRequest(req Request) ([]byte, error) {
	remaining := req.BeatsRemaining
	raw := RequestFile{
		Reflection:     req.Reflection,
		Phase:          string(req.Phase),
		Beat:           req.BeatNumber,
		TotalBeats:     req.TotalBeats,
		BeatsRemaining: &remaining,
		Timestamp:      req.Timestamp,
		Chain:          req.Chain,
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: encode request: %w", err)
	}
	return data, nil
}
