// Package seed turns a seed string into a deterministic stream of floats.
//
// The stream reads 4-byte big-endian windows out of a single SHA-256 digest at
// offset (n*4) mod 32, so it repeats every 8 draws. Existing artifacts depend
// on that exact arithmetic; use Derive to get independent streams instead of
// changing it.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
)

// Period is the number of draws before a Sequence repeats.
const Period = sha256.Size / 4

const maxWindow = float64(1<<32 - 1)

// Sequence is a deterministic float generator. It is not safe for concurrent use;
// each render owns its own sequences.
type Sequence struct {
	digest [sha256.Size]byte
	n      int
}

// New hashes seed and returns a sequence positioned at draw 0.
func New(seed string) *Sequence {
	return &Sequence{digest: sha256.Sum256([]byte(seed))}
}

// Derive returns a sequence for one named consumer of base, so layers do not
// share a digest.
func Derive(base, label string) *Sequence {
	return New(base + "/" + label)
}

// Next returns the next value in [0,1]. Only an all-0xFF window reaches 1.
func (s *Sequence) Next() float64 {
	off := (s.n * 4) % sha256.Size
	s.n++
	var window [4]byte
	for i := range window {
		window[i] = s.digest[(off+i)%sha256.Size]
	}
	return float64(binary.BigEndian.Uint32(window[:])) / maxWindow
}

// Draws reports how many values have been consumed.
func (s *Sequence) Draws() int {
	return s.n
}

// Between returns a value in [lo, hi].
func (s *Sequence) Between(lo, hi float64) float64 {
	return lo + s.Next()*(hi-lo)
}

// Jitter returns a value in [-amplitude, amplitude].
func (s *Sequence) Jitter(amplitude float64) float64 {
	return (s.Next() - 0.5) * 2 * amplitude
}

// Intn returns an int in [0, n). n <= 0 yields 0.
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(s.Next() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Chance reports whether the next draw falls below p.
func (s *Sequence) Chance(p float64) bool {
	return s.Next() < p
}
