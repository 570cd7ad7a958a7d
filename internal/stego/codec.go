// Package stego hides a byte payload in the sub-visual decimal digits of
// rendered coordinates and recovers it again.
//
// Each payload byte rides on one point. The integer part and the first two
// decimals of both coordinates are left exactly as the decorative layer chose
// them; the high nibble is written into the 3rd and 4th decimals of x, the low
// nibble into the 3rd and 4th decimals of y.
package stego

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxTextRunes bounds how much of the reflection is embedded.
const MaxTextRunes = 500

// Magic prefixes every payload.
var Magic = [2]byte{0xDE, 0xAD}

// maxPayload bounds the unit indexes a decoder will accept: the header plus
// MaxTextRunes four-byte runes.
const maxPayload = len(Magic) + 4*MaxTextRunes

// ErrCapacity is returned when fewer cover points than units were supplied.
var ErrCapacity = errors.New("stego: not enough cover points")

// Unit binds one payload byte to a carrier slot.
type Unit struct {
	Index int
	Hi    uint8
	Lo    uint8
}

// Byte reassembles the payload byte.
func (u Unit) Byte() byte {
	return u.Hi<<4 | u.Lo
}

// Point is an undisturbed cover coordinate chosen by the decorative layer.
type Point struct {
	X, Y float64
}

// Carrier is a cover point after encoding. Coordinates are held in
// ten-thousandths so formatting never rounds the payload away.
type Carrier struct {
	Index int
	X     int64
	Y     int64
}

// CX formats the x coordinate with exactly four decimals.
func (c Carrier) CX() string { return formatFixed(c.X) }

// CY formats the y coordinate with exactly four decimals.
func (c Carrier) CY() string { return formatFixed(c.Y) }

// Truncate cuts text to MaxTextRunes characters.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxTextRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxTextRunes])
}

// minPayload is the shortest payload a decoder accepts: the header plus one
// body byte.
const minPayload = len(Magic) + 1

// Embedded is the text Encode actually carries and Decode gives back:
// truncated to MaxTextRunes with trailing NULs removed.
func Embedded(text string) string {
	return strings.TrimRight(Truncate(text), "\x00")
}

// Payload returns the magic header followed by the surviving UTF-8 text. An
// empty body is padded with a single NUL so the payload stays decodable.
func Payload(text string) []byte {
	body := Embedded(text)
	payload := make([]byte, 0, minPayload+len(body))
	payload = append(payload, Magic[:]...)
	payload = append(payload, body...)
	for len(payload) < minPayload {
		payload = append(payload, 0)
	}
	return payload
}

// Units splits the payload for text into nibble pairs.
func Units(text string) []Unit {
	payload := Payload(text)
	units := make([]Unit, len(payload))
	for i, b := range payload {
		units[i] = Unit{Index: i, Hi: b >> 4, Lo: b & 0x0F}
	}
	return units
}

// Encode writes the payload for text into the first len(Units(text)) cover
// points. Extra cover points are ignored; callers render them undecorated.
func Encode(text string, cover []Point) ([]Carrier, error) {
	units := Units(text)
	if len(cover) < len(units) {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrCapacity, len(units), len(cover))
	}
	carriers := make([]Carrier, len(units))
	for i, u := range units {
		carriers[i] = Carrier{
			Index: u.Index,
			X:     embed(cover[i].X, u.Hi),
			Y:     embed(cover[i].Y, u.Lo),
		}
	}
	return carriers, nil
}

// embed keeps the first two decimals of v and stores nibble in the next two.
func embed(v float64, nibble uint8) int64 {
	hundredths := int64(v * 100)
	if v < 0 {
		return hundredths*100 - int64(nibble)
	}
	return hundredths*100 + int64(nibble)
}

func formatFixed(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%04d", sign, v/10000, v%10000)
}

// Result reports the outcome of a decode.
type Result struct {
	Success   bool   `json:"success" yaml:"success"`
	Text      string `json:"text,omitempty" yaml:"text,omitempty"`
	ByteCount int    `json:"byte_count,omitempty" yaml:"byte_count,omitempty"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Decode rebuilds the payload from carriers in any order.
func Decode(carriers []Carrier) Result {
	units := make([]Unit, 0, len(carriers))
	for _, c := range carriers {
		units = append(units, Unit{Index: c.Index, Hi: nibbleOf(c.X), Lo: nibbleOf(c.Y)})
	}
	return decodeUnits(units)
}

func nibbleOf(v int64) uint8 {
	if v < 0 {
		v = -v
	}
	return clampNibble(int(v % 100))
}

func clampNibble(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 15 {
		return 15
	}
	return uint8(v)
}

func decodeUnits(units []Unit) Result {
	kept := units[:0:0]
	for _, u := range units {
		if u.Index >= 0 && u.Index < maxPayload {
			kept = append(kept, u)
		}
	}
	if len(kept) < minPayload {
		return Result{Reason: fmt.Sprintf("found %d tagged units, need at least %d", len(kept), minPayload)}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Index < kept[j].Index })
	raw := make([]byte, kept[len(kept)-1].Index+1)
	for _, u := range kept {
		raw[u.Index] = u.Byte()
	}
	if len(raw) < minPayload {
		return Result{Reason: fmt.Sprintf("unit indexes span %d bytes, need at least %d", len(raw), minPayload)}
	}
	if raw[0] != Magic[0] || raw[1] != Magic[1] {
		return Result{Reason: fmt.Sprintf("bad magic %02x%02x", raw[0], raw[1])}
	}
	body := raw[len(Magic):]
	for len(body) > 0 && body[len(body)-1] == 0 {
		body = body[:len(body)-1]
	}
	return Result{
		Success:   true,
		Text:      strings.ToValidUTF8(string(body), "\uFFFD"),
		ByteCount: len(body),
	}
}
