package stego

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func coverFor(n int) []Point {
	cover := make([]Point, n)
	for i := range cover {
		cover[i] = Point{X: 100 + float64(i)*1.237, Y: 900 - float64(i)*0.913}
	}
	return cover
}

func TestUnitsIncludeMagicHeader(t *testing.T) {
	units := Units("hi")
	want := []Unit{
		{Index: 0, Hi: 0xD, Lo: 0xE},
		{Index: 1, Hi: 0xA, Lo: 0xD},
		{Index: 2, Hi: 0x6, Lo: 0x8},
		{Index: 3, Hi: 0x6, Lo: 0x9},
	}
	if diff := cmp.Diff(want, units); diff != "" {
		t.Fatalf("units mismatch (-want +got):\n%s", diff)
	}
}

func TestUnitCountIsCappedAtFiveHundredCharacters(t *testing.T) {
	long := strings.Repeat("a", 800)
	if got := len(Units(long)); got != 502 {
		t.Fatalf("expected 502 units, got %d", got)
	}
	if got := len(Units("")); got != 3 {
		t.Fatalf("expected magic plus one pad unit for empty text, got %d", got)
	}
}

func TestEmptyTextIsPaddedToDecodableLength(t *testing.T) {
	want := []byte{0xDE, 0xAD, 0x00}
	if diff := cmp.Diff(want, Payload("")); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, Payload("\x00\x00")); diff != "" {
		t.Fatalf("NUL-only payload mismatch (-want +got):\n%s", diff)
	}
	carriers, err := Encode("", coverFor(3))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := Decode(carriers)
	if !got.Success || got.Text != "" || got.ByteCount != 0 {
		t.Fatalf("empty text decoded to %+v", got)
	}
}

func TestTrailingNULsAreNotEmbedded(t *testing.T) {
	if got := Embedded("end\x00\x00"); got != "end" {
		t.Fatalf("Embedded = %q, want %q", got, "end")
	}
	if got := Embedded("mid\x00dle"); got != "mid\x00dle" {
		t.Fatalf("interior NUL lost: %q", got)
	}
	if got := len(Units("end\x00")); got != 5 {
		t.Fatalf("expected trailing NUL to be dropped from the payload, got %d units", got)
	}
}

func TestEncodePreservesVisiblePosition(t *testing.T) {
	cover := []Point{{X: 123.4567, Y: 45.6789}, {X: 7.01, Y: 0.99}, {X: 300, Y: 300}}
	carriers, err := Encode("A", cover)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := carriers[0].CX(); !strings.HasPrefix(got, "123.45") {
		t.Fatalf("x moved visibly: %s", got)
	}
	if got := carriers[0].CY(); !strings.HasPrefix(got, "45.67") {
		t.Fatalf("y moved visibly: %s", got)
	}
	if got := carriers[0].CX(); got != "123.4513" {
		t.Fatalf("expected hi nibble 13 in x, got %s", got)
	}
	if got := carriers[0].CY(); got != "45.6714" {
		t.Fatalf("expected lo nibble 14 in y, got %s", got)
	}
}

func TestEncodeReportsCapacity(t *testing.T) {
	_, err := Encode("too long for two points", coverFor(2))
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"I was. I thought. I end.",
		"naïve café — 死 と 再生 🌑",
		strings.Repeat("void ", 100),
		"trailing spaces   ",
		"end\x00",
		"\x00",
	}
	for _, text := range texts {
		cover := coverFor(len(Units(text)))
		carriers, err := Encode(text, cover)
		if err != nil {
			t.Fatalf("encode %q: %v", text, err)
		}
		got := Decode(carriers)
		if !got.Success {
			t.Fatalf("decode %q failed: %s", text, got.Reason)
		}
		if got.Text != Embedded(text) {
			t.Fatalf("round trip mismatch: got %q want %q", got.Text, Embedded(text))
		}
	}
}

func TestDecodeIsOrderIndependent(t *testing.T) {
	text := "order does not matter"
	carriers, err := Encode(text, coverFor(40))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	reversed := make([]Carrier, len(carriers))
	for i, c := range carriers {
		reversed[len(carriers)-1-i] = c
	}
	if got := Decode(reversed); got.Text != text {
		t.Fatalf("got %q", got.Text)
	}
}

func TestDecodeRejectsShortAndBadMagic(t *testing.T) {
	if got := Decode(nil); got.Success {
		t.Fatalf("zero units must fail")
	}
	carriers, _ := Encode("x", coverFor(3))
	if got := Decode(carriers[:2]); got.Success {
		t.Fatalf("two units must fail")
	}
	carriers[0].X = carriers[0].X/100*100 + 0x0C
	if got := Decode(carriers); got.Success {
		t.Fatalf("bad magic must fail")
	}
}

func TestDecodeTrimsTrailingNULs(t *testing.T) {
	carriers, _ := Encode("ok", coverFor(4))
	pad := Carrier{Index: 4, X: 10000, Y: 10000}
	got := Decode(append(carriers, pad))
	want := Result{Success: true, Text: "ok", ByteCount: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch:\n%s", diff)
	}
}

func TestDecodeDocumentReadsTaggedElements(t *testing.T) {
	text := "I was. I thought. I end."
	carriers, err := Encode(text, coverFor(len(Units(text))+5))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg"><g id="field">`)
	b.WriteString(`<circle cx="1.5" cy="2.5" r="1"/>`)
	for i := len(carriers) - 1; i >= 0; i-- {
		c := carriers[i]
		fmt.Fprintf(&b, `<circle r="0.8" data-u="%d" cy="%s" cx="%s" opacity="0.1"/>`, c.Index, c.CY(), c.CX())
	}
	b.WriteString(`</g></svg>`)
	got := DecodeDocument(b.String())
	if !got.Success || got.Text != text {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.ByteCount != len(text) {
		t.Fatalf("byte count = %d, want %d", got.ByteCount, len(text))
	}
}

func TestDecodeDocumentWithoutUnits(t *testing.T) {
	got := DecodeDocument(`<svg xmlns="http://www.w3.org/2000/svg"><circle cx="1" cy="1" r="1"/></svg>`)
	if got.Success || got.Reason == "" {
		t.Fatalf("expected failure with reason, got %+v", got)
	}
}

func TestNibbleFromText(t *testing.T) {
	cases := map[string]uint8{
		"12.3415": 15,
		"12.34":   0,
		"12.3407": 7,
		"-3.1209": 9,
		"12":      0,
		"12.3499": 15,
	}
	for input, want := range cases {
		if got := nibbleFromText(input); got != want {
			t.Fatalf("nibbleFromText(%q) = %d, want %d", input, got, want)
		}
	}
}
