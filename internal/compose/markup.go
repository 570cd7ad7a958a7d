package compose

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// writer accumulates markup for one layer.
type writer struct {
	b strings.Builder
}

func (w *writer) printf(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
}

func (w *writer) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *writer) String() string {
	return strings.TrimRight(w.b.String(), "\n")
}

// num formats v with a fixed number of decimals. Negative zero prints as zero.
func num(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s[1:], "0.") == "" {
		return s[1:]
	}
	return s
}

func f1(v float64) string { return num(v, 1) }
func f2(v float64) string { return num(v, 2) }
func f3(v float64) string { return num(v, 3) }

// escape makes text safe inside element content and attribute values.
func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func polar(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Cos(angle), cy + r*math.Sin(angle)
}

// points joins coordinate pairs in SVG points syntax.
func points(xs, ys []float64) string {
	parts := make([]string, len(xs))
	for i := range xs {
		parts[i] = f1(xs[i]) + "," + f1(ys[i])
	}
	return strings.Join(parts, " ")
}
