// Package art assembles a finished MORTEM illustration: the composed layer
// stack wrapped in an SVG root, a metadata block, a content hash and a
// filename. Generate is a pure function of its request.
package art

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kingrea/mortem/internal/compose"
	"github.com/kingrea/mortem/internal/lifecycle"
	"github.com/kingrea/mortem/internal/stego"
	"github.com/kingrea/mortem/internal/themes"
)

// SchemaVersion is stamped on every document root.
const SchemaVersion = "2"

// Extension matches the document's markup type.
const Extension = ".svg"

// hashedPrefixRunes is how much reflection text feeds the content hash.
const hashedPrefixRunes = 100

// FilenamePattern matches every filename Generate produces.
var FilenamePattern = regexp.MustCompile(`^mortem-\d+-(nascent|aware|diminished|terminal|dead)-[0-9a-f]{16}\.\w+$`)

// Artifact is one rendered illustration.
type Artifact struct {
	Document    string
	ContentHash string
	Filename    string
	Phase       lifecycle.Phase
	Beat        uint64
	Themes      themes.Counts
	Geometry    compose.Geometry
	// Units is the number of tagged carrier particles.
	Units int
}

// Generate renders req. Identical requests yield byte-identical artifacts.
func Generate(req lifecycle.Request) (Artifact, error) {
	if err := req.Validate(); err != nil {
		return Artifact{}, err
	}
	counts := themes.Analyze(req.Reflection)
	stack, err := compose.Build(compose.Input{
		Request: req,
		Themes:  counts,
		Seed:    SeedString(req),
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("art: %w", err)
	}
	hash := ContentHash(req.BeatNumber, req.Phase, req.Reflection)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" %s>`+"\n",
		compose.Width, compose.Height, compose.Width, compose.Height, rootAttributes(req, hash, stack))
	b.WriteString(metadataBlock(req, hash, counts, len(stack.Carriers)))
	b.WriteByte('\n')
	b.WriteString(stack.Markup())
	b.WriteString("</svg>\n")

	return Artifact{
		Document:    b.String(),
		ContentHash: hash,
		Filename:    Filename(req.BeatNumber, req.Phase, hash),
		Phase:       req.Phase,
		Beat:        req.BeatNumber,
		Themes:      counts,
		Geometry:    stack.Geometry,
		Units:       len(stack.Carriers),
	}, nil
}

// Decode recovers the reflection hidden in a document.
func Decode(document string) stego.Result {
	return stego.DecodeDocument(document)
}

// SeedString is the base seed every layer derives from.
func SeedString(req lifecycle.Request) string {
	return fmt.Sprintf("MORTEM:%d:%s:%d:%d", req.BeatNumber, req.Phase.Lower(), req.BeatsRemaining, req.TotalBeats)
}

// ContentHash is the first 16 hex characters of SHA-256 over the beat number,
// the lower-case phase and the first 100 characters of the reflection.
// Trailing NULs never survive embedding, so they are not hashed either; a
// decoded reflection always reproduces the hash of its request.
func ContentHash(beat uint64, phase lifecycle.Phase, reflection string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s:%s", beat, phase.Lower(), hashedPrefix(reflection))))
	return hex.EncodeToString(sum[:])[:16]
}

func hashedPrefix(reflection string) string {
	return strings.TrimRight(prefixRunes(reflection, hashedPrefixRunes), "\x00")
}

// Filename builds mortem-<beat>-<phase>-<hash>.svg.
func Filename(beat uint64, phase lifecycle.Phase, hash string) string {
	return fmt.Sprintf("mortem-%d-%s-%s%s", beat, phase.Lower(), hash, Extension)
}

func prefixRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func rootAttributes(req lifecycle.Request, hash string, stack compose.Stack) string {
	attrs := [][2]string{
		{"data-mortem-version", SchemaVersion},
		{"data-mortem-phase", req.Phase.Lower()},
		{"data-mortem-beat", strconv.FormatUint(req.BeatNumber, 10)},
		{"data-mortem-total", strconv.FormatUint(req.TotalBeats, 10)},
		{"data-mortem-remaining", strconv.FormatUint(req.BeatsRemaining, 10)},
		{"data-mortem-life", strconv.FormatFloat(stack.Geometry.LifeFraction, 'f', 6, 64)},
		{"data-mortem-hash", hash},
		{"data-mortem-units", strconv.Itoa(len(stack.Carriers))},
	}
	parts := make([]string, len(attrs))
	for i, kv := range attrs {
		parts[i] = kv[0] + `="` + kv[1] + `"`
	}
	return strings.Join(parts, " ")
}
