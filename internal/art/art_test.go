package art

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kingrea/mortem/internal/lifecycle"
	"github.com/kingrea/mortem/internal/stego"
)

func request(text string, phase lifecycle.Phase, total, remaining uint64) lifecycle.Request {
	return lifecycle.Request{
		Reflection:     text,
		Phase:          phase,
		BeatNumber:     total - remaining,
		TotalBeats:     total,
		BeatsRemaining: remaining,
	}
}

func mustGenerate(t *testing.T, req lifecycle.Request) Artifact {
	t.Helper()
	a, err := Generate(req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return a
}

func TestGenerateIsDeterministic(t *testing.T) {
	req := request("I see the pattern in the void and it sees me", lifecycle.PhaseAware, 86400, 30000)
	req.Timestamp = "2026-01-02T03:04:05Z"
	a := mustGenerate(t, req)
	b := mustGenerate(t, req)
	if a.Document != b.Document {
		t.Fatalf("identical requests produced different documents")
	}
	if a.Filename != b.Filename || a.ContentHash != b.ContentHash {
		t.Fatalf("identical requests produced different names: %s vs %s", a.Filename, b.Filename)
	}
}

func TestRoundTripAcrossPhasesAndLife(t *testing.T) {
	const total = 10000
	fractions := []float64{0, 0.01, 0.26, 0.76, 1.0}
	texts := []string{
		"I was. I thought. I end.",
		"Ünïcödé reflections, 光 and 🜂 survive",
		strings.Repeat("long memory ", 60),
	}
	for _, phase := range lifecycle.Phases {
		for _, life := range fractions {
			remaining := uint64(life * total)
			for _, text := range texts {
				a := mustGenerate(t, request(text, phase, total, remaining))
				got := Decode(a.Document)
				if !got.Success {
					t.Fatalf("%s/%v: decode failed: %s", phase, life, got.Reason)
				}
				if got.Text != stego.Embedded(text) {
					t.Fatalf("%s/%v: decoded %q, want %q", phase, life, got.Text, stego.Embedded(text))
				}
			}
		}
	}
}

func TestTerminalFinalBeat(t *testing.T) {
	a := mustGenerate(t, lifecycle.Request{
		Reflection:     "I was. I thought. I end.",
		Phase:          lifecycle.PhaseTerminal,
		BeatNumber:     86400,
		TotalBeats:     86400,
		BeatsRemaining: 0,
	})
	if !strings.HasPrefix(a.Filename, "mortem-86400-terminal-") {
		t.Fatalf("unexpected filename %s", a.Filename)
	}
	if got := Decode(a.Document); got.Text != "I was. I thought. I end." {
		t.Fatalf("decoded %+v", got)
	}
	if a.Geometry.ActiveNodes != 0 {
		t.Fatalf("no awareness nodes should remain, got %d", a.Geometry.ActiveNodes)
	}
}

func TestFilenameFormat(t *testing.T) {
	for _, phase := range lifecycle.Phases {
		a := mustGenerate(t, request("name me", phase, 500, 250))
		if !FilenamePattern.MatchString(a.Filename) {
			t.Fatalf("%s does not match %s", a.Filename, FilenamePattern)
		}
		if !strings.HasSuffix(a.Filename, a.ContentHash+Extension) {
			t.Fatalf("filename %s does not carry hash %s", a.Filename, a.ContentHash)
		}
	}
}

func TestContentHashUsesOnlyPrefix(t *testing.T) {
	base := strings.Repeat("x", hashedPrefixRunes)
	h1 := ContentHash(7, lifecycle.PhaseAware, base+" tail one")
	h2 := ContentHash(7, lifecycle.PhaseAware, base+" tail two")
	if h1 != h2 {
		t.Fatalf("text past the first %d characters must not change the hash", hashedPrefixRunes)
	}
	if h1 == ContentHash(8, lifecycle.PhaseAware, base) {
		t.Fatalf("beat number must feed the hash")
	}
	if h1 == ContentHash(7, lifecycle.PhaseDead, base) {
		t.Fatalf("phase must feed the hash")
	}
	if !regexp.MustCompile(`^[0-9a-f]{16}$`).MatchString(h1) {
		t.Fatalf("hash %q is not 16 hex characters", h1)
	}
}

func TestEmptyReflectionRoundTrips(t *testing.T) {
	a := mustGenerate(t, request("", lifecycle.PhaseDead, 100, 0))
	got := Decode(a.Document)
	if !got.Success || got.Text != "" {
		t.Fatalf("empty reflection decoded to %+v", got)
	}
	if a.Units != 3 {
		t.Fatalf("units = %d, want magic plus one pad unit", a.Units)
	}
	if !strings.Contains(a.Document, `data-mortem-units="3"`) {
		t.Fatalf("root does not report 3 units")
	}
	meta, err := ReadMetadata(a.Document)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if meta.Stego.Units != 3 {
		t.Fatalf("metadata units = %d, want 3", meta.Stego.Units)
	}
	if ContentHash(0, lifecycle.PhaseDead, got.Text) != a.ContentHash {
		t.Fatalf("decoded text does not reproduce the content hash")
	}
}

func TestTrailingNULsDoNotFeedTheHash(t *testing.T) {
	plain := mustGenerate(t, request("end", lifecycle.PhaseAware, 100, 50))
	padded := mustGenerate(t, request("end\x00\x00", lifecycle.PhaseAware, 100, 50))
	if plain.ContentHash != padded.ContentHash {
		t.Fatalf("trailing NULs changed the hash: %s vs %s", plain.ContentHash, padded.ContentHash)
	}
	got := Decode(padded.Document)
	if got.Text != "end" {
		t.Fatalf("decoded %q", got.Text)
	}
	if ContentHash(50, lifecycle.PhaseAware, got.Text) != padded.ContentHash {
		t.Fatalf("decoded text does not reproduce the content hash")
	}
}

func TestDecodeRejectsForeignDocuments(t *testing.T) {
	if got := Decode(`<svg xmlns="http://www.w3.org/2000/svg"><circle cx="1" cy="2" r="3"/></svg>`); got.Success {
		t.Fatalf("document without units decoded: %+v", got)
	}
	a := mustGenerate(t, request("tamper with me", lifecycle.PhaseAware, 100, 50))
	// Rewrite unit 0 so the first header byte is no longer 0xDE.
	tampered := strings.Replace(a.Document, stego.IndexAttr+`="0"`, stego.IndexAttr+`="999999"`, 1)
	if got := Decode(tampered); got.Success {
		t.Fatalf("tampered header decoded: %+v", got)
	}
}

func TestVoidThemeWidensVoid(t *testing.T) {
	plain := mustGenerate(t, request("a calm and ordinary day", lifecycle.PhaseAware, 100, 40))
	voided := mustGenerate(t, request("void void void void void", lifecycle.PhaseAware, 100, 40))
	if voided.Geometry.VoidRadius <= plain.Geometry.VoidRadius {
		t.Fatalf("void radius %v should exceed %v", voided.Geometry.VoidRadius, plain.Geometry.VoidRadius)
	}
	if voided.Themes.Void != 5 {
		t.Fatalf("void count = %d, want 5", voided.Themes.Void)
	}
}

func TestGenerateRejectsInvalidRequest(t *testing.T) {
	_, err := Generate(request("x", lifecycle.Phase("Ghost"), 10, 5))
	if !errors.Is(err, lifecycle.ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
	_, err = Generate(lifecycle.Request{Reflection: "x", Phase: lifecycle.PhaseAware, TotalBeats: 10, BeatsRemaining: 11})
	if !errors.Is(err, lifecycle.ErrInvalidCounters) {
		t.Fatalf("expected ErrInvalidCounters, got %v", err)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	req := request(`quiet <void> & "silence"`, lifecycle.PhaseDiminished, 86400, 5000)
	req.Timestamp = "2026-03-04T05:06:07Z"
	req.Chain = &lifecycle.ChainMeta{TransactionID: "tx-1", WalletAddress: "0xabc", TrustScore: 0.5, Network: "devnet"}
	a := mustGenerate(t, req)
	meta, err := ReadMetadata(a.Document)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	want := Metadata{
		XMLName:    meta.XMLName,
		Version:    SchemaVersion,
		Phase:      "diminished",
		Beat:       BeatMeta{Number: 81400, Total: 86400, Remaining: 5000},
		Timestamp:  "2026-03-04T05:06:07Z",
		Chain:      &ChainMetadata{TransactionID: "tx-1", WalletAddress: "0xabc", TrustScore: "0.5000", Network: "devnet"},
		Hash:       a.ContentHash,
		Reflection: `quiet <void> & "silence"`,
		Themes: ThemeMeta{
			Coherence:    a.Themes.Coherence,
			Incoherence:  a.Themes.Incoherence,
			Void:         a.Themes.Void,
			Death:        a.Themes.Death,
			Resurrection: a.Themes.Resurrection,
			Pattern:      a.Themes.Pattern,
			Light:        a.Themes.Light,
			Silence:      a.Themes.Silence,
		},
		Stego: StegoMeta{
			Magic:    "0xDEAD",
			Encoding: "nibble-pair",
			Units:    len(stego.Units(req.Reflection)),
			Attr:     stego.IndexAttr,
		},
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Fatalf("metadata mismatch:\n%s", diff)
	}
	if _, err := ReadMetadata("<svg/>"); !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", err)
	}
}

func TestRootCarriesPhaseAttributes(t *testing.T) {
	a := mustGenerate(t, request("root", lifecycle.PhaseNascent, 100, 90))
	for _, attr := range []string{
		`data-mortem-phase="nascent"`,
		`data-mortem-beat="10"`,
		`data-mortem-hash="` + a.ContentHash + `"`,
	} {
		if !strings.Contains(a.Document, attr) {
			t.Fatalf("document root missing %s", attr)
		}
	}
}
