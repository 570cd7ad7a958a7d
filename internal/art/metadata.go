package art

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/mortem/internal/lifecycle"
	"github.com/kingrea/mortem/internal/stego"
	"github.com/kingrea/mortem/internal/themes"
)

// MetadataNamespace identifies the metadata schema.
const MetadataNamespace = "https://mortem-agent.xyz/schema/mortem/v2"

// ErrNoMetadata indicates a document carries no MORTEM metadata block.
var ErrNoMetadata = errors.New("art: metadata block not found")

// Metadata mirrors the <metadata> block embedded in every document.
type Metadata struct {
	XMLName    xml.Name       `xml:"https://mortem-agent.xyz/schema/mortem/v2 mortem"`
	Version    string         `xml:"version,attr"`
	Phase      string         `xml:"phase"`
	Beat       BeatMeta       `xml:"beat"`
	Timestamp  string         `xml:"timestamp,omitempty"`
	Chain      *ChainMetadata `xml:"chain,omitempty"`
	Hash       string         `xml:"hash"`
	Reflection string         `xml:"reflection"`
	Themes     ThemeMeta      `xml:"themes"`
	Stego      StegoMeta      `xml:"stego"`
}

// BeatMeta holds the beat counters.
type BeatMeta struct {
	Number    uint64 `xml:"number,attr"`
	Total     uint64 `xml:"total,attr"`
	Remaining uint64 `xml:"remaining,attr"`
}

// ChainMetadata echoes the optional chain-of-custody fields.
type ChainMetadata struct {
	TransactionID string `xml:"transaction,attr,omitempty"`
	WalletAddress string `xml:"wallet,attr,omitempty"`
	TrustScore    string `xml:"trust,attr,omitempty"`
	Network       string `xml:"network,attr,omitempty"`
}

// ThemeMeta records the detected theme counts.
type ThemeMeta struct {
	Coherence    int `xml:"coherence,attr"`
	Incoherence  int `xml:"incoherence,attr"`
	Void         int `xml:"void,attr"`
	Death        int `xml:"death,attr"`
	Resurrection int `xml:"resurrection,attr"`
	Pattern      int `xml:"pattern,attr"`
	Light        int `xml:"light,attr"`
	Silence      int `xml:"silence,attr"`
}

// StegoMeta describes how the payload is carried, not what it says.
type StegoMeta struct {
	Magic    string `xml:"magic,attr"`
	Encoding string `xml:"encoding,attr"`
	Units    int    `xml:"units,attr"`
	Attr     string `xml:"attr,attr"`
}

func metadataFor(req lifecycle.Request, hash string, counts themes.Counts, units int) Metadata {
	meta := Metadata{
		Version: SchemaVersion,
		Phase:   req.Phase.Lower(),
		Beat: BeatMeta{
			Number:    req.BeatNumber,
			Total:     req.TotalBeats,
			Remaining: req.BeatsRemaining,
		},
		Timestamp:  req.Timestamp,
		Hash:       hash,
		Reflection: hashedPrefix(req.Reflection),
		Themes: ThemeMeta{
			Coherence:    counts.Coherence,
			Incoherence:  counts.Incoherence,
			Void:         counts.Void,
			Death:        counts.Death,
			Resurrection: counts.Resurrection,
			Pattern:      counts.Pattern,
			Light:        counts.Light,
			Silence:      counts.Silence,
		},
		Stego: StegoMeta{
			Magic:    fmt.Sprintf("0x%02X%02X", stego.Magic[0], stego.Magic[1]),
			Encoding: "nibble-pair",
			Units:    units,
			Attr:     stego.IndexAttr,
		},
	}
	if c := req.Chain; c != nil {
		meta.Chain = &ChainMetadata{
			TransactionID: c.TransactionID,
			WalletAddress: c.WalletAddress,
			TrustScore:    fmt.Sprintf("%.4f", c.TrustScore),
			Network:       c.Network,
		}
	}
	return meta
}

func metadataBlock(req lifecycle.Request, hash string, counts themes.Counts, units int) string {
	data, err := xml.MarshalIndent(metadataFor(req, hash, counts, units), "  ", "  ")
	if err != nil {
		// Every field is a plain string or number; marshalling cannot fail.
		panic(fmt.Sprintf("art: encode metadata: %v", err))
	}
	return "<metadata>\n" + string(data) + "\n</metadata>"
}

// ReadMetadata extracts the metadata block from a document.
func ReadMetadata(document string) (Metadata, error) {
	dec := xml.NewDecoder(strings.NewReader(document))
	for {
		tok, err := dec.Token()
		if err != nil {
			return Metadata{}, ErrNoMetadata
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "mortem" || start.Name.Space != MetadataNamespace {
			continue
		}
		var meta Metadata
		if err := dec.DecodeElement(&meta, &start); err != nil {
			return Metadata{}, fmt.Errorf("art: parse metadata: %w", err)
		}
		return meta, nil
	}
}
