package stego

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// IndexAttr tags every element that carries a unit.
const IndexAttr = "data-u"

// DecodeDocument scans markup for elements tagged with IndexAttr and decodes
// their coordinates. Circles contribute cx/cy; other elements contribute x/y.
// Parsing stops quietly at the first syntax error and decodes what it found.
func DecodeDocument(document string) Result {
	return decodeUnits(ScanDocument(document))
}

// ScanDocument returns the units found in document without validating them.
func ScanDocument(document string) []Unit {
	dec := xml.NewDecoder(strings.NewReader(document))
	var units []Unit
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if u, ok := unitFromElement(start); ok {
			units = append(units, u)
		}
	}
	return units
}

func unitFromElement(el xml.StartElement) (Unit, bool) {
	var index, x, y string
	xName, yName := "x", "y"
	if el.Name.Local == "circle" || el.Name.Local == "ellipse" {
		xName, yName = "cx", "cy"
	}
	for _, attr := range el.Attr {
		switch attr.Name.Local {
		case IndexAttr:
			index = attr.Value
		case xName:
			x = attr.Value
		case yName:
			y = attr.Value
		}
	}
	if index == "" || x == "" || y == "" {
		return Unit{}, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(index))
	if err != nil {
		return Unit{}, false
	}
	return Unit{Index: i, Hi: nibbleFromText(x), Lo: nibbleFromText(y)}, true
}

// nibbleFromText reads the 3rd and 4th decimal digits straight from the
// attribute text, so no float parsing can disturb them.
func nibbleFromText(value string) uint8 {
	value = strings.TrimSpace(value)
	dot := strings.IndexByte(value, '.')
	if dot < 0 {
		return 0
	}
	frac := value[dot+1:]
	if len(frac) < 4 {
		frac += strings.Repeat("0", 4-len(frac))
	}
	digits := frac[2:4]
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return clampNibble(n)
}
