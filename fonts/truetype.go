package fonts

import (
	"fmt"
	"math"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// LoadTrueType parses a TrueType or OpenType font file and returns a
// face ready for wide-encoding use. Metrics are scaled to 1000-unit
// glyph space. CFF-flavoured OpenType files embed as FontFile3, glyf
// fonts as FontFile2.
func LoadTrueType(name string, data []byte) (*Face, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("truetype font data is empty")
	}
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	unitsPerEm := font.UnitsPerEm()
	if unitsPerEm == 0 {
		return nil, fmt.Errorf("invalid unitsPerEm")
	}
	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(int32(unitsPerEm) << 6)

	baseName := strings.TrimSpace(name)
	if ps, _ := font.Name(buf, sfnt.NameIDPostScript); len(ps) > 0 {
		baseName = ps
	}
	if baseName == "" {
		baseName = "Embedded"
	}

	widths := glyphWidths(font, buf, unitsPerEm, ppem)
	defaultWidth := widths[0]
	if defaultWidth == 0 {
		defaultWidth = 1000
	}

	metrics, _ := font.Metrics(buf, ppem, xfont.HintingNone)
	bounds, _ := font.Bounds(buf, ppem, xfont.HintingNone)
	ascent := scaleToEm(metrics.Ascent, unitsPerEm)
	descent := scaleToEm(metrics.Descent, unitsPerEm)
	if descent > 0 {
		descent = -descent
	}

	f := &Face{
		Name:        baseName,
		Data:        data,
		FileType:    fontFileType(data),
		Ascent:      ascent,
		Descent:     descent,
		CapHeight:   ascent,
		ItalicAngle: italicAngle(font),
		StemV:       80,
		Flags:       flagNonsymbolic,
		BBox: [4]float64{
			scaleToEm(bounds.Min.X, unitsPerEm),
			-scaleToEm(bounds.Max.Y, unitsPerEm),
			scaleToEm(bounds.Max.X, unitsPerEm),
			-scaleToEm(bounds.Min.Y, unitsPerEm),
		},
		widths:       widths,
		defaultWidth: defaultWidth,
		parsed:       font,
	}
	return f, nil
}

// fontFileType inspects the sfnt tag. 'OTTO' marks CFF outlines.
func fontFileType(data []byte) string {
	if len(data) >= 4 && string(data[:4]) == "OTTO" {
		return "FontFile3"
	}
	return "FontFile2"
}

// EmbedData returns the byte stream to embed for the face under the
// given policy and glyph usage, and whether that stream is a subset.
// Subsetting applies only to glyf-flavoured fonts; other files embed
// whole, and a failed subset falls back to the full file.
func (f *Face) EmbedData(policy Embedding, usedGIDs map[int]bool) ([]byte, bool) {
	switch policy {
	case EmbedNone:
		return nil, false
	case EmbedFull:
		return f.Data, false
	}
	if f.FileType != "FontFile2" || len(usedGIDs) == 0 {
		return f.Data, false
	}
	subset, err := SubsetTrueType(f.Data, usedGIDs)
	if err != nil {
		return f.Data, false
	}
	return subset, true
}

func glyphWidths(font *sfnt.Font, buf *sfnt.Buffer, unitsPerEm sfnt.Units, ppem fixed.Int26_6) map[int]int {
	glyphs := font.NumGlyphs()
	widths := make(map[int]int, glyphs)
	for i := 0; i < glyphs; i++ {
		adv, err := font.GlyphAdvance(buf, sfnt.GlyphIndex(i), ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		widths[i] = int(math.Round(scaleToEm(adv, unitsPerEm)))
	}
	return widths
}

func italicAngle(font *sfnt.Font) float64 {
	post := font.PostTable()
	if post == nil {
		return 0
	}
	return post.ItalicAngle
}

func scaleToEm(val fixed.Int26_6, unitsPerEm sfnt.Units) float64 {
	return float64(val) * 1000.0 / (64.0 * float64(unitsPerEm))
}

// NumGlyphs returns the glyph count of an embeddable face.
func (f *Face) NumGlyphs() int {
	if f.parsed == nil {
		return 0
	}
	return f.parsed.NumGlyphs()
}
