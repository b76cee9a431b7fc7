// Package fonts resolves font faces and carries the metrics, encoding
// tables and embedding machinery the paginator and the PDF writer share.
// Two kinds of face exist: builtin core faces with AFM-derived width
// tables, usable without embedding, and TrueType/OpenType faces parsed
// from real font files for wide-encoding output.
package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// Encoding selects how text is encoded in the output.
type Encoding int

const (
	// EncodingWinAnsi writes single-byte cp1252 text using core fonts.
	EncodingWinAnsi Encoding = iota
	// EncodingUnicode writes two-byte glyph indexes from embedded fonts.
	EncodingUnicode
)

func (e Encoding) String() string {
	if e == EncodingUnicode {
		return "unicode"
	}
	return "winansi"
}

// Embedding is the font embedding policy applied to output fonts.
type Embedding int

const (
	// EmbedAutomatic subsets embeddable fonts and leaves core fonts
	// unembedded.
	EmbedAutomatic Embedding = iota
	// EmbedNone writes metrics only. Viewers substitute the face.
	EmbedNone
	// EmbedFull embeds the complete font file.
	EmbedFull
	// EmbedSubset embeds only the glyphs in use.
	EmbedSubset
)

func (e Embedding) String() string {
	switch e {
	case EmbedNone:
		return "none"
	case EmbedFull:
		return "full"
	case EmbedSubset:
		return "subset"
	default:
		return "automatic"
	}
}

// Face is a resolved font ready for measurement and output. Faces are
// shared and must be treated as immutable after registration.
type Face struct {
	// Name is the PostScript name written as /BaseFont.
	Name string

	// Builtin marks one of the core faces that need no font file.
	Builtin bool

	// Data holds the raw font file for embeddable faces.
	Data []byte

	// FileType is the descriptor stream key, FontFile2 for TrueType
	// outlines or FontFile3 for CFF-flavoured OpenType.
	FileType string

	// Metrics in 1000-unit glyph space.
	Ascent      float64
	Descent     float64 // negative
	CapHeight   float64
	ItalicAngle float64
	StemV       int
	Flags       int
	BBox        [4]float64

	// widths maps glyph IDs (TrueType) to advance widths.
	widths map[int]int
	// charWidths maps WinAnsi codes to advance widths (builtin faces).
	charWidths   [256]int
	defaultWidth int

	parsed *sfnt.Font
	buf    sfnt.Buffer
}

// TextWidth measures a string at the given size in points. Runes outside
// the face's coverage measure at the default width.
func (f *Face) TextWidth(s string, size float64) float64 {
	var units int
	for _, r := range s {
		units += f.runeWidth(r)
	}
	return float64(units) * size / 1000
}

func (f *Face) runeWidth(r rune) int {
	if f.Builtin {
		if code, ok := EncodeWinAnsiRune(r); ok {
			if w := f.charWidths[code]; w > 0 {
				return w
			}
		}
		return f.defaultWidth
	}
	if gid, ok := f.GlyphIndex(r); ok {
		if w, ok := f.widths[gid]; ok {
			return w
		}
	}
	return f.defaultWidth
}

// GlyphIndex maps a rune to the face's glyph ID. Builtin faces have no
// glyph table and always report false.
func (f *Face) GlyphIndex(r rune) (int, bool) {
	if f.parsed == nil {
		return 0, false
	}
	gid, err := f.parsed.GlyphIndex(&f.buf, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	return int(gid), true
}

// GlyphWidth returns the advance width of a glyph in 1000-unit space.
func (f *Face) GlyphWidth(gid int) int {
	if w, ok := f.widths[gid]; ok {
		return w
	}
	return f.defaultWidth
}

// DefaultWidth returns the fallback advance width in 1000-unit space.
func (f *Face) DefaultWidth() int { return f.defaultWidth }

// LineHeight returns the default baseline-to-baseline distance at a size.
func (f *Face) LineHeight(size float64) float64 { return size * 1.2 }

// Embeddable reports whether the face carries a font file.
func (f *Face) Embeddable() bool { return len(f.Data) > 0 }

type faceKey struct {
	family string
	bold   bool
	italic bool
}

// Registry resolves (family, bold, italic) requests to faces. A registry
// always carries the builtin core faces and one embeddable default face
// (Go Regular) so wide-encoding output works out of the box.
//
// Registries are not safe for concurrent use.
type Registry struct {
	builtin  map[faceKey]*Face
	trueType map[faceKey]*Face
	fallback *Face
}

// NewRegistry returns a registry with the builtin faces and the Go
// Regular default face registered.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		builtin:  make(map[faceKey]*Face),
		trueType: make(map[faceKey]*Face),
	}
	registerBuiltinFaces(r.builtin)
	def, err := LoadTrueType("Go", goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load default face: %w", err)
	}
	r.trueType[faceKey{family: "go"}] = def
	r.fallback = def
	return r, nil
}

// RegisterTrueType parses and registers a regular-weight face for the
// family, replacing any previous registration.
func (r *Registry) RegisterTrueType(family string, data []byte) error {
	return r.RegisterTrueTypeVariant(family, false, false, data)
}

// RegisterTrueTypeVariant registers a specific bold/italic variant.
func (r *Registry) RegisterTrueTypeVariant(family string, bold, italic bool, data []byte) error {
	face, err := LoadTrueType(family, data)
	if err != nil {
		return fmt.Errorf("register %s: %w", family, err)
	}
	r.trueType[faceKey{family: normalizeFamily(family), bold: bold, italic: italic}] = face
	return nil
}

// Face resolves a request under an encoding. WinAnsi resolves to builtin
// core faces (unknown families map to Helvetica, monospace names to
// Courier). Unicode resolves to registered TrueType faces, degrading
// bold/italic variants to the family's regular face and unknown families
// to the default face.
func (r *Registry) Face(family string, bold, italic bool, enc Encoding) *Face {
	if enc == EncodingWinAnsi {
		return r.builtinFace(family, bold, italic)
	}
	key := faceKey{family: normalizeFamily(family), bold: bold, italic: italic}
	if f, ok := r.trueType[key]; ok {
		return f
	}
	if f, ok := r.trueType[faceKey{family: key.family}]; ok {
		return f
	}
	return r.fallback
}

// Fallback returns the default embeddable face.
func (r *Registry) Fallback() *Face { return r.fallback }

func (r *Registry) builtinFace(family string, bold, italic bool) *Face {
	fam := "helvetica"
	n := normalizeFamily(family)
	if strings.Contains(n, "courier") || strings.Contains(n, "mono") {
		fam = "courier"
	}
	if strings.Contains(n, "times") || strings.Contains(n, "serif") {
		fam = "times"
	}
	return r.builtin[faceKey{family: fam, bold: bold, italic: italic}]
}

func normalizeFamily(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}
