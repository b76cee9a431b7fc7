package pdf

import (
	"github.com/dankennedy/MigraDoc/fonts"
)

// Font is a font resource shared by every page that draws with the same
// face and embedding policy. It accumulates the glyph usage the writer
// needs for subsetting and the ToUnicode map.
type Font struct {
	face      *fonts.Face
	embedding fonts.Embedding
	name      string

	// gids maps used glyph IDs to a representative rune.
	gids map[int]rune
	// runs are the distinct text runs drawn with the font, kept for
	// shaping-based coverage.
	runs     []fonts.TextRun
	seenRuns map[string]bool
}

// Name returns the resource name, e.g. "F1".
func (f *Font) Name() string { return f.name }

// Face returns the underlying font face.
func (f *Font) Face() *fonts.Face { return f.face }

// EncodeText converts text to the payload of a text-showing operator and
// records glyph usage. Builtin faces yield cp1252 bytes for a literal
// string; embeddable faces yield two-byte glyph indexes for a hex string.
func (f *Font) EncodeText(s string) []byte {
	if f.face.Builtin {
		return fonts.EncodeWinAnsi(s)
	}
	if !f.seenRuns[s] {
		f.seenRuns[s] = true
		f.runs = append(f.runs, fonts.NewTextRun(s))
	}
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		gid, ok := f.face.GlyphIndex(r)
		if !ok {
			gid = 0
		}
		if _, seen := f.gids[gid]; !seen {
			f.gids[gid] = r
		}
		out = append(out, byte(gid>>8), byte(gid))
	}
	return out
}

// usedGIDs returns the recorded glyph set.
func (f *Font) usedGIDs() map[int]bool {
	used := make(map[int]bool, len(f.gids))
	for gid := range f.gids {
		used[gid] = true
	}
	return used
}
