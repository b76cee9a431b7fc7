package fonts

import (
	"bytes"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// TextRun is a recorded run of drawn text, tagged with its dominant
// script so coverage shaping can pick the right direction.
type TextRun struct {
	Runes  []rune
	Script language.Script
}

// NewTextRun tags a string with its detected script.
func NewTextRun(s string) TextRun {
	runes := []rune(s)
	return TextRun{Runes: runes, Script: DetectScript(runes)}
}

// GlyphClosure expands a set of directly used glyph IDs with every glyph
// the font can substitute for the recorded runs: shaper output (ligatures,
// contextual forms) and the GSUB closure. The result is the safe keep-set
// for subsetting. GID 0 is always included.
func GlyphClosure(face *Face, used map[int]bool, runs []TextRun) map[int]bool {
	closure := make(map[int]bool, len(used)+1)
	closure[0] = true
	for gid := range used {
		closure[gid] = true
	}
	for gid := range shapedCoverage(face, runs) {
		closure[gid] = true
	}
	if len(face.Data) > 0 {
		if expanded, err := substitutionClosure(face.Data, closure); err == nil {
			closure = expanded
		}
	}
	return closure
}

// shapedCoverage returns the glyph IDs referenced when the runs are
// shaped with the face.
func shapedCoverage(face *Face, runs []TextRun) map[int]bool {
	if face == nil || len(face.Data) == 0 || len(runs) == 0 {
		return nil
	}
	parsed, err := gofont.ParseTTF(bytes.NewReader(face.Data))
	if err != nil {
		return nil
	}

	shaper := &shaping.HarfbuzzShaper{}
	glyphs := make(map[int]bool)
	size := fixed.Int26_6(64)

	for _, run := range runs {
		if len(run.Runes) == 0 {
			continue
		}
		input := shaping.Input{
			Text:      run.Runes,
			RunStart:  0,
			RunEnd:    len(run.Runes),
			Direction: scriptDirection(run.Script),
			Face:      parsed,
			Size:      size,
			Script:    run.Script,
			Language:  language.DefaultLanguage(),
		}
		output := shaper.Shape(input)
		for _, g := range output.Glyphs {
			glyphs[int(g.GlyphID)] = true
		}
	}
	return glyphs
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

// DetectScript returns the dominant script of the runes, Latin when
// nothing else dominates.
func DetectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	best := language.Latin
	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			best = script
		}
	}
	return best
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Thai, r):
		return language.Thai
	case unicode.Is(unicode.Devanagari, r):
		return language.Devanagari
	case unicode.Is(unicode.Bengali, r):
		return language.Bengali
	case unicode.Is(unicode.Tamil, r):
		return language.Tamil
	case unicode.Is(unicode.Telugu, r):
		return language.Telugu
	case unicode.Is(unicode.Kannada, r):
		return language.Kannada
	case unicode.Is(unicode.Malayalam, r):
		return language.Malayalam
	case unicode.Is(unicode.Sinhala, r):
		return language.Sinhala
	case unicode.Is(unicode.Lao, r):
		return language.Lao
	case unicode.Is(unicode.Tibetan, r):
		return language.Tibetan
	case unicode.Is(unicode.Myanmar, r):
		return language.Myanmar
	case unicode.Is(unicode.Khmer, r):
		return language.Khmer
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	}
	return language.Unknown
}
