package fonts

import (
	"math"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return r
}

func TestBuiltinResolution(t *testing.T) {
	r := testRegistry(t)
	cases := []struct {
		family       string
		bold, italic bool
		want         string
	}{
		{"Helvetica", false, false, "Helvetica"},
		{"Arial", true, false, "Helvetica-Bold"},
		{"", false, true, "Helvetica-Oblique"},
		{"Courier New", false, false, "Courier"},
		{"JetBrains Mono", true, false, "Courier-Bold"},
		{"Times New Roman", false, false, "Times-Roman"},
		{"Some Serif", true, true, "Times-BoldItalic"},
	}
	for _, c := range cases {
		face := r.Face(c.family, c.bold, c.italic, EncodingWinAnsi)
		if face == nil || face.Name != c.want {
			t.Errorf("Face(%q, %v, %v) = %v, want %s", c.family, c.bold, c.italic, face, c.want)
		}
		if !face.Builtin {
			t.Errorf("winansi face %s not builtin", face.Name)
		}
	}
}

func TestUnicodeResolutionFallsBack(t *testing.T) {
	r := testRegistry(t)
	face := r.Face("Helvetica", false, false, EncodingUnicode)
	if face != r.Fallback() {
		t.Fatalf("unregistered unicode family should resolve to the default face")
	}
	if !face.Embeddable() {
		t.Fatalf("default face carries no font data")
	}
}

func TestRegisterTrueTypeVariants(t *testing.T) {
	r := testRegistry(t)
	if err := r.RegisterTrueType("Go", goregular.TTF); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.RegisterTrueTypeVariant("Go", true, false, gobold.TTF); err != nil {
		t.Fatalf("register bold: %v", err)
	}

	regular := r.Face("Go", false, false, EncodingUnicode)
	bold := r.Face("Go", true, false, EncodingUnicode)
	if regular == bold {
		t.Fatalf("bold variant not distinguished")
	}
	// Unregistered italic degrades to the family's regular face.
	if r.Face("Go", false, true, EncodingUnicode) != regular {
		t.Fatalf("missing variant should fall back to regular")
	}
}

func TestHelveticaMeasurement(t *testing.T) {
	r := testRegistry(t)
	face := r.Face("Helvetica", false, false, EncodingWinAnsi)

	// i=222 + W=944 in 1000-unit space.
	want := (222.0 + 944.0) * 12 / 1000
	if got := face.TextWidth("iW", 12); math.Abs(got-want) > 1e-9 {
		t.Fatalf("TextWidth(iW) = %v, want %v", got, want)
	}
}

func TestCourierIsFixedPitch(t *testing.T) {
	r := testRegistry(t)
	face := r.Face("Courier", false, false, EncodingWinAnsi)
	if face.TextWidth("iii", 10) != face.TextWidth("WWW", 10) {
		t.Fatalf("courier advance varies by glyph")
	}
	if face.Flags&flagFixedPitch == 0 {
		t.Fatalf("courier missing fixed pitch flag")
	}
}

func TestLoadTrueType(t *testing.T) {
	face, err := LoadTrueType("Go", goregular.TTF)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if face.Name == "" {
		t.Errorf("postscript name empty")
	}
	if face.FileType != "FontFile2" {
		t.Errorf("file type = %s, want FontFile2", face.FileType)
	}
	if face.Ascent <= 0 || face.Descent >= 0 {
		t.Errorf("metrics look wrong: ascent %v descent %v", face.Ascent, face.Descent)
	}
	gid, ok := face.GlyphIndex('A')
	if !ok || gid == 0 {
		t.Fatalf("no glyph for A")
	}
	if w := face.GlyphWidth(gid); w <= 0 {
		t.Errorf("glyph width = %d", w)
	}
	if face.TextWidth("AV", 10) <= 0 {
		t.Errorf("text width not positive")
	}
}

func TestLoadTrueTypeRejectsGarbage(t *testing.T) {
	if _, err := LoadTrueType("x", nil); err == nil {
		t.Fatalf("empty data should fail")
	}
	if _, err := LoadTrueType("x", []byte("not a font")); err == nil {
		t.Fatalf("garbage data should fail")
	}
}
