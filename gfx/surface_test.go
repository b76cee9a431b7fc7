package gfx

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/dankennedy/MigraDoc/dom"
	"github.com/dankennedy/MigraDoc/fonts"
	"github.com/dankennedy/MigraDoc/pdf"
)

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func testSetup(t *testing.T) (*pdf.Document, *pdf.Page, *Surface) {
	t.Helper()
	reg, err := fonts.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	doc := pdf.NewDocument()
	doc.Compress = false
	doc.Deterministic = true
	page := doc.AddPage()
	s, err := FromPage(page, reg)
	if err != nil {
		t.Fatalf("FromPage: %v", err)
	}
	return doc, page, s
}

func renderBytes(t *testing.T, d *pdf.Document) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := d.SaveStream(&buf, false); err != nil {
		t.Fatalf("SaveStream: %v", err)
	}
	return buf.Bytes()
}

func TestDrawTextWinAnsi(t *testing.T) {
	doc, _, s := testSetup(t)
	err := s.DrawText(72, 100, "Hello", TextStyle{Family: "Helvetica", Size: 12})
	if err != nil {
		t.Fatalf("DrawText: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := renderBytes(t, doc)
	for _, want := range []string{
		"0 0 0 rg",
		"BT /F1 12 Tf",
		"72 741.89 Td",
		"(Hello) Tj ET",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("content missing %q", want)
		}
	}
}

func TestDrawTextUnicodeUsesHex(t *testing.T) {
	doc, _, s := testSetup(t)
	s.SetFontEncoding(fonts.EncodingUnicode)
	if err := s.DrawText(72, 100, "Hi", TextStyle{Family: "Go", Size: 10}); err != nil {
		t.Fatalf("DrawText: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := renderBytes(t, doc)
	if !bytes.Contains(out, []byte("> Tj ET")) {
		t.Error("unicode text should be written as a hex string")
	}
	if bytes.Contains(out, []byte("(Hi)")) {
		t.Error("unicode text should not use a literal string")
	}
	if !bytes.Contains(out, []byte("/Subtype /Type0")) {
		t.Error("unicode draw should produce a composite font")
	}
}

func TestDrawTextUnderline(t *testing.T) {
	doc, _, s := testSetup(t)
	style := TextStyle{Family: "Helvetica", Size: 12, Underline: true}
	if err := s.DrawText(72, 100, "Hello", style); err != nil {
		t.Fatalf("DrawText: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := renderBytes(t, doc)
	if !bytes.Contains(out, []byte(" l S Q")) {
		t.Error("underlined text should stroke a line")
	}
}

func TestDrawLine(t *testing.T) {
	doc, _, s := testSetup(t)
	if err := s.DrawLine(72, 100, 200, 100, 1, dom.Black); err != nil {
		t.Fatalf("DrawLine: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := renderBytes(t, doc)
	for _, want := range []string{
		"0 0 0 RG",
		"1 w",
		"72 741.89 m",
		"200 741.89 l S Q",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("content missing %q", want)
		}
	}
}

func TestDrawRect(t *testing.T) {
	doc, _, s := testSetup(t)
	if err := s.DrawRect(10, 20, 100, 50, dom.Color{R: 255}); err != nil {
		t.Fatalf("DrawRect: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := renderBytes(t, doc)
	if !bytes.Contains(out, []byte("1 0 0 rg")) {
		t.Error("missing fill color")
	}
	if !bytes.Contains(out, []byte("10 771.89 100 50 re f Q")) {
		t.Error("missing rectangle op")
	}
}

func TestDrawImage(t *testing.T) {
	doc, _, s := testSetup(t)
	img := pdf.FromImage(testImage())
	if err := s.DrawImage(img, 72, 100, 100, 80); err != nil {
		t.Fatalf("DrawImage: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := renderBytes(t, doc)
	if !bytes.Contains(out, []byte("100 0 0 80 72 661.89 cm /Im1 Do Q")) {
		t.Error("missing image placement")
	}
	if !bytes.Contains(out, []byte("/Subtype /Image")) {
		t.Error("missing image XObject")
	}
}

func TestCMYKColorMode(t *testing.T) {
	doc, _, s := testSetup(t)
	doc.ColorMode = pdf.ColorCMYK
	if err := s.DrawText(72, 100, "x", TextStyle{Family: "Helvetica", Size: 12}); err != nil {
		t.Fatalf("DrawText: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := renderBytes(t, doc)
	if !bytes.Contains(out, []byte("0 0 0 1 k")) {
		t.Error("CMYK mode should emit k operator for black")
	}
	if bytes.Contains(out, []byte("0 0 0 rg")) {
		t.Error("CMYK mode should not emit rg")
	}
}

func TestDrawAfterCloseFails(t *testing.T) {
	_, _, s := testSetup(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.DrawText(0, 0, "x", TextStyle{Family: "Helvetica"}); err == nil {
		t.Error("drawing on a closed surface should fail")
	}
	if err := s.DrawLine(0, 0, 1, 1, 1, dom.Black); err == nil {
		t.Error("drawing on a closed surface should fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	doc, _, s := testSetup(t)
	if err := s.DrawText(72, 100, "once", TextStyle{Family: "Helvetica", Size: 12}); err != nil {
		t.Fatalf("DrawText: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	out := renderBytes(t, doc)
	if n := bytes.Count(out, []byte("(once)")); n != 1 {
		t.Errorf("content flushed %d times, want once", n)
	}
}

func TestFromPageValidation(t *testing.T) {
	reg, err := fonts.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, err := FromPage(nil, reg); err == nil {
		t.Error("nil page should fail")
	}
	doc := pdf.NewDocument()
	if _, err := FromPage(doc.AddPage(), nil); err == nil {
		t.Error("nil registry should fail")
	}
}
