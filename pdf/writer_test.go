package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dankennedy/MigraDoc/fonts"
)

func testRegistry(t *testing.T) *fonts.Registry {
	t.Helper()
	reg, err := fonts.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func saveToBytes(t *testing.T, d *Document) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := d.SaveStream(&buf, false); err != nil {
		t.Fatalf("SaveStream: %v", err)
	}
	return buf.Bytes()
}

func TestWriterCoreFontDocument(t *testing.T) {
	reg := testRegistry(t)
	d := NewDocument()
	d.Compress = false
	d.Deterministic = true

	p := d.AddPage()
	f := p.UseFont(reg.Face("Helvetica", false, false, fonts.EncodingWinAnsi), fonts.EmbedAutomatic)
	var content bytes.Buffer
	content.WriteString("BT /" + f.Name() + " 12 Tf 72 720 Td (Hello) Tj ET")
	p.AppendContent(content.Bytes())

	out := saveToBytes(t, d)
	for _, want := range []string{
		"%PDF-1.7",
		"/Type /Catalog",
		"/Type /Pages",
		"/Count 1",
		"/Type /Page",
		"/MediaBox [0 0 595.28 841.89]",
		"/Subtype /Type1",
		"/BaseFont /Helvetica",
		"/Encoding /WinAnsiEncoding",
		"(Hello) Tj",
		"xref",
		"trailer",
		"startxref",
		"%%EOF",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestWriterCompressesContent(t *testing.T) {
	reg := testRegistry(t)
	d := NewDocument()
	d.Deterministic = true

	p := d.AddPage()
	f := p.UseFont(reg.Face("Helvetica", false, false, fonts.EncodingWinAnsi), fonts.EmbedAutomatic)
	p.AppendContent([]byte("BT /" + f.Name() + " 12 Tf 72 720 Td (Hello) Tj ET"))

	out := saveToBytes(t, d)
	if !bytes.Contains(out, []byte("/Filter /FlateDecode")) {
		t.Error("compressed document missing FlateDecode filter")
	}
	if bytes.Contains(out, []byte("(Hello) Tj")) {
		t.Error("content stream left uncompressed")
	}
}

func TestDeterministicSavesAreIdentical(t *testing.T) {
	build := func() []byte {
		reg := testRegistry(t)
		d := NewDocument()
		d.Deterministic = true
		d.Info.Title = "Stable"
		p := d.AddPage()
		f := p.UseFont(reg.Face("Helvetica", true, false, fonts.EncodingWinAnsi), fonts.EmbedAutomatic)
		p.AppendContent([]byte("BT /" + f.Name() + " 10 Tf 72 700 Td (x) Tj ET"))
		return saveToBytes(t, d)
	}
	a, b := build(), build()
	if !bytes.Equal(a, b) {
		t.Error("deterministic saves differ")
	}
}

func TestNonDeterministicIDDiffers(t *testing.T) {
	build := func() []byte {
		d := NewDocument()
		d.AddPage()
		return saveToBytes(t, d)
	}
	if bytes.Equal(build(), build()) {
		t.Error("random file IDs should differ between saves")
	}
}

func TestInfoAndProperties(t *testing.T) {
	d := NewDocument(WithCreator("report tool"))
	d.Compress = false
	d.Deterministic = true
	d.Info.Title = "Annual Report"
	d.Info.Author = "K. Mayfield"
	d.Info.Language = "de-DE"
	d.SetProperty("/Company", "ACME")
	d.SetProperty("/Division", "Test")
	d.AddPage()

	out := saveToBytes(t, d)
	for _, want := range []string{
		"/Title (Annual Report)",
		"/Author (K. Mayfield)",
		"/Creator (report tool)",
		"/Producer (MigraDoc)",
		"/Company (ACME)",
		"/Division (Test)",
		"/Lang (de-DE)",
		"/DisplayDocTitle true",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
	if bytes.Index(out, []byte("/Company")) > bytes.Index(out, []byte("/Division")) {
		t.Error("custom properties not in insertion order")
	}
}

func TestPropertyUpdateKeepsOrder(t *testing.T) {
	d := NewDocument()
	d.SetProperty("/A", "1")
	d.SetProperty("/B", "2")
	d.SetProperty("/A", "3")
	keys := d.PropertyKeys()
	if len(keys) != 2 || keys[0] != "/A" || keys[1] != "/B" {
		t.Fatalf("keys = %v", keys)
	}
	if v, _ := d.Property("/A"); v != "3" {
		t.Errorf("Property(/A) = %q, want 3", v)
	}
}

func TestUnicodeTextStringsUseUTF16(t *testing.T) {
	d := NewDocument()
	d.Compress = false
	d.Deterministic = true
	d.Info.Title = "Résumé"
	d.AddPage()

	out := saveToBytes(t, d)
	if !bytes.Contains(out, []byte("<FEFF")) {
		t.Error("non-latin title not written as UTF-16 hex string")
	}
}

func TestType0FontChain(t *testing.T) {
	reg := testRegistry(t)
	d := NewDocument()
	d.Compress = false
	d.Deterministic = true

	p := d.AddPage()
	face := reg.Face("Go", false, false, fonts.EncodingUnicode)
	f := p.UseFont(face, fonts.EmbedAutomatic)
	payload := f.EncodeText("Hi")
	var content bytes.Buffer
	content.WriteString("BT /" + f.Name() + " 12 Tf 72 720 Td <")
	for _, b := range payload {
		content.WriteString(string("0123456789ABCDEF"[b>>4]) + string("0123456789ABCDEF"[b&0xf]))
	}
	content.WriteString("> Tj ET")
	p.AppendContent(content.Bytes())

	out := saveToBytes(t, d)
	for _, want := range []string{
		"/Subtype /Type0",
		"/Encoding /Identity-H",
		"/Subtype /CIDFontType2",
		"/CIDToGIDMap /Identity",
		"/FontFile2",
		"/Length1 ",
		"/ToUnicode",
		"/DW ",
		"/W [",
		"begincodespacerange",
		"beginbfchar",
		"> <0048>",
		"+GoRegular",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestEncodeTextRecordsGlyphUsage(t *testing.T) {
	reg := testRegistry(t)
	d := NewDocument()
	p := d.AddPage()
	f := p.UseFont(reg.Face("Go", false, false, fonts.EncodingUnicode), fonts.EmbedSubset)

	payload := f.EncodeText("AB")
	if len(payload) != 4 {
		t.Fatalf("payload length = %d, want 4", len(payload))
	}
	if len(f.gids) < 2 {
		t.Errorf("recorded %d glyphs, want at least 2", len(f.gids))
	}
}

func TestEncodeTextWinAnsi(t *testing.T) {
	reg := testRegistry(t)
	d := NewDocument()
	p := d.AddPage()
	f := p.UseFont(reg.Face("Helvetica", false, false, fonts.EncodingWinAnsi), fonts.EmbedAutomatic)

	got := f.EncodeText("Aé")
	if !bytes.Equal(got, []byte{0x41, 0xe9}) {
		t.Errorf("EncodeText = % x, want 41 e9", got)
	}
}

func TestFontResourceShared(t *testing.T) {
	reg := testRegistry(t)
	d := NewDocument()
	face := reg.Face("Helvetica", false, false, fonts.EncodingWinAnsi)
	f1 := d.AddPage().UseFont(face, fonts.EmbedAutomatic)
	f2 := d.AddPage().UseFont(face, fonts.EmbedAutomatic)
	if f1 != f2 {
		t.Error("same face and policy should share one font resource")
	}
	if f1.Name() != "F1" {
		t.Errorf("resource name = %q, want F1", f1.Name())
	}
}

func TestPageIndexing(t *testing.T) {
	d := NewDocument()
	p := d.AddPage()
	if d.PageCount() != 1 {
		t.Fatalf("PageCount = %d, want 1", d.PageCount())
	}
	if d.Page(0) != nil {
		t.Error("Page(0) should be nil")
	}
	if d.Page(1) != p {
		t.Error("Page(1) should return the first page")
	}
	if d.Page(2) != nil {
		t.Error("Page(2) should be nil")
	}
}

func TestSetSizeAfterDrawFails(t *testing.T) {
	d := NewDocument()
	p := d.AddPage()
	if err := p.SetSize(400, 600); err != nil {
		t.Fatalf("SetSize before drawing: %v", err)
	}
	p.AppendContent([]byte("0 0 m"))
	if err := p.SetSize(500, 700); err == nil {
		t.Error("SetSize after drawing should fail")
	}
	if p.Width() != 400 || p.Height() != 600 {
		t.Errorf("geometry changed to %gx%g", p.Width(), p.Height())
	}
}

func TestSaveEmptyDocumentFails(t *testing.T) {
	d := NewDocument()
	var buf bytes.Buffer
	if err := d.SaveStream(&buf, false); err == nil {
		t.Error("saving a document without pages should fail")
	}
}

func TestSaveEmptyPathFails(t *testing.T) {
	d := NewDocument()
	d.AddPage()
	if err := d.Save(""); err == nil {
		t.Error("empty path should fail")
	}
}

func TestSaveWritesFile(t *testing.T) {
	d := NewDocument()
	d.Deterministic = true
	d.AddPage()

	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := d.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-1.7")) {
		t.Error("saved file missing header")
	}
}

func TestNumberFormatting(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{595.2755905511812, "595.28"},
		{10, "10"},
		{-0.001, "0"},
		{0.5, "0.5"},
		{-12.345, "-12.35"},
	}
	for _, c := range cases {
		if got := fnum(c.in); got != c.want {
			t.Errorf("fnum(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNameEscaping(t *testing.T) {
	if got := pdfName("Company Name"); got != "Company#20Name" {
		t.Errorf("pdfName = %q", got)
	}
	if got := pdfName("ABCDEF+GoRegular"); got != "ABCDEF+GoRegular" {
		t.Errorf("pdfName = %q", got)
	}
}
