package markdown

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dankennedy/MigraDoc/dom"
	"github.com/dankennedy/MigraDoc/rendering"
)

func convert(t *testing.T, source string) *dom.Document {
	t.Helper()
	doc, err := Convert([]byte(source))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	return doc
}

func paragraphs(doc *dom.Document) []*dom.Paragraph {
	var out []*dom.Paragraph
	for _, sec := range doc.Sections {
		for _, b := range sec.Blocks {
			if p, ok := b.(*dom.Paragraph); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

func textOf(p *dom.Paragraph) string {
	var sb strings.Builder
	for _, el := range p.Elements {
		switch e := el.(type) {
		case *dom.Text:
			sb.WriteString(e.Content)
		case *dom.FormattedText:
			sb.WriteString(e.Content)
		}
	}
	return sb.String()
}

func TestHeadingsMapToStyles(t *testing.T) {
	doc := convert(t, "# One\n\n## Two\n\n###### Six\n\nplain")
	ps := paragraphs(doc)
	if len(ps) != 4 {
		t.Fatalf("got %d paragraphs, want 4", len(ps))
	}
	wantStyles := []string{"Heading1", "Heading2", "Heading6", ""}
	for i, want := range wantStyles {
		if ps[i].Style != want {
			t.Errorf("paragraph %d style = %q, want %q", i, ps[i].Style, want)
		}
	}
	if textOf(ps[0]) != "One" {
		t.Errorf("heading text = %q", textOf(ps[0]))
	}
}

func TestEmphasisAndCodeSpans(t *testing.T) {
	doc := convert(t, "plain **bold** and *italic* and `mono` end")
	ps := paragraphs(doc)
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs", len(ps))
	}

	var bold, italic, mono, plain bool
	for _, el := range ps[0].Elements {
		switch e := el.(type) {
		case *dom.Text:
			if strings.Contains(e.Content, "plain") {
				plain = true
			}
		case *dom.FormattedText:
			switch {
			case e.Content == "bold" && e.Font.Bold:
				bold = true
			case e.Content == "italic" && e.Font.Italic:
				italic = true
			case e.Content == "mono" && e.Font.Name == "Courier":
				mono = true
			}
		}
	}
	if !plain || !bold || !italic || !mono {
		t.Errorf("runs missing: plain=%v bold=%v italic=%v mono=%v", plain, bold, italic, mono)
	}
}

func TestNestedEmphasis(t *testing.T) {
	doc := convert(t, "***both***")
	found := false
	for _, el := range paragraphs(doc)[0].Elements {
		if ft, ok := el.(*dom.FormattedText); ok && ft.Content == "both" && ft.Font.Bold && ft.Font.Italic {
			found = true
		}
	}
	if !found {
		t.Error("triple emphasis should produce a bold italic run")
	}
}

func TestBulletList(t *testing.T) {
	doc := convert(t, "- first\n- second\n")
	ps := paragraphs(doc)
	if len(ps) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(ps))
	}
	for _, p := range ps {
		if !strings.HasPrefix(textOf(p), "• ") {
			t.Errorf("item %q lacks bullet", textOf(p))
		}
		if p.Format.LeftIndent != dom.Pt(listIndent) {
			t.Errorf("item indent = %v", p.Format.LeftIndent)
		}
	}
}

func TestOrderedListNumbering(t *testing.T) {
	doc := convert(t, "3. third\n4. fourth\n")
	ps := paragraphs(doc)
	if len(ps) != 2 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if got := textOf(ps[0]); !strings.HasPrefix(got, "3. ") {
		t.Errorf("first item = %q", got)
	}
	if got := textOf(ps[1]); !strings.HasPrefix(got, "4. ") {
		t.Errorf("second item = %q", got)
	}
}

func TestNestedListIndents(t *testing.T) {
	doc := convert(t, "- outer\n  - inner\n")
	ps := paragraphs(doc)
	if len(ps) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(ps))
	}
	if ps[1].Format.LeftIndent <= ps[0].Format.LeftIndent {
		t.Errorf("inner indent %v not deeper than %v", ps[1].Format.LeftIndent, ps[0].Format.LeftIndent)
	}
}

func TestThematicBreakBecomesPageBreak(t *testing.T) {
	doc := convert(t, "before\n\n---\n\nafter")
	blocks := doc.Sections[0].Blocks
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if _, ok := blocks[1].(*dom.PageBreak); !ok {
		t.Errorf("middle block is %T, want page break", blocks[1])
	}
}

func TestFencedCodeBlock(t *testing.T) {
	doc := convert(t, "```go\nfunc main() {\n\tprintln(1)\n}\n```\n")
	ps := paragraphs(doc)
	if len(ps) != 1 || ps[0].Style != "Code" {
		t.Fatalf("code paragraph missing or unstyled: %+v", ps)
	}
	breaks := 0
	for _, el := range ps[0].Elements {
		if _, ok := el.(*dom.LineBreak); ok {
			breaks++
		}
	}
	if breaks != 2 {
		t.Errorf("got %d breaks, want 2", breaks)
	}
	if !strings.Contains(textOf(ps[0]), "func main() {") {
		t.Errorf("code text = %q", textOf(ps[0]))
	}
}

func TestBlockquote(t *testing.T) {
	doc := convert(t, "> wise words\n")
	ps := paragraphs(doc)
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if ps[0].Format.LeftIndent != dom.Pt(18) || !ps[0].Format.Font.Italic {
		t.Errorf("quote format = %+v", ps[0].Format)
	}
	if textOf(ps[0]) != "wise words" {
		t.Errorf("quote text = %q", textOf(ps[0]))
	}
}

func TestSoleImageBecomesBlock(t *testing.T) {
	doc := convert(t, "![chart](figures/q3.png)\n")
	blocks := doc.Sections[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	img, ok := blocks[0].(*dom.Image)
	if !ok {
		t.Fatalf("block is %T, want image", blocks[0])
	}
	if img.Path != "figures/q3.png" {
		t.Errorf("path = %q", img.Path)
	}
}

func TestSoftBreakJoinsWithSpace(t *testing.T) {
	doc := convert(t, "first line\nsecond line\n")
	if got := textOf(paragraphs(doc)[0]); got != "first line second line" {
		t.Errorf("text = %q", got)
	}
}

func TestHardBreak(t *testing.T) {
	doc := convert(t, "first\\\nsecond\n")
	breaks := 0
	for _, el := range paragraphs(doc)[0].Elements {
		if _, ok := el.(*dom.LineBreak); ok {
			breaks++
		}
	}
	if breaks != 1 {
		t.Errorf("got %d line breaks, want 1", breaks)
	}
}

func TestLinkKeepsLabel(t *testing.T) {
	doc := convert(t, "see [the docs](https://example.com) now")
	if got := textOf(paragraphs(doc)[0]); !strings.Contains(got, "the docs") {
		t.Errorf("text = %q, want link label", got)
	}
}

func TestConvertIntoExistingSection(t *testing.T) {
	doc := dom.NewDocument()
	sec := doc.AddSection()
	sec.PageSetup.Orientation = dom.Landscape
	if err := ConvertInto(sec, []byte("# Appendix")); err != nil {
		t.Fatalf("ConvertInto: %v", err)
	}
	if len(sec.Blocks) != 1 {
		t.Fatalf("got %d blocks", len(sec.Blocks))
	}
	if sec.PageSetup.Orientation != dom.Landscape {
		t.Error("page setup clobbered")
	}
}

func TestLaTeX(t *testing.T) {
	doc := dom.NewDocument()
	sec := doc.AddSection()
	if err := LaTeX(sec, "x^2"); err != nil {
		t.Fatalf("LaTeX: %v", err)
	}
	ps := paragraphs(doc)
	if len(ps) == 0 {
		t.Fatal("no paragraph produced")
	}
	var all strings.Builder
	for _, p := range ps {
		all.WriteString(textOf(p))
	}
	got := all.String()
	if !strings.Contains(got, "x") || !strings.Contains(got, "2") {
		t.Errorf("flattened expression = %q", got)
	}
}

func TestConvertedDocumentRenders(t *testing.T) {
	source := "# Report\n\nSome **important** findings.\n\n- alpha\n- beta\n"
	doc := convert(t, source)

	r, err := rendering.NewPDFDocumentRenderer()
	if err != nil {
		t.Fatalf("NewPDFDocumentRenderer: %v", err)
	}
	r.SetDocument(doc)
	if err := r.RenderDocument(); err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	var buf bytes.Buffer
	if err := r.SaveStream(&buf, false); err != nil {
		t.Fatalf("SaveStream: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-1.7")) {
		t.Error("converted document did not render to a pdf")
	}
}
