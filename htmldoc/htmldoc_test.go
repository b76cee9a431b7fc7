package htmldoc

import (
	"strings"
	"testing"

	"github.com/dankennedy/MigraDoc/dom"
)

func convert(t *testing.T, source string) *dom.Document {
	t.Helper()
	doc, err := Convert(source)
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

func TestHeadingsAndParagraphs(t *testing.T) {
	doc := convert(t, "<h1>Top</h1><h3>Deep</h3><p>body text</p>")
	ps := paragraphs(doc)
	if len(ps) != 3 {
		t.Fatalf("got %d paragraphs, want 3", len(ps))
	}
	if ps[0].Style != "Heading1" || textOf(ps[0]) != "Top" {
		t.Errorf("first paragraph = %q style %q", textOf(ps[0]), ps[0].Style)
	}
	if ps[1].Style != "Heading3" {
		t.Errorf("h3 mapped to style %q", ps[1].Style)
	}
	if ps[2].Style != "" || textOf(ps[2]) != "body text" {
		t.Errorf("body paragraph = %q style %q", textOf(ps[2]), ps[2].Style)
	}
}

func TestTitleBecomesMetadata(t *testing.T) {
	doc := convert(t, "<html><head><title>Annual Report</title></head><body><p>x</p></body></html>")
	if doc.Info == nil || doc.Info.Title != "Annual Report" {
		t.Fatalf("Info = %+v, want title from <title>", doc.Info)
	}
}

func TestNoTitleLeavesInfoNil(t *testing.T) {
	doc := convert(t, "<p>x</p>")
	if doc.Info != nil {
		t.Fatalf("Info = %+v, want nil without <title>", doc.Info)
	}
}

func TestInlineFormatting(t *testing.T) {
	doc := convert(t, "<p>a <b>fat</b> <em>lean</em> <u>low</u> <code>mono</code> run</p>")
	ps := paragraphs(doc)
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs", len(ps))
	}

	var bold, italic, underline, mono bool
	for _, el := range ps[0].Elements {
		ft, ok := el.(*dom.FormattedText)
		if !ok {
			continue
		}
		switch {
		case ft.Content == "fat" && ft.Font.Bold:
			bold = true
		case ft.Content == "lean" && ft.Font.Italic:
			italic = true
		case ft.Content == "low" && ft.Font.Underline:
			underline = true
		case ft.Content == "mono" && ft.Font.Name == "Courier":
			mono = true
		}
	}
	if !bold || !italic || !underline || !mono {
		t.Errorf("formatting runs missing: bold=%v italic=%v underline=%v mono=%v", bold, italic, underline, mono)
	}
}

func TestNestedFormattingCombines(t *testing.T) {
	doc := convert(t, "<p><b><i>both</i></b></p>")
	ps := paragraphs(doc)
	found := false
	for _, el := range ps[0].Elements {
		if ft, ok := el.(*dom.FormattedText); ok && ft.Content == "both" && ft.Font.Bold && ft.Font.Italic {
			found = true
		}
	}
	if !found {
		t.Error("nested b/i should produce a bold italic run")
	}
}

func TestBrBecomesLineBreak(t *testing.T) {
	doc := convert(t, "<p>one<br>two</p>")
	ps := paragraphs(doc)
	breaks := 0
	for _, el := range ps[0].Elements {
		if _, ok := el.(*dom.LineBreak); ok {
			breaks++
		}
	}
	if breaks != 1 {
		t.Errorf("got %d line breaks, want 1", breaks)
	}
}

func TestHrBecomesPageBreak(t *testing.T) {
	doc := convert(t, "<p>a</p><hr><p>b</p>")
	blocks := doc.Sections[0].Blocks
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if _, ok := blocks[1].(*dom.PageBreak); !ok {
		t.Errorf("middle block is %T, want page break", blocks[1])
	}
}

func TestUnorderedList(t *testing.T) {
	doc := convert(t, "<ul><li>one</li><li>two</li></ul>")
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

func TestOrderedListStart(t *testing.T) {
	doc := convert(t, `<ol start="5"><li>five</li><li>six</li></ol>`)
	ps := paragraphs(doc)
	if len(ps) != 2 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if got := textOf(ps[0]); !strings.HasPrefix(got, "5. ") {
		t.Errorf("first item = %q, want 5. prefix", got)
	}
	if got := textOf(ps[1]); !strings.HasPrefix(got, "6. ") {
		t.Errorf("second item = %q, want 6. prefix", got)
	}
}

func TestNestedListIndents(t *testing.T) {
	doc := convert(t, "<ul><li>outer<ul><li>inner</li></ul></li></ul>")
	ps := paragraphs(doc)
	if len(ps) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(ps))
	}
	if ps[1].Format.LeftIndent <= ps[0].Format.LeftIndent {
		t.Errorf("inner indent %v not deeper than outer %v", ps[1].Format.LeftIndent, ps[0].Format.LeftIndent)
	}
	if !strings.Contains(textOf(ps[1]), "inner") {
		t.Errorf("inner item = %q", textOf(ps[1]))
	}
}

func TestPreKeepsLines(t *testing.T) {
	doc := convert(t, "<pre>first\nsecond</pre>")
	ps := paragraphs(doc)
	if len(ps) != 1 || ps[0].Style != "Code" {
		t.Fatalf("pre paragraph missing or unstyled")
	}
	breaks := 0
	for _, el := range ps[0].Elements {
		if _, ok := el.(*dom.LineBreak); ok {
			breaks++
		}
	}
	if breaks != 1 {
		t.Errorf("got %d breaks, want 1", breaks)
	}
	if got := textOf(ps[0]); got != "firstsecond" {
		t.Errorf("pre text = %q", got)
	}
}

func TestBlockquote(t *testing.T) {
	doc := convert(t, "<blockquote><p>wise words</p></blockquote>")
	ps := paragraphs(doc)
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if ps[0].Format.LeftIndent != dom.Pt(quoteIndent) || !ps[0].Format.Font.Italic {
		t.Errorf("quote format = %+v", ps[0].Format)
	}
}

func TestImageBlock(t *testing.T) {
	doc := convert(t, `<p><img src="logo.png" width="120" height="40"></p>`)
	blocks := doc.Sections[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	img, ok := blocks[0].(*dom.Image)
	if !ok {
		t.Fatalf("block is %T, want image", blocks[0])
	}
	if img.Path != "logo.png" || img.Width != dom.Pt(120) || img.Height != dom.Pt(40) {
		t.Errorf("image = %+v", img)
	}
}

func TestWhitespaceCollapses(t *testing.T) {
	doc := convert(t, "<p>a\n\t   b</p>")
	if got := textOf(paragraphs(doc)[0]); got != "a b" {
		t.Errorf("text = %q, want collapsed", got)
	}
}

func TestConvertIntoExistingSection(t *testing.T) {
	doc := dom.NewDocument()
	sec := doc.AddSection()
	sec.PageSetup.Orientation = dom.Landscape
	if err := ConvertInto(sec, "<p>late content</p>"); err != nil {
		t.Fatalf("ConvertInto: %v", err)
	}
	if len(sec.Blocks) != 1 {
		t.Fatalf("got %d blocks", len(sec.Blocks))
	}
	if sec.PageSetup.Orientation != dom.Landscape {
		t.Error("page setup clobbered")
	}
}

func TestFlattenFraction(t *testing.T) {
	doc := convert(t, "<math><mrow><mi>x</mi><mo>=</mo><mfrac><mrow><mi>a</mi><mo>+</mo><mi>b</mi></mrow><mn>2</mn></mfrac></mrow></math>")
	ps := paragraphs(doc)
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if got := textOf(ps[0]); got != "x=(a+b)/2" {
		t.Errorf("flattened math = %q, want x=(a+b)/2", got)
	}
	if !ps[0].Format.Font.Italic {
		t.Error("math paragraph should be italic")
	}
}

func TestFlattenScriptsAndRoot(t *testing.T) {
	cases := []struct{ mathml, want string }{
		{"<math><msup><mi>x</mi><mn>2</mn></msup></math>", "x^2"},
		{"<math><msup><mi>x</mi><mn>10</mn></msup></math>", "x^(10)"},
		{"<math><msub><mi>a</mi><mi>n</mi></msub></math>", "a_n"},
		{"<math><msqrt><mi>a</mi><mo>+</mo><mi>b</mi></msqrt></math>", "√(a+b)"},
	}
	for _, tc := range cases {
		doc := convert(t, tc.mathml)
		ps := paragraphs(doc)
		if len(ps) != 1 {
			t.Fatalf("%s: got %d paragraphs", tc.mathml, len(ps))
		}
		if got := textOf(ps[0]); got != tc.want {
			t.Errorf("%s flattened to %q, want %q", tc.mathml, got, tc.want)
		}
	}
}

func TestAnnotationSkipped(t *testing.T) {
	source := `<math><semantics><mrow><mi>x</mi></mrow><annotation encoding="application/x-tex">x</annotation></semantics></math>`
	doc := convert(t, source)
	ps := paragraphs(doc)
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	if got := textOf(ps[0]); got != "x" {
		t.Errorf("flattened = %q, want annotation dropped", got)
	}
}

func TestInlineMathInParagraph(t *testing.T) {
	doc := convert(t, "<p>area <math><msup><mi>r</mi><mn>2</mn></msup></math> here</p>")
	ps := paragraphs(doc)
	if len(ps) != 1 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	var found bool
	for _, el := range ps[0].Elements {
		if ft, ok := el.(*dom.FormattedText); ok && ft.Content == "r^2" && ft.Font.Italic {
			found = true
		}
	}
	if !found {
		t.Errorf("inline math run missing in %q", textOf(ps[0]))
	}
}
