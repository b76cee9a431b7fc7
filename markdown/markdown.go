// Package markdown converts Markdown source into the document model.
// Headings map to the builtin heading styles, emphasis and code spans to
// formatted runs, thematic breaks to page breaks. The result renders
// through rendering.PDFDocumentRenderer like any hand-built document.
package markdown

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dankennedy/MigraDoc/dom"
)

const listIndent = 15.0

// Convert parses the source and returns a document with a single section
// holding the converted blocks.
func Convert(source []byte) (*dom.Document, error) {
	doc := dom.NewDocument()
	if err := ConvertInto(doc.AddSection(), source); err != nil {
		return nil, err
	}
	return doc, nil
}

// ConvertInto appends the converted blocks to an existing section, so
// callers can configure page setup, headers and footers first.
func ConvertInto(sec *dom.Section, source []byte) error {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))
	convertBlocks(sec, root, source)
	return nil
}

func convertBlocks(sec *dom.Section, node ast.Node, source []byte) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			p := sec.AddParagraph()
			p.Style = dom.Heading(n.Level)
			appendInlines(p, n, source, dom.Font{})
		case *ast.Paragraph:
			if img, ok := soleImage(n); ok {
				sec.AddImage(string(img.Destination))
				continue
			}
			appendInlines(sec.AddParagraph(), n, source, dom.Font{})
		case *ast.List:
			convertList(sec, n, source, 0)
		case *ast.ThematicBreak:
			sec.AddPageBreak()
		case *ast.FencedCodeBlock:
			convertCode(sec, n, source)
		case *ast.CodeBlock:
			convertCode(sec, n, source)
		case *ast.Blockquote:
			convertQuote(sec, n, source)
		}
	}
}

// soleImage reports whether the paragraph consists of a single image,
// which becomes a block-level picture instead of flowed text.
func soleImage(p *ast.Paragraph) (*ast.Image, bool) {
	if p.ChildCount() != 1 {
		return nil, false
	}
	img, ok := p.FirstChild().(*ast.Image)
	return img, ok
}

func convertList(sec *dom.Section, list *ast.List, source []byte, depth int) {
	index := list.Start
	if index == 0 {
		index = 1
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if list.IsOrdered() {
			marker = strconv.Itoa(index) + ". "
			index++
		}
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch b := c.(type) {
			case *ast.List:
				convertList(sec, b, source, depth+1)
			case *ast.TextBlock, *ast.Paragraph:
				p := sec.AddParagraph()
				p.Format.LeftIndent = dom.Pt(float64(depth+1) * listIndent)
				p.Format.SpaceAfter = dom.Pt(2)
				if first {
					p.AddText(marker)
					first = false
				}
				appendInlines(p, c, source, dom.Font{})
			}
		}
	}
}

func convertCode(sec *dom.Section, n ast.Node, source []byte) {
	p := sec.AddParagraph()
	p.Style = "Code"
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		if i > 0 {
			p.AddLineBreak()
		}
		seg := lines.At(i)
		p.AddText(strings.TrimRight(string(seg.Value(source)), "\n"))
	}
}

func convertQuote(sec *dom.Section, quote *ast.Blockquote, source []byte) {
	for c := quote.FirstChild(); c != nil; c = c.NextSibling() {
		para, ok := c.(*ast.Paragraph)
		if !ok {
			continue
		}
		p := sec.AddParagraph()
		p.Format.LeftIndent = dom.Pt(18)
		p.Format.Font.Italic = true
		appendInlines(p, para, source, dom.Font{})
	}
}

func appendInlines(p *dom.Paragraph, parent ast.Node, source []byte, font dom.Font) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			emit(p, string(n.Segment.Value(source)), font)
			if n.HardLineBreak() {
				p.AddLineBreak()
			} else if n.SoftLineBreak() {
				emit(p, " ", font)
			}
		case *ast.String:
			emit(p, string(n.Value), font)
		case *ast.Emphasis:
			f := font
			if n.Level >= 2 {
				f.Bold = true
			} else {
				f.Italic = true
			}
			appendInlines(p, n, source, f)
		case *ast.CodeSpan:
			f := font
			f.Name = "Courier"
			appendInlines(p, n, source, f)
		case *ast.Link:
			appendInlines(p, n, source, font)
		case *ast.AutoLink:
			emit(p, string(n.URL(source)), font)
		case *ast.Image:
			appendInlines(p, n, source, font)
		}
	}
}

func emit(p *dom.Paragraph, s string, font dom.Font) {
	if s == "" {
		return
	}
	if font == (dom.Font{}) {
		p.AddText(s)
		return
	}
	p.AddFormattedText(s, font)
}
