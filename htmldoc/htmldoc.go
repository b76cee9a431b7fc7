// Package htmldoc converts HTML into the document model. It covers the
// flowed subset a paginating renderer can express: headings, paragraphs,
// inline formatting, lists, preformatted blocks, images, rules and
// MathML (flattened to text). Everything else is traversed transparently.
package htmldoc

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dankennedy/MigraDoc/dom"
)

const (
	listIndent  = 15.0
	quoteIndent = 18.0
)

// Convert parses a full HTML document. A <title> becomes the document
// metadata title; the body becomes a single section.
func Convert(source string) (*dom.Document, error) {
	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := dom.NewDocument()
	if title := findNode(root, atom.Title); title != nil {
		if t := strings.TrimSpace(textContent(title)); t != "" {
			doc.EnsureInfo().Title = t
		}
	}
	walkBody(root, doc.AddSection())
	return doc, nil
}

// ConvertInto appends the converted body blocks to an existing section.
func ConvertInto(sec *dom.Section, source string) error {
	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	walkBody(root, sec)
	return nil
}

func walkBody(root *html.Node, sec *dom.Section) {
	c := &converter{sec: sec}
	if body := findNode(root, atom.Body); body != nil {
		for ch := body.FirstChild; ch != nil; ch = ch.NextSibling {
			c.walk(ch)
		}
	}
}

type converter struct {
	sec *dom.Section
}

func (c *converter) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			c.heading(n)
			return
		case atom.P:
			c.paragraph(n)
			return
		case atom.Ul, atom.Ol:
			c.list(n, 0)
			return
		case atom.Pre:
			c.pre(n)
			return
		case atom.Blockquote:
			c.quote(n)
			return
		case atom.Hr:
			c.sec.AddPageBreak()
			return
		case atom.Img:
			c.image(n)
			return
		case atom.Script, atom.Style, atom.Head, atom.Title:
			return
		}
		if n.Data == "math" {
			c.math(n)
			return
		}
	}

	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.walk(ch)
	}
}

func (c *converter) heading(n *html.Node) {
	p := c.sec.AddParagraph()
	p.Style = dom.Heading(headingLevel(n.DataAtom))
	appendInlines(p, n, dom.Font{})
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 1
}

func (c *converter) paragraph(n *html.Node) {
	if img := soleImageChild(n); img != nil {
		c.image(img)
		return
	}
	appendInlines(c.sec.AddParagraph(), n, dom.Font{})
}

// soleImageChild reports a paragraph wrapping exactly one <img>, which
// becomes a block-level picture instead of flowed text.
func soleImageChild(n *html.Node) *html.Node {
	var img *html.Node
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch {
		case ch.Type == html.TextNode && strings.TrimSpace(ch.Data) == "":
		case ch.Type == html.ElementNode && ch.DataAtom == atom.Img && img == nil:
			img = ch
		default:
			return nil
		}
	}
	return img
}

func (c *converter) image(n *html.Node) {
	src := attrValue(n, "src")
	if src == "" {
		return
	}
	img := c.sec.AddImage(src)
	if v, err := strconv.ParseFloat(attrValue(n, "width"), 64); err == nil && v > 0 {
		img.Width = dom.Pt(v)
	}
	if v, err := strconv.ParseFloat(attrValue(n, "height"), 64); err == nil && v > 0 {
		img.Height = dom.Pt(v)
	}
}

func (c *converter) list(n *html.Node, depth int) {
	ordered := n.DataAtom == atom.Ol
	index := 1
	if v, err := strconv.Atoi(attrValue(n, "start")); err == nil {
		index = v
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		marker := "• "
		if ordered {
			marker = strconv.Itoa(index) + ". "
			index++
		}
		c.listItem(li, depth, marker)
	}
}

func (c *converter) listItem(li *html.Node, depth int, marker string) {
	p := c.sec.AddParagraph()
	p.Format.LeftIndent = dom.Pt(float64(depth+1) * listIndent)
	p.Format.SpaceAfter = dom.Pt(2)
	p.AddText(marker)

	var nested []*html.Node
	for ch := li.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && (ch.DataAtom == atom.Ul || ch.DataAtom == atom.Ol) {
			nested = append(nested, ch)
			continue
		}
		appendInlineNode(p, ch, dom.Font{})
	}
	for _, sub := range nested {
		c.list(sub, depth+1)
	}
}

func (c *converter) pre(n *html.Node) {
	p := c.sec.AddParagraph()
	p.Style = "Code"
	text := strings.TrimRight(textContent(n), "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			p.AddLineBreak()
		}
		p.AddText(line)
	}
}

func (c *converter) quote(n *html.Node) {
	quoted := func() *dom.Paragraph {
		p := c.sec.AddParagraph()
		p.Format.LeftIndent = dom.Pt(quoteIndent)
		p.Format.Font.Italic = true
		return p
	}
	hasParagraphs := false
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && ch.DataAtom == atom.P {
			hasParagraphs = true
			appendInlines(quoted(), ch, dom.Font{})
		}
	}
	if !hasParagraphs {
		appendInlines(quoted(), n, dom.Font{})
	}
}

func (c *converter) math(n *html.Node) {
	text := flattenMath(n)
	if text == "" {
		return
	}
	p := c.sec.AddParagraph()
	p.Format.Font.Italic = true
	p.AddText(text)
}

func appendInlines(p *dom.Paragraph, n *html.Node, font dom.Font) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		appendInlineNode(p, ch, font)
	}
}

func appendInlineNode(p *dom.Paragraph, n *html.Node, font dom.Font) {
	if n.Type == html.TextNode {
		emit(p, collapseSpace(n.Data), font)
		return
	}
	if n.Type != html.ElementNode {
		return
	}
	switch n.DataAtom {
	case atom.B, atom.Strong:
		f := font
		f.Bold = true
		appendInlines(p, n, f)
	case atom.I, atom.Em:
		f := font
		f.Italic = true
		appendInlines(p, n, f)
	case atom.U:
		f := font
		f.Underline = true
		appendInlines(p, n, f)
	case atom.Code:
		f := font
		f.Name = "Courier"
		appendInlines(p, n, f)
	case atom.Br:
		p.AddLineBreak()
	case atom.Script, atom.Style:
	default:
		if n.Data == "math" {
			f := font
			f.Italic = true
			emit(p, flattenMath(n), f)
			return
		}
		appendInlines(p, n, font)
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

// collapseSpace reduces whitespace runs to single spaces, keeping one
// leading or trailing space when the source had any. The line layouter
// drops spaces at line boundaries itself.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(fields, " ")
	if first, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(first) {
		out = " " + out
	}
	if last, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(last) {
		out += " "
	}
	return out
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

func findNode(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, a); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
