// Package gfx draws text, lines, rectangles and images onto one PDF
// page through a scoped surface. Coordinates are top-left origin with y
// growing downward; the surface translates into PDF space when it emits
// operators.
package gfx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dankennedy/MigraDoc/coords"
	"github.com/dankennedy/MigraDoc/dom"
	"github.com/dankennedy/MigraDoc/fonts"
	"github.com/dankennedy/MigraDoc/pdf"
)

// TextStyle describes one styled text run.
type TextStyle struct {
	Family    string
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	Color     dom.Color
}

// Surface is a drawing target bound to exactly one page. Content is
// buffered and flushed into the page on Close; a closed surface rejects
// further drawing. Close is idempotent.
type Surface struct {
	page     *pdf.Page
	registry *fonts.Registry
	encoding fonts.Encoding
	embed    fonts.Embedding
	buf      bytes.Buffer
	closed   bool
}

// FromPage binds a new surface to a page.
func FromPage(page *pdf.Page, registry *fonts.Registry) (*Surface, error) {
	if page == nil {
		return nil, fmt.Errorf("surface needs a page")
	}
	if registry == nil {
		return nil, fmt.Errorf("surface needs a font registry")
	}
	return &Surface{page: page, registry: registry}, nil
}

// SetFontEncoding selects wide or legacy text encoding for subsequent
// draws.
func (s *Surface) SetFontEncoding(enc fonts.Encoding) { s.encoding = enc }

// SetFontEmbedding selects the embedding policy for subsequent draws.
func (s *Surface) SetFontEmbedding(embed fonts.Embedding) { s.embed = embed }

// Close flushes buffered content into the page and releases the binding.
// Closing twice is harmless.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.page.AppendContent(s.buf.Bytes())
	s.buf.Reset()
	return nil
}

func (s *Surface) ready() error {
	if s.closed {
		return fmt.Errorf("surface is closed")
	}
	return nil
}

// DrawText draws one run with its baseline at (x, y) from the top-left
// corner of the page.
func (s *Surface) DrawText(x, y float64, text string, style TextStyle) error {
	if err := s.ready(); err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	size := style.Size
	if size <= 0 {
		size = 12
	}
	face := s.registry.Face(style.Family, style.Bold, style.Italic, s.encoding)
	font := s.page.UseFont(face, s.embed)
	payload := font.EncodeText(text)
	baseline := s.page.Height() - y

	s.buf.WriteString("q ")
	s.fillColor(style.Color)
	s.buf.WriteString("BT /" + font.Name() + " " + fnum(size) + " Tf ")
	s.buf.WriteString(fnum(x) + " " + fnum(baseline) + " Td ")
	if face.Builtin {
		writeLiteral(&s.buf, payload)
	} else {
		writeHex(&s.buf, payload)
	}
	s.buf.WriteString(" Tj ET Q\n")

	if style.Underline {
		width := face.TextWidth(text, size)
		offset := size * 0.12
		return s.DrawLine(x, y+offset, x+width, y+offset, size*0.07, style.Color)
	}
	return nil
}

// DrawLine strokes a straight line between two points.
func (s *Surface) DrawLine(x1, y1, x2, y2, width float64, c dom.Color) error {
	if err := s.ready(); err != nil {
		return err
	}
	if width <= 0 {
		width = 1
	}
	h := s.page.Height()
	s.buf.WriteString("q ")
	s.strokeColor(c)
	s.buf.WriteString(fnum(width) + " w ")
	s.buf.WriteString(fnum(x1) + " " + fnum(h-y1) + " m ")
	s.buf.WriteString(fnum(x2) + " " + fnum(h-y2) + " l S Q\n")
	return nil
}

// DrawRect fills the rectangle with top-left corner (x, y).
func (s *Surface) DrawRect(x, y, w, h float64, fill dom.Color) error {
	if err := s.ready(); err != nil {
		return err
	}
	bottom := s.page.Height() - y - h
	s.buf.WriteString("q ")
	s.fillColor(fill)
	s.buf.WriteString(fnum(x) + " " + fnum(bottom) + " " + fnum(w) + " " + fnum(h) + " re f Q\n")
	return nil
}

// DrawImage places the image with its top-left corner at (x, y), scaled
// to w by h points.
func (s *Surface) DrawImage(img *pdf.Image, x, y, w, h float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("draw image: nil image")
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("draw image: size %gx%g is not positive", w, h)
	}
	name := s.page.UseImage(img)
	m := coords.Scale(w, h).Multiply(coords.Translate(x, s.page.Height()-y-h))
	s.buf.WriteString("q ")
	for _, v := range m {
		s.buf.WriteString(fnum(v) + " ")
	}
	s.buf.WriteString("cm /" + name + " Do Q\n")
	return nil
}

func (s *Surface) fillColor(c dom.Color) {
	if s.page.Document().ColorMode == pdf.ColorCMYK {
		cy, m, ye, k := c.CMYK()
		s.buf.WriteString(fnum(cy) + " " + fnum(m) + " " + fnum(ye) + " " + fnum(k) + " k ")
		return
	}
	r, g, b := c.Normalized()
	s.buf.WriteString(fnum(r) + " " + fnum(g) + " " + fnum(b) + " rg ")
}

func (s *Surface) strokeColor(c dom.Color) {
	if s.page.Document().ColorMode == pdf.ColorCMYK {
		cy, m, ye, k := c.CMYK()
		s.buf.WriteString(fnum(cy) + " " + fnum(m) + " " + fnum(ye) + " " + fnum(k) + " K ")
		return
	}
	r, g, b := c.Normalized()
	s.buf.WriteString(fnum(r) + " " + fnum(g) + " " + fnum(b) + " RG ")
}

func writeLiteral(b *bytes.Buffer, payload []byte) {
	b.WriteByte('(')
	for _, ch := range payload {
		switch ch {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		default:
			if ch < 0x20 {
				fmt.Fprintf(b, "\\%03o", ch)
			} else {
				b.WriteByte(ch)
			}
		}
	}
	b.WriteByte(')')
}

func writeHex(b *bytes.Buffer, payload []byte) {
	b.WriteByte('<')
	for _, ch := range payload {
		fmt.Fprintf(b, "%02X", ch)
	}
	b.WriteByte('>')
}

func fnum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
