package pdf

import (
	"bytes"
	"fmt"

	"github.com/dankennedy/MigraDoc/fonts"
)

// A4 portrait in points.
const (
	a4Width  = 21.0 / 2.54 * 72
	a4Height = 29.7 / 2.54 * 72
)

// Page is one output page. Geometry is mutable until the first content
// write, after which SetSize fails.
type Page struct {
	doc     *Document
	width   float64
	height  float64
	content bytes.Buffer
	frozen  bool

	fonts  map[*Font]bool
	images map[*Image]bool
}

// Document returns the owning document.
func (p *Page) Document() *Document { return p.doc }

// Width returns the page width in points.
func (p *Page) Width() float64 { return p.width }

// Height returns the page height in points.
func (p *Page) Height() float64 { return p.height }

// SetSize changes the page geometry. It fails once content has been
// drawn, geometry must be fixed before drawing starts.
func (p *Page) SetSize(width, height float64) error {
	if p.frozen {
		return fmt.Errorf("page geometry is frozen after drawing")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("page size %gx%g is not positive", width, height)
	}
	p.width = width
	p.height = height
	return nil
}

// UseFont returns the document-wide font resource for the face under the
// given embedding policy and marks it used on this page.
func (p *Page) UseFont(face *fonts.Face, embedding fonts.Embedding) *Font {
	f := p.doc.font(face, embedding)
	p.fonts[f] = true
	return f
}

// UseImage registers the image with the document and marks it used on
// this page, returning its resource name.
func (p *Page) UseImage(img *Image) string {
	n := p.doc.imageName(img)
	p.images[img] = true
	return n
}

// AppendContent adds raw content-stream bytes to the page and freezes
// its geometry.
func (p *Page) AppendContent(data []byte) {
	if len(data) == 0 {
		return
	}
	p.frozen = true
	if p.content.Len() > 0 {
		p.content.WriteByte('\n')
	}
	p.content.Write(data)
}
