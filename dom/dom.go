// Package dom is the source document object model: a tree of sections,
// paragraphs and inline runs, independent of any output format. A
// document describes intent (text, formats, page setup); pagination and
// drawing happen elsewhere.
package dom

// Document is the root of the model.
type Document struct {
	// Info is optional document metadata. A nil Info means the document
	// carries no metadata at all, which downstream consumers treat
	// differently from empty fields.
	Info *DocumentInfo

	Sections []*Section

	// Styles holds the named paragraph styles. Always non-nil for
	// documents created through NewDocument.
	Styles *Styles

	// UseCMYKColor switches the output color operators from RGB to CMYK.
	UseCMYKColor bool
}

// NewDocument returns an empty document with the builtin style sheet.
func NewDocument() *Document {
	return &Document{Styles: defaultStyles()}
}

// AddSection appends a new section with default page setup.
func (d *Document) AddSection() *Section {
	s := &Section{PageSetup: DefaultPageSetup(), doc: d}
	d.Sections = append(d.Sections, s)
	return s
}

// LastSection returns the most recently added section, creating one if
// the document is still empty.
func (d *Document) LastSection() *Section {
	if len(d.Sections) == 0 {
		return d.AddSection()
	}
	return d.Sections[len(d.Sections)-1]
}

// EnsureInfo returns the document's Info block, allocating it on first use.
func (d *Document) EnsureInfo() *DocumentInfo {
	if d.Info == nil {
		d.Info = &DocumentInfo{}
	}
	return d.Info
}

// DocumentInfo models document metadata. Empty fields are "unset".
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
}

// Field returns the named metadata value. Unknown names yield "".
func (i *DocumentInfo) Field(name string) string {
	if i == nil {
		return ""
	}
	switch name {
	case "Title":
		return i.Title
	case "Author":
		return i.Author
	case "Subject":
		return i.Subject
	case "Keywords":
		return i.Keywords
	}
	return ""
}

// Section is a run of pages sharing one page setup. Every section starts
// on a fresh page.
type Section struct {
	PageSetup PageSetup

	// Header and Footer are optional paragraphs repeated on every page
	// of the section, placed inside the margin bands.
	Header *Paragraph
	Footer *Paragraph

	Blocks []Block

	doc *Document
}

// Block is a body-level element of a section.
type Block interface{ block() }

// AddParagraph appends a paragraph; the optional text becomes its first run.
func (s *Section) AddParagraph(text ...string) *Paragraph {
	p := &Paragraph{}
	for _, t := range text {
		p.AddText(t)
	}
	s.Blocks = append(s.Blocks, p)
	return p
}

// AddPageBreak forces the following content onto a new page.
func (s *Section) AddPageBreak() {
	s.Blocks = append(s.Blocks, &PageBreak{})
}

// AddImage appends an image block referencing a file path. Relative
// paths are resolved by the renderer.
func (s *Section) AddImage(path string) *Image {
	img := &Image{Path: path}
	s.Blocks = append(s.Blocks, img)
	return img
}

// AddHeader returns the section header paragraph, creating it on first use.
func (s *Section) AddHeader() *Paragraph {
	if s.Header == nil {
		s.Header = &Paragraph{}
	}
	return s.Header
}

// AddFooter returns the section footer paragraph, creating it on first use.
func (s *Section) AddFooter() *Paragraph {
	if s.Footer == nil {
		s.Footer = &Paragraph{}
	}
	return s.Footer
}

// Document returns the owning document (nil for detached sections).
func (s *Section) Document() *Document { return s.doc }

// PageBreak forces a page boundary between blocks.
type PageBreak struct{}

func (*PageBreak) block() {}

// Image is a block-level picture. JPEG and PNG files are supported.
type Image struct {
	// Path locates the image file. Ignored when Data is set.
	Path string
	// Data holds the raw image bytes when the file is already in memory.
	Data []byte

	// Width and Height give the display size. When only one is set the
	// other follows the image's aspect ratio; when neither is set the
	// natural size at 72dpi is used, capped to the content width.
	Width  Unit
	Height Unit
}

func (*Image) block() {}
