// Package pdf holds the output side of the pipeline: an append-only page
// container with document information and custom properties, plus the
// file writer that serializes pages, fonts and images into PDF 1.7.
package pdf

import (
	"strconv"
	"time"

	"github.com/dankennedy/MigraDoc/fonts"
)

// Product is the creator string stamped into new documents unless a
// caller overrides it.
const Product = "MigraDoc"

// ColorMode selects the color operators drawing surfaces emit.
type ColorMode int

const (
	ColorRGB ColorMode = iota
	ColorCMYK
)

// Info is the document information block written to the Info dictionary.
// Language goes to the catalog as the document language.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Language string

	// CreationDate and ModDate are written when non-zero.
	CreationDate time.Time
	ModDate      time.Time
}

// Document is an in-memory PDF under construction. Pages are appended and
// never removed; writing happens once via Save or SaveStream.
//
// Documents are not safe for concurrent use.
type Document struct {
	Info      Info
	ColorMode ColorMode

	// Compress flate-encodes content streams and embedded files.
	Compress bool
	// Deterministic derives the file identifier from content instead of
	// random bytes, making repeated saves byte-identical.
	Deterministic bool

	pages []*Page

	fonts      map[fontKey]*Font
	fontOrder  []*Font
	images     []*Image
	imageNames map[*Image]string

	propKeys []string
	props    map[string]string
}

// Option configures a new document.
type Option func(*Document)

// WithCreator overrides the Creator written to the Info dictionary.
func WithCreator(creator string) Option {
	return func(d *Document) { d.Info.Creator = creator }
}

// NewDocument returns an empty document with compression on and the
// product creator string set.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		Compress:   true,
		fonts:      make(map[fontKey]*Font),
		imageNames: make(map[*Image]string),
		props:      make(map[string]string),
	}
	d.Info.Creator = Product
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddPage appends a page with default A4 portrait geometry and returns it.
// The geometry stays mutable until content is drawn onto the page.
func (d *Document) AddPage() *Page {
	p := &Page{
		doc:    d,
		width:  a4Width,
		height: a4Height,
		fonts:  make(map[*Font]bool),
		images: make(map[*Image]bool),
	}
	d.pages = append(d.pages, p)
	return p
}

// PageCount reports the number of pages appended so far.
func (d *Document) PageCount() int { return len(d.pages) }

// Page returns the i-th page, counting from 1. Out-of-range indexes
// return nil.
func (d *Document) Page(i int) *Page {
	if i < 1 || i > len(d.pages) {
		return nil
	}
	return d.pages[i-1]
}

// SetProperty stores a custom document property. First-set order is
// preserved in the output; setting an existing key updates the value in
// place.
func (d *Document) SetProperty(key, value string) {
	if _, ok := d.props[key]; !ok {
		d.propKeys = append(d.propKeys, key)
	}
	d.props[key] = value
}

// Property looks up a custom property by its exact key.
func (d *Document) Property(key string) (string, bool) {
	v, ok := d.props[key]
	return v, ok
}

// PropertyKeys returns the custom property keys in first-set order.
func (d *Document) PropertyKeys() []string {
	keys := make([]string, len(d.propKeys))
	copy(keys, d.propKeys)
	return keys
}

type fontKey struct {
	face      *fonts.Face
	embedding fonts.Embedding
}

// font returns the shared font resource for a face and embedding policy,
// creating and naming it on first use.
func (d *Document) font(face *fonts.Face, embedding fonts.Embedding) *Font {
	key := fontKey{face: face, embedding: embedding}
	if f, ok := d.fonts[key]; ok {
		return f
	}
	f := &Font{
		face:      face,
		embedding: embedding,
		name:      "F" + strconv.Itoa(len(d.fontOrder)+1),
		gids:      make(map[int]rune),
		seenRuns:  make(map[string]bool),
	}
	d.fonts[key] = f
	d.fontOrder = append(d.fontOrder, f)
	return f
}

// imageName registers an image on first use and returns its resource name.
func (d *Document) imageName(img *Image) string {
	if n, ok := d.imageNames[img]; ok {
		return n
	}
	n := "Im" + strconv.Itoa(len(d.images)+1)
	d.images = append(d.images, img)
	d.imageNames[img] = n
	return n
}
