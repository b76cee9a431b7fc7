// Package rendering binds the document model to paginated PDF output.
// DocumentRenderer is the paginating formatter; PDFDocumentRenderer is
// the lifecycle controller that prepares the formatter lazily, allocates
// output pages on demand and merges document metadata into the output.
package rendering

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dankennedy/MigraDoc/dom"
	"github.com/dankennedy/MigraDoc/fonts"
	"github.com/dankennedy/MigraDoc/gfx"
	"github.com/dankennedy/MigraDoc/observability"
	"github.com/dankennedy/MigraDoc/pdf"
	"github.com/dankennedy/MigraDoc/scripting"
)

// formatterState tracks the document-to-formatter binding.
type formatterState int

const (
	fmUnbound formatterState = iota
	fmBound
	fmPaginated
)

// outputState tracks the output container lifecycle.
type outputState int

const (
	outNone outputState = iota
	outCreated
	outMetadataWritten
)

// Property is one caller-supplied metadata entry merged into the output
// document's information dictionary.
type Property struct {
	Key   string
	Value string
}

// PDFDocumentRenderer drives a document through pagination into a PDF
// container. The formatter and the output document are both created
// lazily; render policy (encoding, embedding, language, creator) is
// fixed per renderer instance. Not safe for concurrent use.
type PDFDocumentRenderer struct {
	unicode   bool
	embedding fonts.Embedding
	language  string
	workDir   string
	creator   string
	log       observability.Logger
	registry  *fonts.Registry

	doc      *dom.Document
	renderer *DocumentRenderer
	pdfDoc   *pdf.Document
	props    []Property

	fmState  formatterState
	outState outputState
}

// Option configures a PDFDocumentRenderer.
type Option func(*PDFDocumentRenderer)

// WithUnicode switches text output from single-byte WinAnsi with core
// fonts to wide encoding with embedded fonts.
func WithUnicode(unicode bool) Option {
	return func(r *PDFDocumentRenderer) { r.unicode = unicode }
}

// WithFontEmbedding sets the embedding policy applied to every page.
func WithFontEmbedding(e fonts.Embedding) Option {
	return func(r *PDFDocumentRenderer) { r.embedding = e }
}

// WithLanguage sets the output document's language tag (/Lang).
func WithLanguage(lang string) Option {
	return func(r *PDFDocumentRenderer) { r.language = lang }
}

// WithWorkingDirectory sets the directory relative save paths and image
// paths resolve against.
func WithWorkingDirectory(dir string) Option {
	return func(r *PDFDocumentRenderer) { r.workDir = dir }
}

// WithCreator overrides the creator string written into the output.
func WithCreator(creator string) Option {
	return func(r *PDFDocumentRenderer) { r.creator = creator }
}

// WithLogger wires a logger into the renderer and its formatter.
func WithLogger(l observability.Logger) Option {
	return func(r *PDFDocumentRenderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithFontRegistry replaces the default font registry.
func WithFontRegistry(reg *fonts.Registry) Option {
	return func(r *PDFDocumentRenderer) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// NewPDFDocumentRenderer returns a renderer with the default policy:
// WinAnsi encoding, automatic embedding, a fresh font registry.
func NewPDFDocumentRenderer(opts ...Option) (*PDFDocumentRenderer, error) {
	r := &PDFDocumentRenderer{
		embedding: fonts.EmbedAutomatic,
		log:       observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		reg, err := fonts.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("font registry: %w", err)
		}
		r.registry = reg
	}
	return r, nil
}

// SetDocument binds the document to render. Any previously created
// formatter is discarded so the next use re-paginates; the output
// document is kept.
func (r *PDFDocumentRenderer) SetDocument(doc *dom.Document) {
	r.doc = doc
	r.renderer = nil
	if doc == nil {
		r.fmState = fmUnbound
	} else {
		r.fmState = fmBound
	}
}

// Document returns the bound document.
func (r *PDFDocumentRenderer) Document() *dom.Document { return r.doc }

// SetCustomProperties replaces the caller-supplied metadata entries
// merged on the next metadata write.
func (r *PDFDocumentRenderer) SetCustomProperties(props []Property) {
	r.props = append(r.props[:0:0], props...)
}

// PrepareDocumentRenderer creates the formatter for the bound document
// if it does not exist yet and, when complete is set, runs the one-time
// pagination pass. Safe to call repeatedly.
func (r *PDFDocumentRenderer) PrepareDocumentRenderer(complete bool) error {
	if r.fmState == fmUnbound {
		return &PreconditionError{Op: "PrepareDocumentRenderer", Missing: "document"}
	}
	if r.renderer == nil {
		r.renderer = NewDocumentRenderer(r.doc, r.registry)
		r.renderer.Encoding = r.encoding()
		r.renderer.WorkingDirectory = r.workDir
		r.renderer.Logger = r.log
		r.renderer.Evaluator = scripting.NewEngine()
	}
	if complete && r.fmState != fmPaginated {
		if err := r.renderer.Prepare(); err != nil {
			return fmt.Errorf("prepare document: %w", err)
		}
		r.fmState = fmPaginated
	}
	return nil
}

// PrepareRenderPages makes the renderer ready to emit pages: the
// formatter is prepared and the output document exists with the document
// information written. Calling it again refreshes the metadata without
// duplicating it.
func (r *PDFDocumentRenderer) PrepareRenderPages() error {
	if err := r.PrepareDocumentRenderer(true); err != nil {
		return err
	}
	if r.outState == outNone {
		var opts []pdf.Option
		if r.creator != "" {
			opts = append(opts, pdf.WithCreator(r.creator))
		}
		r.pdfDoc = pdf.NewDocument(opts...)
		if r.doc.UseCMYKColor {
			r.pdfDoc.ColorMode = pdf.ColorCMYK
		}
		if r.language != "" {
			r.pdfDoc.Info.Language = r.language
		}
		r.outState = outCreated
	}
	if err := r.WriteDocumentInformation(); err != nil {
		return err
	}
	r.outState = outMetadataWritten
	return nil
}

// RenderDocument prepares everything and renders every formatted page
// into the output document.
func (r *PDFDocumentRenderer) RenderDocument() error {
	if err := r.PrepareRenderPages(); err != nil {
		return err
	}
	n := r.renderer.FormattedDocument().PageCount()
	if n == 0 {
		return nil
	}
	return r.RenderPages(1, n)
}

// RenderPages renders the inclusive page range [start, end] onto fresh
// output pages, appending in ascending order. The range must satisfy
// 1 <= start <= end <= PageCount.
func (r *PDFDocumentRenderer) RenderPages(start, end int) error {
	if err := r.PrepareRenderPages(); err != nil {
		return err
	}
	fd := r.renderer.FormattedDocument()
	if start < 1 || end > fd.PageCount() || start > end {
		return &RangeError{Start: start, End: end, PageCount: fd.PageCount()}
	}

	r.renderer.RenderTime = time.Now()
	began := time.Now()
	for page := start; page <= end; page++ {
		if err := r.renderPage(page); err != nil {
			return fmt.Errorf("render page %d: %w", page, err)
		}
	}
	r.log.Info("pages rendered",
		observability.Int("start", start),
		observability.Int("end", end),
		observability.Int(observability.MetricPageCount, end-start+1),
		observability.Float64(observability.MetricRenderTime, time.Since(began).Seconds()))
	return nil
}

// renderPage appends one output page, sizes it before any drawing, and
// replays the formatted page through a scoped surface. The surface is
// closed on every exit path; a failed page stays in the output.
func (r *PDFDocumentRenderer) renderPage(page int) (err error) {
	info, err := r.renderer.FormattedDocument().GetPageInfo(page)
	if err != nil {
		return err
	}
	p := r.pdfDoc.AddPage()
	if err := p.SetSize(info.Width.Points(), info.Height.Points()); err != nil {
		return err
	}
	surface, err := gfx.FromPage(p, r.registry)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := surface.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	surface.SetFontEncoding(r.encoding())
	surface.SetFontEmbedding(r.embedding)
	return r.renderer.RenderPage(surface, page)
}

// PageCount prepares the formatter if needed and returns the formatted
// page count.
func (r *PDFDocumentRenderer) PageCount() (int, error) {
	if err := r.PrepareDocumentRenderer(true); err != nil {
		return 0, err
	}
	return r.renderer.FormattedDocument().PageCount(), nil
}

// WriteDocumentInformation copies the document's metadata into the
// output and merges the custom properties. A document without an Info
// block leaves the output untouched, custom properties included.
func (r *PDFDocumentRenderer) WriteDocumentInformation() error {
	if r.fmState == fmUnbound {
		return &PreconditionError{Op: "WriteDocumentInformation", Missing: "document"}
	}
	if r.outState == outNone {
		return &PreconditionError{Op: "WriteDocumentInformation", Missing: "output document"}
	}
	info := r.doc.Info
	if info == nil {
		return nil
	}
	if info.Title != "" {
		r.pdfDoc.Info.Title = info.Title
	}
	if info.Author != "" {
		r.pdfDoc.Info.Author = info.Author
	}
	if info.Subject != "" {
		r.pdfDoc.Info.Subject = info.Subject
	}
	if info.Keywords != "" {
		r.pdfDoc.Info.Keywords = info.Keywords
	}
	for _, prop := range r.props {
		if prop.Key == "" {
			continue
		}
		key := prop.Key
		if !strings.HasPrefix(key, "/") {
			key = "/" + key
		}
		r.pdfDoc.SetProperty(key, prop.Value)
	}
	return nil
}

// Save writes the output document to a file. Relative paths resolve
// against the configured working directory.
func (r *PDFDocumentRenderer) Save(path string) error {
	if path == "" {
		return &ArgumentError{Name: "path", Reason: "must not be empty"}
	}
	if r.outState == outNone {
		return &PreconditionError{Op: "Save", Missing: "output document"}
	}
	if !filepath.IsAbs(path) && r.workDir != "" {
		path = filepath.Join(r.workDir, path)
	}
	began := time.Now()
	if err := r.pdfDoc.Save(path); err != nil {
		return err
	}
	r.log.Info("document saved",
		observability.String("path", path),
		observability.Float64(observability.MetricWriteTime, time.Since(began).Seconds()))
	return nil
}

// SaveStream serializes the output document to the writer, closing it
// afterwards when requested and the writer is an io.Closer.
func (r *PDFDocumentRenderer) SaveStream(w io.Writer, closeStream bool) error {
	if w == nil {
		return &ArgumentError{Name: "stream", Reason: "must not be nil"}
	}
	if r.outState == outNone {
		return &PreconditionError{Op: "SaveStream", Missing: "output document"}
	}
	return r.pdfDoc.SaveStream(w, closeStream)
}

// PDFDocument returns the output container, nil before the first
// prepare.
func (r *PDFDocumentRenderer) PDFDocument() *pdf.Document { return r.pdfDoc }

// SetPDFDocument replaces the output container. Metadata is written into
// the replacement on the next prepare.
func (r *PDFDocumentRenderer) SetPDFDocument(doc *pdf.Document) {
	r.pdfDoc = doc
	if doc == nil {
		r.outState = outNone
	} else {
		r.outState = outCreated
	}
}

func (r *PDFDocumentRenderer) encoding() fonts.Encoding {
	if r.unicode {
		return fonts.EncodingUnicode
	}
	return fonts.EncodingWinAnsi
}
