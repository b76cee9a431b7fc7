package rendering

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dankennedy/MigraDoc/dom"
	"github.com/dankennedy/MigraDoc/fonts"
	"github.com/dankennedy/MigraDoc/gfx"
	"github.com/dankennedy/MigraDoc/observability"
	"github.com/dankennedy/MigraDoc/pdf"
	"github.com/dankennedy/MigraDoc/scripting"
)

const (
	// tabStop is the distance between tab stops, half an inch.
	tabStop = 36.0

	dateLayout = "2006-01-02"
)

// sampleDate sizes date field placeholders during pagination.
var sampleDate = time.Date(2026, time.December, 28, 15, 4, 5, 0, time.UTC)

// DocumentRenderer is the paginating formatter. Prepare runs the
// one-time pagination pass that turns the document into a
// FormattedDocument; RenderPage replays a formatted page onto a drawing
// surface. The orchestrator creates one renderer per bound document.
type DocumentRenderer struct {
	// Encoding selects the faces used for measurement and drawing.
	Encoding fonts.Encoding

	// WorkingDirectory resolves relative image paths.
	WorkingDirectory string

	// Logger receives pagination and rendering diagnostics.
	Logger observability.Logger

	// Evaluator runs expression fields. Nil renders them as empty text.
	Evaluator scripting.Evaluator

	// RenderTime is the timestamp date and expression fields observe.
	// The orchestrator sets it once per render pass; a zero value falls
	// back to the wall clock.
	RenderTime time.Time

	doc      *dom.Document
	registry *fonts.Registry

	formatted *FormattedDocument
	passes    int

	images map[string]*pdf.Image
}

// NewDocumentRenderer creates a formatter for the document. The registry
// supplies the faces used for measurement and must not be nil.
func NewDocumentRenderer(doc *dom.Document, registry *fonts.Registry) *DocumentRenderer {
	return &DocumentRenderer{
		Logger:   observability.NopLogger{},
		doc:      doc,
		registry: registry,
		images:   make(map[string]*pdf.Image),
	}
}

// Prepare runs the pagination pass. It is idempotent; only the first
// call paginates.
func (dr *DocumentRenderer) Prepare() error {
	if dr.formatted != nil {
		return nil
	}
	if dr.doc == nil {
		return &PreconditionError{Op: "Prepare", Missing: "document"}
	}
	start := time.Now()
	dr.passes++

	fd := &FormattedDocument{}
	for _, sec := range dr.doc.Sections {
		if err := dr.paginateSection(fd, sec); err != nil {
			return err
		}
	}
	dr.formatted = fd

	lines := 0
	for _, p := range fd.pages {
		lines += len(p.lines)
	}
	dr.Logger.Debug("pagination complete",
		observability.Int(observability.MetricPageCount, len(fd.pages)),
		observability.Int(observability.MetricLineCount, lines),
		observability.Float64(observability.MetricPrepareTime, time.Since(start).Seconds()))
	return nil
}

// FormattedDocument returns the pagination result, nil before Prepare.
func (dr *DocumentRenderer) FormattedDocument() *FormattedDocument { return dr.formatted }

// RenderPage replays one formatted page onto the surface.
func (dr *DocumentRenderer) RenderPage(s *gfx.Surface, page int) error {
	if dr.formatted == nil {
		return &PreconditionError{Op: "RenderPage", Missing: "prepared document"}
	}
	fp, err := dr.formatted.page(page)
	if err != nil {
		return err
	}

	for _, pi := range fp.images {
		if err := s.DrawImage(pi.img, pi.x, pi.y, pi.w, pi.h); err != nil {
			return fmt.Errorf("draw image: %w", err)
		}
	}
	for _, pl := range fp.lines {
		for _, pr := range pl.runs {
			text := pr.text
			if pr.field != nil {
				text = dr.resolveField(pr.field, page)
			}
			if text == "" || pr.space && !pr.font.Underline {
				continue
			}
			style := gfx.TextStyle{
				Family:    pr.font.Name,
				Size:      pr.font.Size.Points(),
				Bold:      pr.font.Bold,
				Italic:    pr.font.Italic,
				Underline: pr.font.Underline,
				Color:     pr.font.Color,
			}
			if err := s.DrawText(pr.x, pl.y, text, style); err != nil {
				return fmt.Errorf("draw text: %w", err)
			}
		}
	}
	dr.Logger.Debug("page rendered",
		observability.Int("page", page),
		observability.Int(observability.MetricLineCount, len(fp.lines)))
	return nil
}

func (dr *DocumentRenderer) renderTime() time.Time {
	if dr.RenderTime.IsZero() {
		return time.Now()
	}
	return dr.RenderTime
}

// resolveField turns a field into the text it renders on the page.
func (dr *DocumentRenderer) resolveField(f dom.Inline, page int) string {
	switch fd := f.(type) {
	case *dom.PageField:
		return strconv.Itoa(page)
	case *dom.NumPagesField:
		return strconv.Itoa(dr.formatted.PageCount())
	case *dom.DateField:
		layout := fd.Layout
		if layout == "" {
			layout = dateLayout
		}
		return dr.renderTime().Format(layout)
	case *dom.InfoField:
		return dr.doc.Info.Field(fd.Name)
	case *dom.ExpressionField:
		return dr.evaluate(fd.Expr, page)
	}
	return ""
}

// evaluate runs an expression field. Failures render as empty text so a
// broken expression cannot abort a page.
func (dr *DocumentRenderer) evaluate(expr string, page int) string {
	if dr.Evaluator == nil {
		return ""
	}
	info := make(map[string]string)
	if i := dr.doc.Info; i != nil {
		info["Title"] = i.Title
		info["Author"] = i.Author
		info["Subject"] = i.Subject
		info["Keywords"] = i.Keywords
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	out, err := dr.Evaluator.Evaluate(ctx, expr, scripting.FieldContext{
		Page:  page,
		Pages: dr.formatted.PageCount(),
		Date:  dr.renderTime(),
		Info:  info,
	})
	if err != nil {
		dr.Logger.Warn("expression failed",
			observability.String("expr", expr),
			observability.Error("error", err))
		return ""
	}
	return out
}

// paginator carries the cursor state while one section flows onto pages.
// y is the distance from the page top to the top of the next line box.
type paginator struct {
	dr  *DocumentRenderer
	fd  *FormattedDocument
	sec *dom.Section

	page     *formattedPage
	y        float64
	topY     float64
	bottomY  float64
	leftX    float64
	contentW float64
	pageH    float64
}

func (dr *DocumentRenderer) paginateSection(fd *FormattedDocument, sec *dom.Section) error {
	ps := sec.PageSetup
	pg := &paginator{
		dr:       dr,
		fd:       fd,
		sec:      sec,
		topY:     ps.TopMargin.Points(),
		leftX:    ps.LeftMargin.Points(),
		contentW: ps.ContentWidth().Points(),
		pageH:    ps.EffectiveHeight().Points(),
	}
	pg.bottomY = pg.pageH - ps.BottomMargin.Points()
	pg.newPage()

	for _, b := range sec.Blocks {
		switch blk := b.(type) {
		case *dom.Paragraph:
			pg.placeParagraph(blk)
		case *dom.PageBreak:
			pg.newPage()
		case *dom.Image:
			if err := pg.placeImage(blk); err != nil {
				return err
			}
		}
	}
	return nil
}

// newPage opens a fresh page for the section, placing its header and
// footer bands immediately.
func (pg *paginator) newPage() {
	fp := &formattedPage{info: PageInfo{
		Width:       pg.sec.PageSetup.EffectiveWidth(),
		Height:      pg.sec.PageSetup.EffectiveHeight(),
		Orientation: pg.sec.PageSetup.Orientation,
	}}
	pg.fd.pages = append(pg.fd.pages, fp)
	pg.page = fp
	pg.y = pg.topY
	pg.placeBand(pg.sec.Header, true)
	pg.placeBand(pg.sec.Footer, false)
}

// placeBand lays a header or footer paragraph into its margin band.
// Headers grow down from the header distance, footers stack up so the
// last line sits at the footer distance.
func (pg *paginator) placeBand(p *dom.Paragraph, header bool) {
	if p == nil {
		return
	}
	format := pg.dr.resolveFormat(p)
	size := format.Font.Size.Points()
	lineH := pg.dr.lineHeight(format)
	lines := pg.dr.layoutParagraph(p, format, pg.availWidth(format))

	var base float64
	if header {
		base = pg.sec.PageSetup.HeaderDistance.Points() + size
	} else {
		base = pg.pageH - pg.sec.PageSetup.FooterDistance.Points() - float64(len(lines)-1)*lineH
	}
	for i, l := range lines {
		pg.emitLine(l, format, base+float64(i)*lineH)
	}
}

func (pg *paginator) placeParagraph(p *dom.Paragraph) {
	format := pg.dr.resolveFormat(p)
	if format.PageBreakBefore && pg.y > pg.topY {
		pg.newPage()
	}
	lineH := pg.dr.lineHeight(format)
	size := format.Font.Size.Points()
	lines := pg.dr.layoutParagraph(p, format, pg.availWidth(format))

	if pg.y > pg.topY {
		pg.y += format.SpaceBefore.Points()
	}
	if format.KeepTogether {
		need := float64(len(lines)) * lineH
		if pg.y+need > pg.bottomY && need <= pg.bottomY-pg.topY {
			pg.newPage()
		}
	}
	for _, l := range lines {
		if pg.y+lineH > pg.bottomY && pg.y > pg.topY {
			pg.newPage()
		}
		pg.emitLine(l, format, pg.y+size)
		pg.y += lineH
	}
	pg.y += format.SpaceAfter.Points()
}

func (pg *paginator) placeImage(blk *dom.Image) error {
	img, err := pg.dr.loadImage(blk)
	if err != nil {
		return err
	}
	w, h := imageSize(blk, img, pg.contentW)
	if pg.y+h > pg.bottomY && pg.y > pg.topY {
		pg.newPage()
	}
	pg.page.images = append(pg.page.images, placedImage{img: img, x: pg.leftX, y: pg.y, w: w, h: h})
	pg.y += h
	return nil
}

func (pg *paginator) availWidth(format dom.ParagraphFormat) float64 {
	return pg.contentW - format.LeftIndent.Points() - format.RightIndent.Points()
}

// emitLine assigns absolute positions to a wrapped line and records it
// on the current page. Justified lines stretch their inter-word gaps
// unless the break was forced.
func (pg *paginator) emitLine(l line, format dom.ParagraphFormat, baseline float64) {
	avail := pg.availWidth(format)
	x := pg.leftX + format.LeftIndent.Points()
	stretch := 0.0
	switch format.Alignment {
	case dom.AlignCenter:
		x += (avail - l.width) / 2
	case dom.AlignRight:
		x += avail - l.width
	case dom.AlignJustify:
		if !l.forced && l.width < avail {
			if n := l.spaceCount(); n > 0 {
				stretch = (avail - l.width) / float64(n)
			}
		}
	}

	pl := placedLine{y: baseline}
	for _, r := range l.runs {
		pl.runs = append(pl.runs, placedRun{run: r, x: x})
		x += r.width
		if r.space {
			x += stretch
		}
	}
	pg.page.lines = append(pg.page.lines, pl)
}

func (dr *DocumentRenderer) resolveFormat(p *dom.Paragraph) dom.ParagraphFormat {
	return dr.doc.Styles.Resolve(p)
}

func (dr *DocumentRenderer) lineHeight(format dom.ParagraphFormat) float64 {
	if ls := format.LineSpacing.Points(); ls > 0 {
		return ls
	}
	return dr.face(format.Font).LineHeight(format.Font.Size.Points())
}

func (dr *DocumentRenderer) face(font dom.Font) *fonts.Face {
	return dr.registry.Face(font.Name, font.Bold, font.Italic, dr.Encoding)
}

// layoutParagraph wraps a paragraph's inlines into lines against the
// available width using greedy word wrap. Every paragraph yields at
// least one line so empty paragraphs still advance the cursor.
func (dr *DocumentRenderer) layoutParagraph(p *dom.Paragraph, format dom.ParagraphFormat, avail float64) []line {
	var lines []line
	var cur line
	flush := func(forced bool) {
		cur.trimTrailingSpace()
		cur.forced = forced
		lines = append(lines, cur)
		cur = line{}
	}
	add := func(r run) {
		if r.space {
			if len(cur.runs) == 0 {
				return
			}
			if cur.width+r.width > avail {
				flush(false)
				return
			}
			cur.runs = append(cur.runs, r)
			cur.width += r.width
			return
		}
		if cur.width+r.width > avail && len(cur.runs) > 0 {
			flush(false)
		}
		if r.width > avail && r.field == nil {
			for _, part := range dr.splitRun(r, avail) {
				if cur.width+part.width > avail && len(cur.runs) > 0 {
					flush(false)
				}
				cur.runs = append(cur.runs, part)
				cur.width += part.width
			}
			return
		}
		cur.runs = append(cur.runs, r)
		cur.width += r.width
	}

	for _, el := range p.Elements {
		switch e := el.(type) {
		case *dom.Text:
			dr.addWords(add, e.Content, format.Font)
		case *dom.FormattedText:
			dr.addWords(add, e.Content, dom.MergeFont(format.Font, e.Font))
		case *dom.LineBreak:
			flush(true)
		case *dom.Tab:
			next := (math.Floor(cur.width/tabStop) + 1) * tabStop
			if next > avail {
				flush(false)
			} else {
				cur.runs = append(cur.runs, run{font: format.Font, width: next - cur.width})
				cur.width = next
			}
		case *dom.PageField, *dom.NumPagesField, *dom.DateField, *dom.InfoField, *dom.ExpressionField:
			font := format.Font
			w := dr.face(font).TextWidth(dr.fieldPlaceholder(e), font.Size.Points())
			add(run{field: e, font: font, width: w})
		}
	}
	if len(cur.runs) > 0 || len(lines) == 0 {
		flush(true)
	}
	return lines
}

// fieldPlaceholder is the text a field is measured with during
// pagination. The real text is only known when the page is drawn.
func (dr *DocumentRenderer) fieldPlaceholder(f dom.Inline) string {
	switch fd := f.(type) {
	case *dom.PageField, *dom.NumPagesField:
		return "00"
	case *dom.DateField:
		layout := fd.Layout
		if layout == "" {
			layout = dateLayout
		}
		return sampleDate.Format(layout)
	case *dom.InfoField:
		return dr.doc.Info.Field(fd.Name)
	case *dom.ExpressionField:
		return "0000"
	}
	return ""
}

func (dr *DocumentRenderer) addWords(add func(run), text string, font dom.Font) {
	face := dr.face(font)
	size := font.Size.Points()
	spaceW := face.TextWidth(" ", size)
	for _, tok := range splitTokens(text) {
		if tok == " " {
			add(run{text: " ", font: font, width: spaceW, space: true})
			continue
		}
		add(run{text: tok, font: font, width: face.TextWidth(tok, size)})
	}
}

// splitTokens breaks text into words and single-space gaps. Newlines and
// tabs inside a run behave like spaces; explicit breaks use LineBreak.
func splitTokens(text string) []string {
	var tokens []string
	var word strings.Builder
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			if word.Len() > 0 {
				tokens = append(tokens, word.String())
				word.Reset()
			}
			tokens = append(tokens, " ")
			continue
		}
		word.WriteRune(r)
	}
	if word.Len() > 0 {
		tokens = append(tokens, word.String())
	}
	return tokens
}

// splitRun breaks a word wider than the line into character chunks.
func (dr *DocumentRenderer) splitRun(r run, avail float64) []run {
	face := dr.face(r.font)
	size := r.font.Size.Points()
	var parts []run
	var chunk strings.Builder
	width := 0.0
	for _, ch := range r.text {
		cw := face.TextWidth(string(ch), size)
		if width+cw > avail && chunk.Len() > 0 {
			parts = append(parts, run{text: chunk.String(), font: r.font, width: width})
			chunk.Reset()
			width = 0
		}
		chunk.WriteRune(ch)
		width += cw
	}
	if chunk.Len() > 0 {
		parts = append(parts, run{text: chunk.String(), font: r.font, width: width})
	}
	return parts
}

func (dr *DocumentRenderer) loadImage(blk *dom.Image) (*pdf.Image, error) {
	if len(blk.Data) > 0 {
		img, err := pdf.DecodeImage(blk.Data)
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return img, nil
	}
	if blk.Path == "" {
		return nil, errors.New("image block has neither path nor data")
	}
	path := blk.Path
	if !filepath.IsAbs(path) && dr.WorkingDirectory != "" {
		path = filepath.Join(dr.WorkingDirectory, path)
	}
	if img, ok := dr.images[path]; ok {
		return img, nil
	}
	img, err := pdf.LoadImage(path)
	if err != nil {
		return nil, err
	}
	dr.images[path] = img
	return img, nil
}

// imageSize resolves the display size of an image block. A single given
// dimension keeps the aspect ratio; no dimensions means natural size at
// 72dpi capped to the content width.
func imageSize(blk *dom.Image, img *pdf.Image, maxW float64) (w, h float64) {
	natW, natH := float64(img.Width), float64(img.Height)
	w, h = blk.Width.Points(), blk.Height.Points()
	switch {
	case w > 0 && h > 0:
	case w > 0:
		h = w * natH / natW
	case h > 0:
		w = h * natW / natH
	default:
		w, h = natW, natH
		if w > maxW {
			h *= maxW / w
			w = maxW
		}
	}
	return w, h
}
