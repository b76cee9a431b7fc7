package rendering

import (
	"github.com/dankennedy/MigraDoc/dom"
	"github.com/dankennedy/MigraDoc/pdf"
)

// PageInfo describes the geometry of one formatted page. Width and
// Height are the laid-out dimensions after orientation is applied.
type PageInfo struct {
	Width       dom.Unit
	Height      dom.Unit
	Orientation dom.Orientation
}

// FormattedDocument is the result of the pagination pass: a fixed
// sequence of pages with placed content, ready to be replayed onto
// drawing surfaces. It does not change after preparation.
type FormattedDocument struct {
	pages []*formattedPage
}

// PageCount returns the number of formatted pages.
func (fd *FormattedDocument) PageCount() int { return len(fd.pages) }

// GetPageInfo returns the geometry of a page in [1, PageCount].
func (fd *FormattedDocument) GetPageInfo(page int) (PageInfo, error) {
	fp, err := fd.page(page)
	if err != nil {
		return PageInfo{}, err
	}
	return fp.info, nil
}

func (fd *FormattedDocument) page(page int) (*formattedPage, error) {
	if page < 1 || page > len(fd.pages) {
		return nil, &RangeError{Start: page, End: page, PageCount: len(fd.pages)}
	}
	return fd.pages[page-1], nil
}

type formattedPage struct {
	info   PageInfo
	lines  []placedLine
	images []placedImage
}

// run is one measured fragment of a line: a literal text run, a
// stretchable gap, or a field whose text is resolved when the page is
// drawn.
type run struct {
	text  string
	field dom.Inline
	font  dom.Font
	width float64
	space bool
}

// line is a wrapped run sequence before placement. forced marks lines
// ended by an explicit break or the paragraph end; justification leaves
// them alone.
type line struct {
	runs   []run
	width  float64
	forced bool
}

func (l *line) trimTrailingSpace() {
	for len(l.runs) > 0 && l.runs[len(l.runs)-1].space {
		l.width -= l.runs[len(l.runs)-1].width
		l.runs = l.runs[:len(l.runs)-1]
	}
}

func (l *line) spaceCount() int {
	n := 0
	for _, r := range l.runs {
		if r.space {
			n++
		}
	}
	return n
}

// placedRun is a run at its absolute horizontal position.
type placedRun struct {
	run
	x float64
}

// placedLine is a baseline with its placed runs. y is measured from the
// page top.
type placedLine struct {
	y    float64
	runs []placedRun
}

type placedImage struct {
	img        *pdf.Image
	x, y, w, h float64
}
