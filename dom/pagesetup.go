package dom

// Orientation selects how a section's page dimensions are applied.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// PageFormat names a standard paper size.
type PageFormat int

const (
	FormatA4 PageFormat = iota
	FormatA3
	FormatA5
	FormatLetter
	FormatLegal
)

// Dimensions returns the portrait width and height of the format.
func (f PageFormat) Dimensions() (w, h Unit) {
	switch f {
	case FormatA3:
		return Mm(297), Mm(420)
	case FormatA5:
		return Mm(148), Mm(210)
	case FormatLetter:
		return In(8.5), In(11)
	case FormatLegal:
		return In(8.5), In(14)
	default:
		return Mm(210), Mm(297)
	}
}

// PageSetup carries the page geometry of a section. PageWidth and
// PageHeight are the portrait-sense dimensions; Landscape orientation
// swaps them when the page is laid out.
type PageSetup struct {
	PageWidth  Unit
	PageHeight Unit

	Orientation Orientation

	TopMargin    Unit
	BottomMargin Unit
	LeftMargin   Unit
	RightMargin  Unit

	// Distance from the page edge to the header/footer baseline band.
	HeaderDistance Unit
	FooterDistance Unit
}

// DefaultPageSetup returns A4 portrait with 2.5cm margins.
func DefaultPageSetup() PageSetup {
	w, h := FormatA4.Dimensions()
	return PageSetup{
		PageWidth:      w,
		PageHeight:     h,
		TopMargin:      Cm(2.5),
		BottomMargin:   Cm(2),
		LeftMargin:     Cm(2.5),
		RightMargin:    Cm(2.5),
		HeaderDistance: Cm(1.25),
		FooterDistance: Cm(1.25),
	}
}

// SetFormat replaces the page dimensions with those of a standard format,
// leaving margins and orientation untouched.
func (ps *PageSetup) SetFormat(f PageFormat) {
	ps.PageWidth, ps.PageHeight = f.Dimensions()
}

// EffectiveWidth returns the laid-out page width after orientation.
func (ps PageSetup) EffectiveWidth() Unit {
	if ps.Orientation == Landscape {
		return ps.PageHeight
	}
	return ps.PageWidth
}

// EffectiveHeight returns the laid-out page height after orientation.
func (ps PageSetup) EffectiveHeight() Unit {
	if ps.Orientation == Landscape {
		return ps.PageWidth
	}
	return ps.PageHeight
}

// ContentWidth is the horizontal space available to body text.
func (ps PageSetup) ContentWidth() Unit {
	return ps.EffectiveWidth() - ps.LeftMargin - ps.RightMargin
}

// ContentHeight is the vertical space available to body text.
func (ps PageSetup) ContentHeight() Unit {
	return ps.EffectiveHeight() - ps.TopMargin - ps.BottomMargin
}
