package dom

// Alignment controls horizontal placement of lines within a paragraph.
type Alignment int

const (
	// AlignDefault inherits the alignment of the paragraph's style.
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignJustify
)

// Font describes character formatting. The zero value inherits every
// attribute from the enclosing style.
type Font struct {
	Name      string
	Size      Unit
	Bold      bool
	Italic    bool
	Underline bool
	Color     Color
}

// ParagraphFormat carries block-level formatting. Zero-valued fields
// inherit from the paragraph's style (booleans combine with or).
type ParagraphFormat struct {
	Font Font

	Alignment Alignment

	SpaceBefore Unit
	SpaceAfter  Unit
	LeftIndent  Unit
	RightIndent Unit

	// LineSpacing is the baseline-to-baseline distance. Zero means
	// 1.2 times the font size.
	LineSpacing Unit

	// PageBreakBefore starts the paragraph at the top of a fresh page.
	PageBreakBefore bool

	// KeepTogether keeps all lines of the paragraph on one page.
	KeepTogether bool
}

// Paragraph is a block of flowed inline content.
type Paragraph struct {
	// Style names a document style supplying the base format. An empty
	// name means the Normal style.
	Style string

	Format ParagraphFormat

	Elements []Inline
}

func (*Paragraph) block() {}

// Inline is a run-level element inside a paragraph.
type Inline interface{ inline() }

// Text is a plain run inheriting the paragraph's character format.
type Text struct {
	Content string
}

func (*Text) inline() {}

// FormattedText is a run with character format overrides. Zero-valued
// Font fields inherit from the paragraph.
type FormattedText struct {
	Content string
	Font    Font
}

func (*FormattedText) inline() {}

// LineBreak forces a line boundary without ending the paragraph.
type LineBreak struct{}

func (*LineBreak) inline() {}

// Tab advances to the next tab stop (every half inch).
type Tab struct{}

func (*Tab) inline() {}

// AddText appends a plain run and returns the paragraph for chaining.
func (p *Paragraph) AddText(text string) *Paragraph {
	p.Elements = append(p.Elements, &Text{Content: text})
	return p
}

// AddFormattedText appends a run with its own character format.
func (p *Paragraph) AddFormattedText(text string, font Font) *FormattedText {
	ft := &FormattedText{Content: text, Font: font}
	p.Elements = append(p.Elements, ft)
	return ft
}

// AddLineBreak appends a forced line break.
func (p *Paragraph) AddLineBreak() *Paragraph {
	p.Elements = append(p.Elements, &LineBreak{})
	return p
}

// AddTab appends a tab stop advance.
func (p *Paragraph) AddTab() *Paragraph {
	p.Elements = append(p.Elements, &Tab{})
	return p
}

// AddPageField appends a field rendering the current page number.
func (p *Paragraph) AddPageField() *Paragraph {
	p.Elements = append(p.Elements, &PageField{})
	return p
}

// AddNumPagesField appends a field rendering the document page count.
func (p *Paragraph) AddNumPagesField() *Paragraph {
	p.Elements = append(p.Elements, &NumPagesField{})
	return p
}

// AddDateField appends a field rendering the render timestamp. An empty
// layout uses "2006-01-02".
func (p *Paragraph) AddDateField(layout string) *Paragraph {
	p.Elements = append(p.Elements, &DateField{Layout: layout})
	return p
}

// AddInfoField appends a field rendering a document metadata value.
func (p *Paragraph) AddInfoField(name string) *Paragraph {
	p.Elements = append(p.Elements, &InfoField{Name: name})
	return p
}

// AddExpressionField appends a scripted field evaluated at render time.
func (p *Paragraph) AddExpressionField(expr string) *Paragraph {
	p.Elements = append(p.Elements, &ExpressionField{Expr: expr})
	return p
}
