package dom

// StyleNormal is the base style every document starts from.
const StyleNormal = "Normal"

// Style is a named paragraph format. Paragraphs reference styles by name;
// zero-valued fields of a paragraph's own format inherit from its style.
type Style struct {
	Name   string
	Format ParagraphFormat
}

// Styles is the ordered set of named styles of a document.
type Styles struct {
	names  []string
	byName map[string]*Style
}

func defaultStyles() *Styles {
	s := &Styles{byName: make(map[string]*Style)}
	normal := s.Add(StyleNormal)
	normal.Format.Font = Font{Name: "Helvetica", Size: Pt(10)}
	normal.Format.SpaceAfter = Pt(6)

	for i, size := range []float64{16, 14, 12, 11, 10, 10} {
		h := s.Add(headingName(i + 1))
		h.Format.Font = Font{Name: "Helvetica", Size: Pt(size), Bold: true}
		h.Format.SpaceBefore = Pt(size * 0.8)
		h.Format.SpaceAfter = Pt(size * 0.4)
		h.Format.KeepTogether = true
	}

	code := s.Add("Code")
	code.Format.Font = Font{Name: "Courier", Size: Pt(9)}

	title := s.Add("Title")
	title.Format.Font = Font{Name: "Helvetica", Size: Pt(22), Bold: true}
	title.Format.Alignment = AlignCenter
	title.Format.SpaceAfter = Pt(14)
	return s
}

func headingName(level int) string {
	return "Heading" + string(rune('0'+level))
}

// Heading returns the style name for a heading level, clamped to [1,6].
func Heading(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return headingName(level)
}

// Add registers an empty style under the name, replacing any existing one.
func (s *Styles) Add(name string) *Style {
	st := &Style{Name: name}
	if _, exists := s.byName[name]; !exists {
		s.names = append(s.names, name)
	}
	s.byName[name] = st
	return st
}

// Get returns the named style or nil.
func (s *Styles) Get(name string) *Style {
	if s == nil {
		return nil
	}
	return s.byName[name]
}

// Names returns the style names in registration order.
func (s *Styles) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Resolve merges a paragraph's own format over its style. The style
// supplies every attribute the format leaves zero-valued; booleans
// combine with or.
func (s *Styles) Resolve(p *Paragraph) ParagraphFormat {
	base := ParagraphFormat{Font: Font{Name: "Helvetica", Size: Pt(10)}}
	name := p.Style
	if name == "" {
		name = StyleNormal
	}
	if st := s.Get(name); st != nil {
		base = st.Format
	}
	return mergeFormat(base, p.Format)
}

func mergeFormat(base, over ParagraphFormat) ParagraphFormat {
	out := base
	out.Font = MergeFont(base.Font, over.Font)
	if over.Alignment != AlignDefault {
		out.Alignment = over.Alignment
	}
	if over.SpaceBefore != 0 {
		out.SpaceBefore = over.SpaceBefore
	}
	if over.SpaceAfter != 0 {
		out.SpaceAfter = over.SpaceAfter
	}
	if over.LeftIndent != 0 {
		out.LeftIndent = over.LeftIndent
	}
	if over.RightIndent != 0 {
		out.RightIndent = over.RightIndent
	}
	if over.LineSpacing != 0 {
		out.LineSpacing = over.LineSpacing
	}
	out.PageBreakBefore = base.PageBreakBefore || over.PageBreakBefore
	out.KeepTogether = base.KeepTogether || over.KeepTogether
	return out
}

// MergeFont overlays non-zero attributes of over onto base.
func MergeFont(base, over Font) Font {
	out := base
	if over.Name != "" {
		out.Name = over.Name
	}
	if over.Size != 0 {
		out.Size = over.Size
	}
	out.Bold = base.Bold || over.Bold
	out.Italic = base.Italic || over.Italic
	out.Underline = base.Underline || over.Underline
	if over.Color != (Color{}) {
		out.Color = over.Color
	}
	return out
}
