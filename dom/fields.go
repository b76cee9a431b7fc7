package dom

// Fields are inline runs whose text is only known at render time. The
// paginator measures them with placeholder widths and resolves the final
// text when a page is drawn.

// PageField renders the one-based number of the page it appears on.
type PageField struct{}

func (*PageField) inline() {}

// NumPagesField renders the total page count of the document.
type NumPagesField struct{}

func (*NumPagesField) inline() {}

// DateField renders the render timestamp using a Go time layout.
type DateField struct {
	// Layout is a time.Format layout. Empty means "2006-01-02".
	Layout string
}

func (*DateField) inline() {}

// InfoField renders a document metadata value by name (Title, Author,
// Subject or Keywords). Missing values render as empty text.
type InfoField struct {
	Name string
}

func (*InfoField) inline() {}

// ExpressionField renders the result of a scripted expression. The
// expression sees the bindings page, pages, date and info at evaluation
// time; evaluation failures render as empty text.
type ExpressionField struct {
	Expr string
}

func (*ExpressionField) inline() {}
