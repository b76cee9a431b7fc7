package markdown

import (
	"bytes"
	"fmt"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"

	"github.com/dankennedy/MigraDoc/dom"
	"github.com/dankennedy/MigraDoc/htmldoc"
)

// LaTeX typesets a LaTeX math expression into the section. The
// expression is converted to MathML first and flattened to a text line
// by the HTML front-end.
func LaTeX(sec *dom.Section, latex string) error {
	source := "$$" + latex + "$$"

	md := goldmark.New(
		goldmark.WithExtensions(
			treeblood.MathML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return fmt.Errorf("convert latex: %w", err)
	}
	return htmldoc.ConvertInto(sec, buf.String())
}
