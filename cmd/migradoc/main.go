// Command migradoc renders a Markdown or HTML file to a paginated PDF.
//
//	migradoc report.md
//	migradoc --unicode --page-size A5 --output out.pdf notes.html
//	migradoc --outline report.md
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/dankennedy/MigraDoc/dom"
	"github.com/dankennedy/MigraDoc/fonts"
	"github.com/dankennedy/MigraDoc/htmldoc"
	"github.com/dankennedy/MigraDoc/markdown"
	"github.com/dankennedy/MigraDoc/rendering"
)

const defaultWidth = 80

type options struct {
	inputPath string
	outPath   string

	title    string
	author   string
	subject  string
	keywords string
	props    []string

	unicode  bool
	embed    string
	language string
	creator  string
	workDir  string

	pageSize  string
	landscape bool
	margin    float64

	fontFiles   []string
	pageNumbers bool
	outline     bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "migradoc: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "migradoc: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("migradoc", pflag.ExitOnError)
	flags.StringVarP(&opts.outPath, "output", "o", "", "Output PDF path (default: input name with .pdf)")
	flags.StringVar(&opts.title, "title", "", "Document title metadata")
	flags.StringVar(&opts.author, "author", "", "Document author metadata")
	flags.StringVar(&opts.subject, "subject", "", "Document subject metadata")
	flags.StringVar(&opts.keywords, "keywords", "", "Document keywords metadata")
	flags.StringArrayVar(&opts.props, "property", nil, "Custom property key=value (repeatable)")
	flags.BoolVarP(&opts.unicode, "unicode", "u", false, "Unicode text encoding with embedded fonts")
	flags.StringVar(&opts.embed, "embed", "auto", "Font embedding: auto|subset|none|full")
	flags.StringVar(&opts.language, "language", "", "Document language tag (e.g. en-US)")
	flags.StringVar(&opts.creator, "creator", "", "Creator string written to the output")
	flags.StringVarP(&opts.workDir, "workdir", "C", "", "Working directory for images and the output file")
	flags.StringVar(&opts.pageSize, "page-size", "A4", "Page size: A3|A4|A5|Letter|Legal")
	flags.BoolVar(&opts.landscape, "landscape", false, "Landscape orientation")
	flags.Float64Var(&opts.margin, "margin", 0, "Page margin in points (0 keeps the defaults)")
	flags.StringArrayVar(&opts.fontFiles, "font-file", nil, "Register a TrueType font as Family=path (repeatable)")
	flags.BoolVar(&opts.pageNumbers, "page-numbers", false, "Add a Page N of M footer")
	flags.BoolVar(&opts.outline, "outline", false, "Print the parsed document outline instead of rendering")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migradoc [flags] <input.md|input.html|->")
		fmt.Fprintln(os.Stderr, "\nReads Markdown from stdin when the input is -.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return options{}, fmt.Errorf("missing input path")
	}
	opts.inputPath = flags.Arg(0)
	return opts, nil
}

func run(opts options) error {
	doc, err := loadDocument(opts.inputPath)
	if err != nil {
		return err
	}
	applyMetadata(doc, opts)
	applyPageSetup(doc, opts)
	if opts.pageNumbers {
		addPageNumbers(doc)
	}

	if opts.outline {
		printOutline(os.Stdout, doc, terminalWidth(defaultWidth))
		return nil
	}

	ropts, err := renderOptions(opts)
	if err != nil {
		return err
	}
	r, err := rendering.NewPDFDocumentRenderer(ropts...)
	if err != nil {
		return err
	}
	r.SetDocument(doc)
	r.SetCustomProperties(parseProperties(opts.props))
	if err := r.RenderDocument(); err != nil {
		return err
	}

	outPath := opts.outPath
	if outPath == "" {
		outPath = derivedOutput(opts.inputPath)
	}
	if err := r.Save(outPath); err != nil {
		return err
	}

	pages, err := r.PageCount()
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d pages)\n", outPath, pages)
	return nil
}

func loadDocument(path string) (*dom.Document, error) {
	if path == "-" {
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return markdown.Convert(source)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return markdown.Convert(source)
	case ".html", ".htm":
		return htmldoc.Convert(string(source))
	}
	return nil, fmt.Errorf("unsupported input %q (want .md or .html)", path)
}

func applyMetadata(doc *dom.Document, opts options) {
	if opts.title != "" {
		doc.EnsureInfo().Title = opts.title
	}
	if opts.author != "" {
		doc.EnsureInfo().Author = opts.author
	}
	if opts.subject != "" {
		doc.EnsureInfo().Subject = opts.subject
	}
	if opts.keywords != "" {
		doc.EnsureInfo().Keywords = opts.keywords
	}
}

func applyPageSetup(doc *dom.Document, opts options) {
	format := pageFormat(opts.pageSize)
	for _, sec := range doc.Sections {
		sec.PageSetup.SetFormat(format)
		if opts.landscape {
			sec.PageSetup.Orientation = dom.Landscape
		}
		if opts.margin > 0 {
			m := dom.Pt(opts.margin)
			sec.PageSetup.TopMargin = m
			sec.PageSetup.BottomMargin = m
			sec.PageSetup.LeftMargin = m
			sec.PageSetup.RightMargin = m
		}
	}
}

func pageFormat(name string) dom.PageFormat {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "A3":
		return dom.FormatA3
	case "A5":
		return dom.FormatA5
	case "LETTER":
		return dom.FormatLetter
	case "LEGAL":
		return dom.FormatLegal
	}
	return dom.FormatA4
}

func addPageNumbers(doc *dom.Document) {
	for _, sec := range doc.Sections {
		f := sec.AddFooter()
		f.Format.Alignment = dom.AlignCenter
		f.AddText("Page ")
		f.AddPageField()
		f.AddText(" of ")
		f.AddNumPagesField()
	}
}

func renderOptions(opts options) ([]rendering.Option, error) {
	var ropts []rendering.Option
	if opts.unicode {
		ropts = append(ropts, rendering.WithUnicode(true))
	}
	embedding, err := parseEmbedding(opts.embed)
	if err != nil {
		return nil, err
	}
	ropts = append(ropts, rendering.WithFontEmbedding(embedding))
	if opts.language != "" {
		ropts = append(ropts, rendering.WithLanguage(opts.language))
	}
	if opts.creator != "" {
		ropts = append(ropts, rendering.WithCreator(opts.creator))
	}
	if opts.workDir != "" {
		ropts = append(ropts, rendering.WithWorkingDirectory(opts.workDir))
	}
	if len(opts.fontFiles) > 0 {
		registry, err := loadFonts(opts.fontFiles)
		if err != nil {
			return nil, err
		}
		ropts = append(ropts, rendering.WithFontRegistry(registry))
	}
	return ropts, nil
}

func parseEmbedding(mode string) (fonts.Embedding, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return fonts.EmbedAutomatic, nil
	case "subset":
		return fonts.EmbedSubset, nil
	case "none":
		return fonts.EmbedNone, nil
	case "full":
		return fonts.EmbedFull, nil
	}
	return 0, fmt.Errorf("unknown embedding mode %q", mode)
}

func loadFonts(specs []string) (*fonts.Registry, error) {
	registry, err := fonts.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		family, path, ok := strings.Cut(spec, "=")
		if !ok || family == "" {
			return nil, fmt.Errorf("font spec %q is not Family=path", spec)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", family, err)
		}
		if err := registry.RegisterTrueType(family, data); err != nil {
			return nil, fmt.Errorf("font %s: %w", family, err)
		}
	}
	return registry, nil
}

func parseProperties(specs []string) []rendering.Property {
	var props []rendering.Property
	for _, spec := range specs {
		key, value, _ := strings.Cut(spec, "=")
		if key == "" {
			continue
		}
		props = append(props, rendering.Property{Key: key, Value: value})
	}
	return props
}

func derivedOutput(inputPath string) string {
	if inputPath == "-" {
		return "out.pdf"
	}
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".pdf"
}

// printOutline writes a structural preview of the parsed document,
// wrapped to the terminal width.
func printOutline(w io.Writer, doc *dom.Document, width int) {
	if doc.Info != nil && doc.Info.Title != "" {
		fmt.Fprintln(w, wordwrap.String("title: "+doc.Info.Title, width))
	}
	for i, sec := range doc.Sections {
		setup := sec.PageSetup
		fmt.Fprintf(w, "section %d: %.0fx%.0fpt %s, %d blocks\n",
			i+1, setup.EffectiveWidth().Points(), setup.EffectiveHeight().Points(),
			setup.Orientation, len(sec.Blocks))
		for _, block := range sec.Blocks {
			fmt.Fprintln(w, wordwrap.String("  "+blockLine(block), width))
		}
	}
}

func blockLine(block dom.Block) string {
	switch b := block.(type) {
	case *dom.Paragraph:
		style := b.Style
		if style == "" {
			style = dom.StyleNormal
		}
		return "[" + style + "] " + paragraphText(b)
	case *dom.PageBreak:
		return "[page break]"
	case *dom.Image:
		return "[image] " + b.Path
	}
	return "[unknown block]"
}

func paragraphText(p *dom.Paragraph) string {
	var sb strings.Builder
	for _, el := range p.Elements {
		switch e := el.(type) {
		case *dom.Text:
			sb.WriteString(e.Content)
		case *dom.FormattedText:
			sb.WriteString(e.Content)
		case *dom.LineBreak:
			sb.WriteByte(' ')
		case *dom.PageField:
			sb.WriteString("<page>")
		case *dom.NumPagesField:
			sb.WriteString("<pages>")
		case *dom.DateField:
			sb.WriteString("<date>")
		case *dom.InfoField:
			sb.WriteString("<info:" + e.Name + ">")
		case *dom.ExpressionField:
			sb.WriteString("<expr>")
		}
	}
	return sb.String()
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}
