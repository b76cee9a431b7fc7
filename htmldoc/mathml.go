package htmldoc

import (
	"strings"

	"golang.org/x/net/html"
)

// flattenMath linearizes a MathML tree into one text run. The layout is
// one-dimensional: fractions become a/b, scripts attach with ^ and _,
// roots keep the radical sign. Annotation branches (the TeX source
// carried by converters) are skipped.
func flattenMath(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	if n.Type != html.ElementNode {
		return ""
	}

	parts := mathParts(n)

	switch n.Data {
	case "mfrac":
		if len(parts) >= 2 {
			return mathGroup(parts[0]) + "/" + mathGroup(parts[1])
		}
	case "msup":
		if len(parts) >= 2 {
			return parts[0] + "^" + mathGroup(parts[1])
		}
	case "msub":
		if len(parts) >= 2 {
			return parts[0] + "_" + mathGroup(parts[1])
		}
	case "msqrt":
		return "√(" + strings.Join(parts, "") + ")"
	case "mspace":
		return " "
	}
	return strings.Join(parts, "")
}

func mathParts(n *html.Node) []string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "annotation" || c.Data == "annotation-xml") {
			continue
		}
		if s := flattenMath(c); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

// mathGroup parenthesizes multi-rune operands so a+b/2 stays readable.
func mathGroup(s string) string {
	if len([]rune(s)) <= 1 {
		return s
	}
	return "(" + s + ")"
}
