// Package scripting evaluates the expressions behind scripted document
// fields. Each evaluation runs with the render-time bindings (page,
// pages, date, info) installed as globals.
package scripting

import (
	"context"
	"time"
)

// FieldContext carries the bindings visible to an expression.
type FieldContext struct {
	// Page is the one-based number of the page being rendered.
	Page int
	// Pages is the total page count of the document.
	Pages int
	// Date is the render timestamp.
	Date time.Time
	// Info holds the document metadata by field name (Title, Author,
	// Subject, Keywords). Missing entries read as empty strings.
	Info map[string]string
}

// Evaluator turns an expression into the text a field renders.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, fc FieldContext) (string, error)
}
