package scripting

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dop251/goja"
)

// Engine is the goja-backed Evaluator. An engine owns one JavaScript
// runtime and is not safe for concurrent use.
type Engine struct {
	vm *goja.Runtime
}

func NewEngine() *Engine {
	return &Engine{vm: goja.New()}
}

// Evaluate runs the expression with the field context installed as
// globals and returns the result as text. The context deadline interrupts
// runaway scripts.
func (e *Engine) Evaluate(ctx context.Context, expr string, fc FieldContext) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := e.bind(fc); err != nil {
		return "", err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(expr)
	if err != nil {
		if interrupted, ok := err.(*goja.InterruptedError); ok {
			if cause := interrupted.Unwrap(); cause != nil {
				return "", cause
			}
			return "", context.Canceled
		}
		return "", fmt.Errorf("evaluate %q: %w", expr, err)
	}
	return stringify(val.Export()), nil
}

func (e *Engine) bind(fc FieldContext) error {
	if err := e.vm.Set("page", fc.Page); err != nil {
		return err
	}
	if err := e.vm.Set("pages", fc.Pages); err != nil {
		return err
	}
	date := ""
	if !fc.Date.IsZero() {
		date = fc.Date.Format("2006-01-02")
	}
	if err := e.vm.Set("date", date); err != nil {
		return err
	}

	info := e.vm.NewObject()
	for _, name := range []string{"Title", "Author", "Subject", "Keywords"} {
		if err := info.Set(name, fc.Info[name]); err != nil {
			return err
		}
	}
	return e.vm.Set("info", info)
}

// stringify converts an exported goja value to field text. Integral
// numbers drop the fraction so "page+1" reads naturally.
func stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
