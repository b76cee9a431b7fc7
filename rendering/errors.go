package rendering

import "fmt"

// PreconditionError reports an operation invoked before the dependency it
// needs was bound or prepared.
type PreconditionError struct {
	// Op is the operation that failed.
	Op string
	// Missing names the absent dependency.
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: no %s", e.Op, e.Missing)
}

// RangeError reports a page range outside the formatted document.
type RangeError struct {
	Start, End int
	PageCount  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("page range %d..%d outside document with %d pages", e.Start, e.End, e.PageCount)
}

// ArgumentError reports a required argument that was empty or invalid.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %s: %s", e.Name, e.Reason)
}
