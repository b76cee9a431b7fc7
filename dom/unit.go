package dom

import "fmt"

// Unit is a length measured in typographic points (1/72 inch). All page
// geometry and spacing in the document model is denominated in Unit so
// callers can mix measurement systems freely.
type Unit float64

const (
	pointsPerInch       = 72
	pointsPerCentimeter = 72 / 2.54
	pointsPerMillimeter = 72 / 25.4
)

func Pt(v float64) Unit { return Unit(v) }
func In(v float64) Unit { return Unit(v * pointsPerInch) }
func Cm(v float64) Unit { return Unit(v * pointsPerCentimeter) }
func Mm(v float64) Unit { return Unit(v * pointsPerMillimeter) }

// Points returns the value in points.
func (u Unit) Points() float64 { return float64(u) }

func (u Unit) Inches() float64      { return float64(u) / pointsPerInch }
func (u Unit) Centimeters() float64 { return float64(u) / pointsPerCentimeter }
func (u Unit) Millimeters() float64 { return float64(u) / pointsPerMillimeter }

func (u Unit) String() string { return fmt.Sprintf("%gpt", float64(u)) }
