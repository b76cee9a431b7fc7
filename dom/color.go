package dom

// Color is an opaque RGB color. Documents flagged with UseCMYKColor have
// their colors converted to CMYK at draw time; the model stays RGB.
type Color struct {
	R, G, B uint8
}

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
	Gray  = Color{R: 128, G: 128, B: 128}
	Red   = Color{R: 255}
	Green = Color{G: 128}
	Blue  = Color{B: 255}
)

// Normalized returns the components in the [0,1] range used by PDF
// color operators.
func (c Color) Normalized() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// CMYK converts the color using the common naive transform.
func (c Color) CMYK() (cy, m, y, k float64) {
	r, g, b := c.Normalized()
	k = 1 - max3(r, g, b)
	if k >= 1 {
		return 0, 0, 0, 1
	}
	cy = (1 - r - k) / (1 - k)
	m = (1 - g - k) / (1 - k)
	y = (1 - b - k) / (1 - k)
	return cy, m, y, k
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// IsBlack reports whether the color is the zero value. Pagination uses it
// to skip redundant color operators.
func (c Color) IsBlack() bool { return c == Black }
