package viewport

import "math"

// MinSelectArea is the smallest selection, in square pixels, that zooms.
// Anything smaller is treated as a click.
const MinSelectArea = 500

// Box is a selection rectangle in canvas pixels. The corners are the drag
// start (X0, Y0) and the current pointer (X1, Y1), in any order.
type Box struct {
	X0, Y0 float64
	X1, Y1 float64
}

// Width returns the horizontal extent of b.
func (b Box) Width() float64 {
	return math.Abs(b.X1 - b.X0)
}

// Height returns the vertical extent of b.
func (b Box) Height() float64 {
	return math.Abs(b.Y1 - b.Y0)
}

// Area returns Width() * Height().
func (b Box) Area() float64 {
	return b.Width() * b.Height()
}

// Center returns the midpoint of b.
func (b Box) Center() (x, y float64) {
	return math.Min(b.X0, b.X1) + b.Width()/2, math.Min(b.Y0, b.Y1) + b.Height()/2
}

// Min returns the top-left corner of b.
func (b Box) Min() (x, y float64) {
	return math.Min(b.X0, b.X1), math.Min(b.Y0, b.Y1)
}

// ZoomBox returns c zoomed so that b, drawn on a width x height canvas,
// fills the view. The box center becomes the view center and the scale
// grows by the dominant axis ratio, so the other axis may show more than
// was selected.
//
// A box smaller than MinSelectArea leaves c unchanged and returns false.
func ZoomBox(c Controls, b Box, width, height int) (Controls, bool) {
	if b.Area() < MinSelectArea || width <= 0 || height <= 0 {
		return c, false
	}

	mx, my := b.Center()
	dx := mx - float64(width)/2
	dy := my - float64(height)/2
	c.OffsetX += -dx / c.Scale
	c.OffsetY += -dy / c.Scale

	shrink := math.Max(b.Width()/float64(width), b.Height()/float64(height))
	c.Scale /= shrink
	return c, true
}
