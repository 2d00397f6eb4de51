package fractal

import (
	"fmt"
	"math"
	"strings"
)

// ColorMode selects how escape counts are turned into colors.
//
// The numeric values are part of the persisted controls format and must not
// be renumbered.
type ColorMode uint8

const (
	// GrayLight maps escape time to a light grayscale ramp.
	GrayLight ColorMode = 0

	// GrayDark maps escape time to a dark grayscale ramp.
	GrayDark ColorMode = 1

	// ColorLight interpolates a five-color palette by integer escape count.
	ColorLight ColorMode = 2

	// Color interpolates the palette by smoothed (continuous) escape count.
	Color ColorMode = 3
)

var colorModeNames = [...]string{
	GrayLight:  "gray-light",
	GrayDark:   "gray-dark",
	ColorLight: "color-light",
	Color:      "color",
}

// String returns the mode name, e.g. "gray-dark".
func (m ColorMode) String() string {
	if m.Valid() {
		return colorModeNames[m]
	}
	return fmt.Sprintf("ColorMode(%d)", uint8(m))
}

// Valid reports whether m is one of the defined modes.
func (m ColorMode) Valid() bool {
	return int(m) < len(colorModeNames)
}

// Next returns the mode after m, wrapping around.
func (m ColorMode) Next() ColorMode {
	return ColorMode((int(m) + 1) % len(colorModeNames))
}

// ParseColorMode parses a mode name as returned by String.
// Underscores and case are ignored, so "COLOR_LIGHT" is accepted.
func ParseColorMode(s string) (ColorMode, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for m, n := range colorModeNames {
		if n == name {
			return ColorMode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown color mode %q", ErrInvalidParams, s)
}

// Params describes the visible region of the complex plane and how to color
// it. Params is a value type: a render job captures a copy, so later
// changes never affect a job in flight.
type Params struct {
	// Scale is the zoom in pixels per plane unit. Must be > 0.
	Scale float64 `json:"scale"`

	// OffsetX is the plane-space horizontal offset of the view center.
	OffsetX float64 `json:"dx"`

	// OffsetY is the plane-space vertical offset of the view center.
	OffsetY float64 `json:"dy"`

	// Iterations is the escape-time iteration limit. Must be > 0.
	Iterations int `json:"iterations"`

	// ColorMode selects the color mapping.
	ColorMode ColorMode `json:"color_mode"`

	// ColorThreads tints every pixel by the index of the worker that
	// rendered it. Diagnostic only; escape times are unaffected.
	ColorThreads bool `json:"color_threads"`
}

// DefaultParams returns the initial view: the whole Mandelbrot set centered
// on a typical window.
func DefaultParams() Params {
	return Params{
		Scale:      305,
		OffsetX:    1,
		OffsetY:    0,
		Iterations: 350,
		ColorMode:  ColorLight,
	}
}

// Validate reports whether p can be rendered.
func (p Params) Validate() error {
	switch {
	case !(p.Scale > 0) || math.IsInf(p.Scale, 0):
		return fmt.Errorf("%w: scale %v must be positive and finite", ErrInvalidParams, p.Scale)
	case math.IsNaN(p.OffsetX) || math.IsInf(p.OffsetX, 0):
		return fmt.Errorf("%w: offset x %v is not finite", ErrInvalidParams, p.OffsetX)
	case math.IsNaN(p.OffsetY) || math.IsInf(p.OffsetY, 0):
		return fmt.Errorf("%w: offset y %v is not finite", ErrInvalidParams, p.OffsetY)
	case p.Iterations <= 0:
		return fmt.Errorf("%w: iterations %d must be positive", ErrInvalidParams, p.Iterations)
	case !p.ColorMode.Valid():
		return fmt.Errorf("%w: %v", ErrInvalidParams, p.ColorMode)
	}
	return nil
}

// PlanePoint returns the plane coordinate of pixel (px, py) on a
// width x height canvas.
func (p Params) PlanePoint(px, py, width, height int) (re, im float64) {
	re = (float64(px)-float64(width)/2)/p.Scale - p.OffsetX
	im = (float64(py)-float64(height)/2)/p.Scale - p.OffsetY
	return re, im
}
