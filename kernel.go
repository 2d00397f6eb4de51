package fractal

import (
	"image/color"
	"math"
)

// Kernel is the pluggable per-pixel compute of a render.
//
// Shader is called once per job on the coordinating goroutine; the returned
// Shader is then called concurrently by every worker and must be a pure
// function of its arguments. Determinism across thread counts depends on it.
type Kernel interface {
	Shader(p Params) Shader
}

// Shader returns the color of plane point (re, im).
type Shader func(re, im float64) color.RGBA

// KernelFunc adapts an ordinary function to the Kernel interface.
type KernelFunc func(p Params) Shader

// Shader calls f(p).
func (f KernelFunc) Shader(p Params) Shader { return f(p) }

// escapeRadiusSq is the squared divergence bound of the iteration.
const escapeRadiusSq = 4.0

// Escape iterates z = z*z + c from z = 0 for c = re + im*i.
//
// It returns the escape time n, counted from 1, at which |z|^2 first
// exceeded 4, together with that |z|^2. Points that have not escaped after
// limit iterations return n == limit; an escape on the very last iteration
// is indistinguishable from not escaping.
func Escape(re, im float64, limit int) (n int, magSq float64) {
	var x, y float64
	for n = 1; n <= limit; n++ {
		x, y = x*x-y*y+re, 2*x*y+im
		magSq = x*x + y*y
		if magSq > escapeRadiusSq {
			return n, magSq
		}
	}
	return limit, magSq
}

// Smooth returns the continuous escape time for an escaped point, removing
// the banding of integer counts. The result is clamped to [0, limit].
func Smooth(n int, magSq float64, limit int) float64 {
	mu := float64(n) - math.Log2(math.Log2(math.Sqrt(magSq)))
	return math.Max(0, math.Min(mu, float64(limit)))
}

// palette is the gradient used by the color modes, from deep indigo through
// green, yellow and orange to red.
var palette = [...]color.RGBA{
	{R: 10, G: 10, B: 60, A: 255},
	{R: 20, G: 200, B: 20, A: 255},
	{R: 200, G: 200, B: 20, A: 255},
	{R: 255, G: 165, B: 20, A: 255},
	{R: 255, G: 20, B: 20, A: 255},
}

// paletteAt interpolates the palette at position t in [0, len(palette)).
func paletteAt(t float64) color.RGBA {
	n := len(palette)
	idx := int(math.Floor(t))
	idx = max(0, min(idx, n-1))
	c1 := palette[idx]
	c2 := palette[(idx+1)%n]
	ratio := t - math.Floor(t)

	lerp := func(a, b uint8) uint8 {
		v := math.Floor((float64(b)-float64(a))*ratio + float64(a))
		return uint8(math.Max(0, math.Min(v, 255)))
	}
	return color.RGBA{R: lerp(c1.R, c2.R), G: lerp(c1.G, c2.G), B: lerp(c1.B, c2.B), A: 255}
}

func gray(v float64) color.RGBA {
	g := uint8(math.Max(0, math.Min(v, 255)))
	return color.RGBA{R: g, G: g, B: g, A: 255}
}

var black = color.RGBA{A: 255}

// Mandelbrot is the default Kernel: escape-time iteration of z*z + c,
// colored by escape count according to Params.ColorMode.
type Mandelbrot struct{}

// Shader implements Kernel.
func (Mandelbrot) Shader(p Params) Shader {
	limit := p.Iterations
	scale := 255 / float64(limit)

	switch p.ColorMode {
	case GrayLight:
		return func(re, im float64) color.RGBA {
			n, magSq := Escape(re, im, limit)
			if n >= limit {
				return black
			}
			return gray(255 - Smooth(n, magSq, limit)*scale)
		}

	case GrayDark:
		return func(re, im float64) color.RGBA {
			n, magSq := Escape(re, im, limit)
			if n >= limit {
				return black
			}
			return gray(Smooth(n, magSq, limit) * scale)
		}

	case Color:
		span := float64(len(palette)) / float64(limit)
		return func(re, im float64) color.RGBA {
			n, magSq := Escape(re, im, limit)
			if n >= limit {
				return black
			}
			return paletteAt(Smooth(n, magSq, limit) * span)
		}

	default:
		// Banded by integer escape count; interior points take the first
		// palette entry.
		inside := paletteAt(0)
		span := float64(len(palette)) / float64(limit)
		return func(re, im float64) color.RGBA {
			n, _ := Escape(re, im, limit)
			if n >= limit {
				return inside
			}
			return paletteAt(float64(n) * span)
		}
	}
}

// threadTint is the per-channel lift applied for ColorThreads.
const threadTint = 50

// tint lifts the channels selected by the low three bits of worker, so that
// adjacent stripes render in distinguishable hues.
func tint(c color.RGBA, worker int) color.RGBA {
	lift := func(v uint8, on bool) uint8 {
		if !on {
			return v
		}
		return uint8(min(int(v)+threadTint, 255))
	}
	c.R = lift(c.R, worker&1 != 0)
	c.G = lift(c.G, worker&2 != 0)
	c.B = lift(c.B, worker&4 != 0)
	return c
}
