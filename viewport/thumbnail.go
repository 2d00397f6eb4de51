package viewport

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// DefaultThumbnailFactor is the downsampling factor of history thumbnails.
const DefaultThumbnailFactor = 5

// Thumbnail returns img shrunk by factor on both axes and tinted so that
// history entries stand apart from the live frame. The result has
// floor(w/factor) x floor(h/factor) pixels; a factor below 1 is treated as
// DefaultThumbnailFactor. It returns nil if the result would be empty.
func Thumbnail(img image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = DefaultThumbnailFactor
	}
	src := img.Bounds()
	w, h := src.Dx()/factor, src.Dy()/factor
	if w == 0 || h == 0 {
		return nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)

	for i := 0; i < len(dst.Pix); i += 4 {
		c := historyTint(color.RGBA{R: dst.Pix[i], G: dst.Pix[i+1], B: dst.Pix[i+2], A: dst.Pix[i+3]})
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = c.R, c.G, c.B
	}
	return dst
}

// historyTint shifts c toward cyan: +10 red, x1.1 green, +30 blue, each
// saturating at 255. Alpha is unchanged.
func historyTint(c color.RGBA) color.RGBA {
	clamp := func(v float64) uint8 {
		return uint8(math.Max(0, math.Min(math.Round(v), 255)))
	}
	c.R = clamp(float64(c.R) + 10)
	c.G = clamp(float64(c.G) * 1.1)
	c.B = clamp(float64(c.B) + 30)
	return c
}
