package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/viewport"
)

func captionText(c viewport.Controls) string {
	return fmt.Sprintf("scale %.6g  center (%.10g, %.10g)  %d iter  %s",
		c.Scale, -c.OffsetX, -c.OffsetY, c.Iterations, c.ColorMode)
}

// withCaption returns a copy of img with text in the bottom-left corner on
// a translucent band.
func withCaption(img fractal.Image, text string) fractal.Image {
	out := fractal.Image{Width: img.Width, Height: img.Height, Pix: append([]byte(nil), img.Pix...)}
	dst := out.RGBA()

	face := basicfont.Face7x13
	band := image.Rect(0, img.Height-face.Height-6, img.Width, img.Height)
	draw.Draw(dst, band, image.NewUniform(color.RGBA{A: 160}), image.Point{}, draw.Over)

	shadow := &font.Drawer{Dst: dst, Src: image.Black, Face: face,
		Dot: fixed.P(5, img.Height-5)}
	shadow.DrawString(text)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(color.RGBA{R: 255, G: 150, B: 77, A: 255}), Face: face,
		Dot: fixed.P(4, img.Height-6)}
	d.DrawString(text)
	return out
}
