package fractal

import (
	"bufio"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
)

// Image is a frame snapshot: Width x Height RGBA8 pixels in row-major
// order, len(Pix) == Width*Height*4.
//
// Image implements image.Image.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// RGBA returns an *image.RGBA view of the snapshot. The pixel slice is
// shared, not copied.
func (img Image) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    img.Pix,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// At implements the image.Image interface.
func (img Image) At(x, y int) color.Color {
	return img.RGBAAt(x, y)
}

// RGBAAt returns the color of pixel (x, y), or transparent black if out of
// bounds.
func (img Image) RGBAAt(x, y int) color.RGBA {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return color.RGBA{}
	}
	i := (y*img.Width + x) * 4
	return color.RGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: img.Pix[i+3]}
}

// Bounds implements the image.Image interface.
func (img Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// ColorModel implements the image.Image interface.
func (img Image) ColorModel() color.Model {
	return color.RGBAModel
}

// EncodePNG writes the image to w in PNG format.
func (img Image) EncodePNG(w io.Writer) error {
	return png.Encode(w, img.RGBA())
}

// SavePNG saves the image to a PNG file.
func (img Image) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if err := img.EncodePNG(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
