package fractal

import (
	"encoding/binary"
	"image/color"
	"sync/atomic"
)

// FrameBuffer is the shared RGBA8 arena of a scene.
//
// Each pixel is stored as one packed 32-bit word (R in the low byte), so a
// reader never observes a torn pixel even while workers are writing.
// Write ownership is partitioned by stripe; reads are unsynchronized with
// respect to writes and may observe a partially rendered frame.
type FrameBuffer struct {
	width  int
	height int
	pixels []atomic.Uint32
}

// NewFrameBuffer creates a zeroed (transparent black) buffer.
func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{
		width:  width,
		height: height,
		pixels: make([]atomic.Uint32, width*height),
	}
}

// Width returns the width of the buffer.
func (fb *FrameBuffer) Width() int {
	return fb.width
}

// Height returns the height of the buffer.
func (fb *FrameBuffer) Height() int {
	return fb.height
}

// Len returns the size of the buffer in bytes.
func (fb *FrameBuffer) Len() int {
	return len(fb.pixels) * 4
}

func pack(c color.RGBA) uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

func unpack(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: uint8(v >> 24)}
}

// Set stores the color of pixel (x, y). Out-of-bounds writes are ignored.
func (fb *FrameBuffer) Set(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return
	}
	fb.pixels[y*fb.width+x].Store(pack(c))
}

// Get returns the color of pixel (x, y), or transparent black if out of
// bounds.
func (fb *FrameBuffer) Get(x, y int) color.RGBA {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return color.RGBA{}
	}
	return unpack(fb.pixels[y*fb.width+x].Load())
}

// setIndex stores pixel i in row-major order without bounds translation.
func (fb *FrameBuffer) setIndex(i int, c color.RGBA) {
	fb.pixels[i].Store(pack(c))
}

// CopyTo copies the current contents into dst as RGBA8 bytes and returns
// the number of bytes written, which is min(len(dst), Len()) rounded down
// to whole pixels. It never blocks.
func (fb *FrameBuffer) CopyTo(dst []byte) int {
	n := min(len(dst)/4, len(fb.pixels))
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:], fb.pixels[i].Load())
	}
	return n * 4
}

// Snapshot returns a copy of the current contents.
func (fb *FrameBuffer) Snapshot() Image {
	img := Image{
		Width:  fb.width,
		Height: fb.height,
		Pix:    make([]byte, fb.Len()),
	}
	fb.CopyTo(img.Pix)
	return img
}
