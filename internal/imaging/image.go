// Package imaging provides the raster image type shared across the capture
// pipeline plus the per-snapshot post-processing applied before atlas packing.
package imaging

import (
	"image"
	"image/color"
)

// Image is a tightly packed RGBA8 pixel buffer, row-major, origin top-left.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a transparent-black image of the given size.
func New(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	if m == nil {
		return nil
	}
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Image{Width: m.Width, Height: m.Height, Pix: pix}
}

// Empty reports whether the image is nil or has no pixels.
func (m *Image) Empty() bool {
	return m == nil || m.Width <= 0 || m.Height <= 0
}

// At returns the RGBA value at (x, y). Out-of-bounds reads return zero.
func (m *Image) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return color.RGBA{}
	}
	i := (y*m.Width + x) * 4
	return color.RGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: m.Pix[i+3]}
}

// Set writes the RGBA value at (x, y). Out-of-bounds writes are ignored.
func (m *Image) Set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	i := (y*m.Width + x) * 4
	m.Pix[i] = c.R
	m.Pix[i+1] = c.G
	m.Pix[i+2] = c.B
	m.Pix[i+3] = c.A
}

// ToRGBA wraps the pixel buffer as a stdlib image without copying.
func (m *Image) ToRGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    m.Pix,
		Stride: m.Width * 4,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// FromRGBA wraps a stdlib RGBA image, copying only if the source has
// row padding.
func FromRGBA(src *image.RGBA) *Image {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	if src.Stride == w*4 && src.Rect.Min == (image.Point{}) {
		return &Image{Width: w, Height: h, Pix: src.Pix[:w*h*4]}
	}

	dst := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(src.Rect.Min.X+x, src.Rect.Min.Y+y)
			j := (y*w + x) * 4
			copy(dst.Pix[j:j+4], src.Pix[i:i+4])
		}
	}
	return dst
}
