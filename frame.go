package clouds

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Frame is a render target: float32 RGBA color with no range clamping (like
// an Rgba32Float attachment) and a float32 depth buffer.
type Frame struct {
	width  int
	height int
	color  []float32 // RGBA, 4 floats per pixel
	depth  []float32
}

// NewFrame creates a frame with black transparent color and depth cleared
// to the far plane (1.0).
func NewFrame(width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	f := &Frame{
		width:  width,
		height: height,
		color:  make([]float32, width*height*4),
		depth:  make([]float32, width*height),
	}
	f.ClearDepth(1)
	return f, nil
}

// Width returns the width of the frame.
func (f *Frame) Width() int {
	return f.width
}

// Height returns the height of the frame.
func (f *Frame) Height() int {
	return f.height
}

// Clear fills the color buffer with c.
func (f *Frame) Clear(c Vec4) {
	for i := 0; i < len(f.color); i += 4 {
		f.color[i+0] = c.X
		f.color[i+1] = c.Y
		f.color[i+2] = c.Z
		f.color[i+3] = c.W
	}
}

// ClearDepth fills the depth buffer with d.
func (f *Frame) ClearDepth(d float32) {
	for i := range f.depth {
		f.depth[i] = d
	}
}

// Pixel returns the stored color at (x, y), or the zero vector outside the frame.
func (f *Frame) Pixel(x, y int) Vec4 {
	if !f.inBounds(x, y) {
		return Vec4{}
	}
	i := (y*f.width + x) * 4
	return Vec4{X: f.color[i], Y: f.color[i+1], Z: f.color[i+2], W: f.color[i+3]}
}

// Depth returns the stored depth at (x, y), or 1 outside the frame.
func (f *Frame) Depth(x, y int) float32 {
	if !f.inBounds(x, y) {
		return 1
	}
	return f.depth[y*f.width+x]
}

// SetDepth stores depth d at (x, y). Hosts use it to stand in for opaque
// geometry drawn before the pass.
func (f *Frame) SetDepth(x, y int, d float32) {
	if f.inBounds(x, y) {
		f.depth[y*f.width+x] = d
	}
}

func (f *Frame) inBounds(x, y int) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height
}

// ToImage converts the frame to 8-bit RGBA the way a unorm color attachment
// stores it: each channel is clamped to [0, 1] and NaN stores as 0.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for i, v := range f.color {
		img.Pix[i] = unorm8(v)
	}
	return img
}

// SavePNG writes ToImage to path.
func (f *Frame) SavePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, f.ToImage()); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// At implements image.Image.
func (f *Frame) At(x, y int) color.Color {
	c := f.Pixel(x, y)
	return color.RGBA{R: unorm8(c.X), G: unorm8(c.Y), B: unorm8(c.Z), A: unorm8(c.W)}
}

// Bounds implements image.Image.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

// ColorModel implements image.Image.
func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

func unorm8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
