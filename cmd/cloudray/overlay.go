package main

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const captionPadding = 4

var captionFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// drawCaption writes caption in the bottom-left corner of img over a
// translucent backing box.
func drawCaption(img *image.RGBA, caption string) error {
	if caption == "" {
		return nil
	}
	parsed, err := captionFont()
	if err != nil {
		return fmt.Errorf("parse caption font: %w", err)
	}
	size := max(12, float64(img.Bounds().Dy())/24)
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("create caption face: %w", err)
	}
	defer func() {
		_ = face.Close()
	}()

	b := img.Bounds()
	m := face.Metrics()
	width := font.MeasureString(face, caption).Ceil()
	box := image.Rect(b.Min.X, b.Max.Y-m.Height.Ceil()-2*captionPadding, b.Min.X+width+2*captionPadding, b.Max.Y)
	xdraw.Draw(img, box, image.NewUniform(color.RGBA{A: 160}), image.Point{}, xdraw.Over)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(b.Min.X+captionPadding, b.Max.Y-captionPadding-m.Descent.Ceil()),
	}
	drawer.DrawString(caption)
	return nil
}

// upscale enlarges img by an integer factor with nearest-neighbor sampling
// so pixel boundaries stay visible.
func upscale(img *image.RGBA, scale int) *image.RGBA {
	if scale <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// finish applies the configured upscale and caption to a rendered frame.
func finish(cfg Config, img *image.RGBA) (*image.RGBA, error) {
	img = upscale(img, cfg.Scale)
	if err := drawCaption(img, cfg.Caption); err != nil {
		return nil, err
	}
	return img, nil
}
