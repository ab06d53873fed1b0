package ocr

import (
	"image"

	"golang.org/x/image/draw"
)

// prepare upscales img by scale and converts it to grayscale. Small UI text
// reads much better at 2x.
func prepare(img image.Image, scale float64) *image.Gray {
	b := img.Bounds()
	if scale <= 0 {
		scale = 1
	}
	w := int(float64(b.Dx())*scale + 0.5)
	h := int(float64(b.Dy())*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
