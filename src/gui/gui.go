// Package gui hosts the interactive calibration window.
package gui

import (
	"context"
	"errors"
	"image"
	"math"

	"fyne.io/fyne/v2"

	"quiz-ocr-llm/src/logutil"
	"quiz-ocr-llm/src/screenshot"
)

// ErrCancelled is returned when the user presses Escape or closes the window
// before every region is drawn.
var ErrCancelled = errors.New("selection cancelled")

// DefaultMinSpan is the smallest width or height, in source pixels, a drag
// must cover to count as a selection.
const DefaultMinSpan = 5

var guiLog = logutil.Module("gui")

// Selector asks the user to draw one rectangle per name on top of snapshot.
// Returned regions are in snapshot pixels, in the order of names.
type Selector interface {
	Select(ctx context.Context, snapshot image.Image, names []string) ([]screenshot.Region, error)
}

// toSource maps a drag between a and b, in canvas units of a view of size
// view, onto the source image. It reports false for drags narrower than
// minSpan pixels on either side.
func toSource(a, b fyne.Position, view fyne.Size, src image.Rectangle, minSpan int) (screenshot.Region, bool) {
	if view.Width <= 0 || view.Height <= 0 || src.Empty() {
		return screenshot.Region{}, false
	}
	sx := float64(src.Dx()) / float64(view.Width)
	sy := float64(src.Dy()) / float64(view.Height)

	px := func(v float32, scale float64, limit int) int {
		p := int(math.Round(float64(v) * scale))
		return max(0, min(p, limit))
	}
	r := screenshot.FromCorners(
		px(a.X, sx, src.Dx()), px(a.Y, sy, src.Dy()),
		px(b.X, sx, src.Dx()), px(b.Y, sy, src.Dy()),
	)
	if r.Width < minSpan || r.Height < minSpan {
		return screenshot.Region{}, false
	}
	return r, true
}

// fromSource is the inverse of toSource, used to draw finished selections.
func fromSource(r screenshot.Region, view fyne.Size, src image.Rectangle) (fyne.Position, fyne.Size) {
	if src.Empty() {
		return fyne.Position{}, fyne.Size{}
	}
	sx := view.Width / float32(src.Dx())
	sy := view.Height / float32(src.Dy())
	return fyne.NewPos(float32(r.X)*sx, float32(r.Y)*sy),
		fyne.NewSize(float32(r.Width)*sx, float32(r.Height)*sy)
}
