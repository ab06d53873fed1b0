package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/kbinani/screenshot"
)

// Region represents a screen region to capture, relative to the origin of
// the capture source (virtual screen or window).
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FromCorners builds a Region from a drag's start and end corners in any
// order.
func FromCorners(x1, y1, x2, y2 int) Region {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return Region{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Corners returns the persisted [x1, y1, x2, y2] form.
func (r Region) Corners() [4]int {
	return [4]int{r.X, r.Y, r.X + r.Width, r.Y + r.Height}
}

func (r Region) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Capturer grabs pixels from one capture source.
type Capturer interface {
	// Snapshot returns the whole source; calibration draws on it.
	Snapshot(ctx context.Context) (image.Image, error)
	// Capture returns region of the source.
	Capture(ctx context.Context, region Region) (image.Image, error)
}

// DisplayCapturer captures from the virtual screen spanning all active
// displays. Regions are relative to the top-left of that union.
type DisplayCapturer struct{}

func NewDisplayCapturer() *DisplayCapturer { return &DisplayCapturer{} }

func (DisplayCapturer) Snapshot(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	union, err := virtualScreen()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	return img, nil
}

func (DisplayCapturer) Capture(ctx context.Context, region Region) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if region.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}
	union, err := virtualScreen()
	if err != nil {
		return nil, err
	}
	bounds := region.Rect().Add(union.Min)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// virtualScreen computes the union of all display bounds.
func virtualScreen() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// EncodePNG converts an image to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveDebug writes img to capture_<name>.png in the working directory.
func SaveDebug(name string, img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("capture_%s.png", name)
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return "", err
	}
	return filename, nil
}
