package screenshot

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCornersNormalizesDragDirection(t *testing.T) {
	r := FromCorners(120, 80, 20, 30)
	assert.Equal(t, Region{X: 20, Y: 30, Width: 100, Height: 50}, r)
	assert.Equal(t, [4]int{20, 30, 120, 80}, r.Corners())
	assert.False(t, r.Empty())
	assert.True(t, FromCorners(5, 5, 5, 40).Empty())
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 200, A: 255})

	data, err := EncodePNG(img)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), decoded.Bounds())
}

func TestDisplayCapturerSnapshot(t *testing.T) {
	// Requires a display; only checks it does not panic.
	_, err := NewDisplayCapturer().Snapshot(context.Background())
	if err != nil {
		t.Logf("Failed to capture screenshot (expected in headless environment): %v", err)
	}
}

func TestDisplayCapturerCapture(t *testing.T) {
	c := NewDisplayCapturer()
	_, err := c.Capture(context.Background(), Region{})
	assert.Error(t, err, "expected error for invalid region dimensions")

	_, err = c.Capture(context.Background(), Region{X: 0, Y: 0, Width: 100, Height: 100})
	if err != nil {
		t.Logf("Failed to capture region (expected in headless environment): %v", err)
	}
}

func TestDisplayCapturerHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDisplayCapturer().Capture(ctx, Region{Width: 10, Height: 10})
	assert.ErrorIs(t, err, context.Canceled)
}
