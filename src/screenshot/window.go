package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/go-vgo/robotgo"

	"quiz-ocr-llm/src/logutil"
)

var ErrWindowNotFound = errors.New("window not found")

var winLog = logutil.Module("screenshot")

// windowBackend isolates the platform calls so the capturer logic can be
// exercised without a desktop session.
type windowBackend interface {
	FindByTitle(title string) (int, error)
	Bounds(pid int) image.Rectangle
	CaptureRect(r image.Rectangle) (image.Image, error)
}

// WindowCapturer captures from the window whose title equals Title.
// Regions are relative to the window's top-left corner.
type WindowCapturer struct {
	Title string

	backend windowBackend
	mu      sync.Mutex
	pid     int
}

func NewWindowCapturer(title string) *WindowCapturer {
	return &WindowCapturer{Title: title, backend: robotgoBackend{}}
}

func (w *WindowCapturer) Snapshot(ctx context.Context) (image.Image, error) {
	bounds, err := w.windowBounds(ctx)
	if err != nil {
		return nil, err
	}
	return w.backend.CaptureRect(bounds)
}

func (w *WindowCapturer) Capture(ctx context.Context, region Region) (image.Image, error) {
	if region.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}
	bounds, err := w.windowBounds(ctx)
	if err != nil {
		return nil, err
	}
	target := region.Rect().Add(bounds.Min).Intersect(bounds)
	if target.Empty() {
		return nil, fmt.Errorf("region %v lies outside window %q (%dx%d)", region.Corners(), w.Title, bounds.Dx(), bounds.Dy())
	}
	return w.backend.CaptureRect(target)
}

// windowBounds resolves the window lazily and once more if the cached one
// has vanished (zero-sized bounds).
func (w *WindowCapturer) windowBounds(ctx context.Context) (image.Rectangle, error) {
	if err := ctx.Err(); err != nil {
		return image.Rectangle{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pid != 0 {
		if b := w.backend.Bounds(w.pid); !b.Empty() {
			return b, nil
		}
		winLog.Debug().Int("pid", w.pid).Str("title", w.Title).Msg("cached window gone, resolving again")
		w.pid = 0
	}

	pid, err := w.backend.FindByTitle(w.Title)
	if err != nil {
		return image.Rectangle{}, err
	}
	b := w.backend.Bounds(pid)
	if b.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: %s (no visible bounds)", ErrWindowNotFound, w.Title)
	}
	w.pid = pid
	winLog.Info().Int("pid", pid).Str("title", w.Title).Str("bounds", b.String()).Msg("window resolved")
	return b, nil
}

type robotgoBackend struct{}

func (robotgoBackend) FindByTitle(title string) (int, error) {
	procs, err := robotgo.Process()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}
	for _, p := range procs {
		if robotgo.GetTitle(p.Pid) == title {
			return p.Pid, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrWindowNotFound, title)
}

func (robotgoBackend) Bounds(pid int) image.Rectangle {
	x, y, width, height := robotgo.GetBounds(pid)
	return image.Rect(x, y, x+width, y+height)
}

func (robotgoBackend) CaptureRect(r image.Rectangle) (image.Image, error) {
	img, err := robotgo.CaptureImg(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	if err != nil {
		return nil, fmt.Errorf("failed to capture window region: %w", err)
	}
	return img, nil
}
