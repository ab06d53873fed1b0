package gui

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"quiz-ocr-llm/src/screenshot"
)

var (
	outlineColor = color.NRGBA{R: 0xff, A: 0xff}
	transparent  = color.NRGBA{}
)

// FyneSelector shows the snapshot full screen and collects one drag per
// name. It must run on the main goroutine.
type FyneSelector struct {
	MinSpan int
}

func NewSelector() *FyneSelector {
	return &FyneSelector{MinSpan: DefaultMinSpan}
}

func (s *FyneSelector) Select(ctx context.Context, snapshot image.Image, names []string) ([]screenshot.Region, error) {
	if len(names) == 0 {
		return nil, nil
	}
	a := app.New()
	w := a.NewWindow("Calibrate regions")

	prompt := widget.NewLabel("")
	setPrompt := func(i int) {
		prompt.SetText(fmt.Sprintf("Drag a box around the %s (%d/%d). Esc cancels.", names[i], i+1, len(names)))
	}
	setPrompt(0)

	layer := newSelectionLayer(snapshot.Bounds(), len(names), s.minSpan())
	layer.onSelect = func(r screenshot.Region, n int) {
		guiLog.Info().Str("region", names[n-1]).Ints("box", cornersSlice(r)).Msg("region selected")
		if n == len(names) {
			a.Quit()
			return
		}
		setPrompt(n)
	}

	img := canvas.NewImageFromImage(snapshot)
	img.FillMode = canvas.ImageFillStretch
	w.SetContent(container.NewBorder(prompt, nil, nil, nil, container.NewStack(img, layer)))
	w.SetFullScreen(true)
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			guiLog.Info().Msg("escape pressed, cancelling selection")
			a.Quit()
		}
	})

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(a.Quit)
		case <-stop:
		}
	}()

	w.ShowAndRun()

	regions := layer.Regions()
	if len(regions) < len(names) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrCancelled
	}
	return regions, nil
}

func (s *FyneSelector) minSpan() int {
	if s.MinSpan <= 0 {
		return DefaultMinSpan
	}
	return s.MinSpan
}

func cornersSlice(r screenshot.Region) []int {
	c := r.Corners()
	return c[:]
}

// selectionLayer is a transparent widget over the snapshot that turns drags
// into regions. Callbacks run on the fyne goroutine.
type selectionLayer struct {
	widget.BaseWidget

	source  image.Rectangle
	want    int
	minSpan int

	dragging   bool
	start, end fyne.Position
	active     *canvas.Rectangle
	regions    []screenshot.Region
	box        *fyne.Container

	onSelect func(r screenshot.Region, n int)
}

func newSelectionLayer(source image.Rectangle, want, minSpan int) *selectionLayer {
	l := &selectionLayer{
		source:  source,
		want:    want,
		minSpan: minSpan,
		box:     container.NewWithoutLayout(),
	}
	l.ExtendBaseWidget(l)
	return l
}

func (l *selectionLayer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(l.box)
}

func (l *selectionLayer) Dragged(ev *fyne.DragEvent) {
	if len(l.regions) >= l.want {
		return
	}
	if !l.dragging {
		l.dragging = true
		l.start = fyne.NewPos(ev.Position.X-ev.Dragged.DX, ev.Position.Y-ev.Dragged.DY)
		l.active = newOutline()
		l.box.Add(l.active)
	}
	l.end = ev.Position

	x, y := min(l.start.X, l.end.X), min(l.start.Y, l.end.Y)
	l.active.Move(fyne.NewPos(x, y))
	l.active.Resize(fyne.NewSize(abs(l.end.X-l.start.X), abs(l.end.Y-l.start.Y)))
	l.box.Refresh()
}

func (l *selectionLayer) DragEnd() {
	if !l.dragging {
		return
	}
	l.dragging = false
	r, ok := toSource(l.start, l.end, l.Size(), l.source, l.minSpan)
	if !ok {
		l.box.Remove(l.active)
		l.active = nil
		return
	}

	// Snap the outline to the pixel-mapped rectangle.
	pos, size := fromSource(r, l.Size(), l.source)
	l.active.Move(pos)
	l.active.Resize(size)
	l.active = nil
	l.box.Refresh()

	l.regions = append(l.regions, r)
	if l.onSelect != nil {
		l.onSelect(r, len(l.regions))
	}
}

func (l *selectionLayer) Regions() []screenshot.Region {
	return append([]screenshot.Region(nil), l.regions...)
}

func newOutline() *canvas.Rectangle {
	r := canvas.NewRectangle(transparent)
	r.StrokeColor = outlineColor
	r.StrokeWidth = 2
	return r
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
