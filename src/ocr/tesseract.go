package ocr

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"

	"quiz-ocr-llm/src/screenshot"
)

type TesseractOptions struct {
	Language string
	// PSM is the Tesseract page segmentation mode; 6 = single uniform block.
	PSM   int
	Scale float64
}

// Tesseract runs the local Tesseract engine. One client is reused across
// calls and guarded by a mutex since the C API is not goroutine safe.
type Tesseract struct {
	opts TesseractOptions

	mu     sync.Mutex
	client *gosseract.Client
}

func NewTesseract(opts TesseractOptions) (*Tesseract, error) {
	if opts.Language == "" {
		opts.Language = "eng"
	}
	if opts.PSM <= 0 {
		opts.PSM = int(gosseract.PSM_SINGLE_BLOCK)
	}
	if opts.Scale <= 0 {
		opts.Scale = 2
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(opts.Language); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract: set language %q: %w", opts.Language, err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PSM)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract: set page segmentation mode %d: %w", opts.PSM, err)
	}
	ocrLog.Info().Str("version", gosseract.Version()).Str("lang", opts.Language).Int("psm", opts.PSM).Msg("tesseract ready")
	return &Tesseract{opts: opts, client: client}, nil
}

func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := screenshot.EncodePNG(prepare(img, t.opts.Scale))
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	start := time.Now()
	if err := t.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("tesseract: set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: recognise: %w", err)
	}
	ocrLog.Debug().Dur("took", time.Since(start)).Str("text", sanitize(text)).Msg("tesseract result")
	return cleanText(text), nil
}

func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
