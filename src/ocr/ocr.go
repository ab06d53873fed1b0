// Package ocr turns captured regions into text.
package ocr

import (
	"context"
	"image"
	"strings"

	"quiz-ocr-llm/src/logutil"
)

var ocrLog = logutil.Module("ocr")

// Engine recognises the text in one image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// cleanText trims each line and drops empty ones, keeping line breaks.
func cleanText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
