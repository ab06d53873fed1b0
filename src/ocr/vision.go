package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"quiz-ocr-llm/src/llm"
	"quiz-ocr-llm/src/logutil"
	"quiz-ocr-llm/src/screenshot"
)

const (
	noTextMarker = "NO_TEXT_FOUND"

	visionPrompt = "Perform OCR on this image. Return ONLY the raw extracted text with:\n" +
		"- No formatting\n" +
		"- No XML/HTML tags\n" +
		"- No markdown\n" +
		"- No explanations\n" +
		"- Preserve line breaks accurately from the visual layout.\n" +
		"If no text found, return '" + noTextMarker + "'"
)

var sanitize = logutil.Sanitize

// Vision asks the configured vision model to transcribe the image. Slower
// and billed per call, but needs no local Tesseract install.
type Vision struct {
	client llm.Client
}

func NewVision(client llm.Client) *Vision {
	return &Vision{client: client}
}

func (v *Vision) Recognize(ctx context.Context, img image.Image) (string, error) {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", err
	}
	reply, err := v.client.Complete(ctx, llm.Request{
		Prompt:      visionPrompt,
		Image:       data,
		MaxTokens:   2000,
		Temperature: llm.Float(0.1),
	})
	if err != nil {
		return "", fmt.Errorf("vision OCR: %w", err)
	}

	text := cleanText(stripFences(reply))
	if text == "" || text == noTextMarker {
		return "", nil
	}
	ocrLog.Debug().Str("engine", v.client.Name()).Str("text", sanitize(text)).Msg("vision result")
	return text, nil
}

// stripFences removes a markdown code fence some models wrap output in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
