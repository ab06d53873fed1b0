package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-ocr-llm/src/llm"
)

type fakeLLM struct {
	reply string
	err   error
	got   llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.got = req
	return f.reply, f.err
}

func (f *fakeLLM) Ping(context.Context) error { return nil }
func (f *fakeLLM) Name() string               { return "fake" }

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	return img
}

func TestPrepareScalesAndGrays(t *testing.T) {
	out := prepare(solid(10, 4), 2)
	assert.Equal(t, image.Rect(0, 0, 20, 8), out.Bounds())

	same := prepare(solid(7, 3), 1)
	assert.Equal(t, image.Rect(0, 0, 7, 3), same.Bounds())
	// Pure red maps to a mid-dark gray, not black or white.
	v := same.GrayAt(3, 1).Y
	assert.Greater(t, v, uint8(0))
	assert.Less(t, v, uint8(255))
}

func TestPrepareOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(100, 50, 110, 55))
	out := prepare(src, 3)
	assert.Equal(t, image.Rect(0, 0, 30, 15), out.Bounds())
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Q1 of 10\nWhich planet?", cleanText("  Q1 of 10 \r\n\n Which planet?\n\n"))
	assert.Equal(t, "", cleanText(" \n\t\n"))
}

func TestVisionRecognize(t *testing.T) {
	f := &fakeLLM{reply: "```\nParis\n```"}
	text, err := NewVision(f).Recognize(context.Background(), solid(4, 4))
	require.NoError(t, err)
	assert.Equal(t, "Paris", text)
	assert.Equal(t, visionPrompt, f.got.Prompt)
	assert.NotEmpty(t, f.got.Image)
	assert.Equal(t, 2000, f.got.MaxTokens)
}

func TestVisionNoText(t *testing.T) {
	text, err := NewVision(&fakeLLM{reply: "NO_TEXT_FOUND"}).Recognize(context.Background(), solid(2, 2))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestVisionError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewVision(&fakeLLM{err: boom}).Recognize(context.Background(), solid(2, 2))
	assert.ErrorIs(t, err, boom)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "plain", stripFences("  plain "))
	assert.Equal(t, "a\nb", stripFences("```text\na\nb\n```"))
}
