package runtimeinit

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-ocr-llm/src/config"
	"quiz-ocr-llm/src/ocr"
	"quiz-ocr-llm/src/screenshot"
)

func TestBootstrapRequiresKey(t *testing.T) {
	t.Setenv("PROVIDER", "groq")
	t.Setenv("GROQ_API_KEY", "")
	require.NoError(t, os.Unsetenv("GROQ_API_KEY"))
	t.Setenv(config.APIKeyPathEnvVar, "")
	require.NoError(t, os.Unsetenv(config.APIKeyPathEnvVar))

	_, err := Bootstrap(context.Background(), Options{})
	assert.ErrorContains(t, err, "GROQ_API_KEY")
}

func TestBootstrapVisionEngine(t *testing.T) {
	t.Setenv("PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-key-123456")
	t.Setenv("OCR_ENGINE", "vision")
	t.Setenv("CAPTURE_WINDOW", "Quiz Window")
	t.Setenv("COPY_TO_CLIPBOARD", "false")
	t.Setenv("ENABLE_FILE_LOGGING", "false")

	rt, err := Bootstrap(context.Background(), Options{WithOCR: true, WithCapture: true})
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, "anthropic", rt.LLM.Name())
	assert.IsType(t, &ocr.Vision{}, rt.OCR)
	assert.IsType(t, &screenshot.WindowCapturer{}, rt.Capturer)
	assert.NotNil(t, rt.Metrics)
}

func TestNewCapturerDefaultsToDisplay(t *testing.T) {
	assert.IsType(t, &screenshot.DisplayCapturer{}, NewCapturer(&config.Config{}))
}

func TestCloseRunsClosersInReverse(t *testing.T) {
	var order []int
	rt := &Runtime{}
	rt.addCloser(func() error { order = append(order, 1); return nil })
	rt.addCloser(nil)
	rt.addCloser(func() error { order = append(order, 2); return errors.New("two") })

	err := rt.Close()
	assert.ErrorContains(t, err, "two")
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, rt.Close())
}
