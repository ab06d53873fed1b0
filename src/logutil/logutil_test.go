package logutil

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestModuleLoggerFollowsSetOutput(t *testing.T) {
	// Created before the output switch, like package-level loggers.
	l := Module("test")

	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"module":"test"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("chatty"))
}

func TestRedactKey(t *testing.T) {
	assert.Equal(t, "********", RedactKey("short"))
	assert.Equal(t, "sk-a...wxyz", RedactKey("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, `Q1 of 10\nWhat?`, Sanitize("Q1 of 10\nWhat?"))
	assert.Equal(t, `a\tb?c`, Sanitize("a\tb\x07c"))

	long := strings.Repeat("x", 150)
	got := Sanitize(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, got, 103)
}
