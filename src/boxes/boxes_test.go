package boxes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-ocr-llm/src/screenshot"
)

func sampleRegions(n int) []screenshot.Region {
	out := make([]screenshot.Region, n)
	for i := range out {
		out[i] = screenshot.Region{X: i * 10, Y: i * 20, Width: 100 + i, Height: 30}
	}
	return out
}

func TestLoadReadsOriginalFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounding_boxes.json")
	// Reversed drag in the second entry.
	require.NoError(t, os.WriteFile(path, []byte(`[[10, 20, 110, 60], [300, 400, 200, 350]]`), 0o600))

	regions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, screenshot.Region{X: 10, Y: 20, Width: 100, Height: 40}, regions[0])
	assert.Equal(t, screenshot.Region{X: 200, Y: 350, Width: 100, Height: 50}, regions[1])
}

func TestLoadRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"short.json":  `[[1, 2, 3]]`,
		"empty.json":  `[[5, 5, 5, 50]]`,
		"broken.json": `{not json`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxes.json")
	want := sampleRegions(7)
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadOrCreateRunsSelectorOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxes.json")
	calls := 0
	selectFn := func(ctx context.Context, n int) ([]screenshot.Region, error) {
		calls++
		return sampleRegions(n), nil
	}

	regions, created, err := LoadOrCreate(context.Background(), path, 6, selectFn)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, regions, 6)

	regions, created, err = LoadOrCreate(context.Background(), path, 6, selectFn)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, regions, 6)
	assert.Equal(t, 1, calls)
}

func TestLoadOrCreateCountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxes.json")
	require.NoError(t, Save(path, sampleRegions(6)))

	_, _, err := LoadOrCreate(context.Background(), path, 7, nil)
	assert.ErrorIs(t, err, ErrCountMismatch)
}

func TestLoadOrCreateSelectorError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxes.json")
	boom := errors.New("cancelled")
	_, _, err := LoadOrCreate(context.Background(), path, 6, func(context.Context, int) ([]screenshot.Region, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing should be written on failure")
}

func TestAssign(t *testing.T) {
	regions := sampleRegions(7)

	watch, err := Assign(regions, true)
	require.NoError(t, err)
	require.NotNil(t, watch.QuestionNumber)
	assert.Equal(t, regions[0], *watch.QuestionNumber)
	assert.Equal(t, regions[1], watch.Title)
	assert.Equal(t, regions[2], watch.Image)
	assert.Equal(t, regions[3:], watch.Options)

	hot, err := Assign(regions[:6], false)
	require.NoError(t, err)
	assert.Nil(t, hot.QuestionNumber)
	assert.Equal(t, regions[0], hot.Title)
	assert.Len(t, hot.Options, 4)

	_, err = Assign(regions[:3], true)
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t,
		[]string{"question number", "title", "image", "option 1", "option 2"},
		Names(2, true))
	assert.Equal(t, []string{"title", "image", "option 1"}, Names(1, false))
}
