// Package boxes persists the calibrated capture regions and assigns them
// their roles (question number, title, image, options).
package boxes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"quiz-ocr-llm/src/logutil"
	"quiz-ocr-llm/src/screenshot"
)

var boxLog = logutil.Module("boxes")

// ErrCountMismatch is returned when a stored calibration does not have the
// number of regions the current mode needs.
var ErrCountMismatch = errors.New("calibration region count mismatch")

// SelectFunc interactively collects n regions.
type SelectFunc func(ctx context.Context, n int) ([]screenshot.Region, error)

// Load reads regions stored as a JSON array of [x1, y1, x2, y2] arrays.
func Load(path string) ([]screenshot.Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw [][]int
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	regions := make([]screenshot.Region, 0, len(raw))
	for i, c := range raw {
		if len(c) != 4 {
			return nil, fmt.Errorf("parse %s: entry %d has %d coordinates, want 4", path, i, len(c))
		}
		r := screenshot.FromCorners(c[0], c[1], c[2], c[3])
		if r.Empty() {
			return nil, fmt.Errorf("parse %s: entry %d is an empty rectangle %v", path, i, c)
		}
		regions = append(regions, r)
	}
	return regions, nil
}

// Save writes regions in selection order, replacing path atomically.
func Save(path string, regions []screenshot.Region) error {
	raw := make([][4]int, len(regions))
	for i, r := range regions {
		raw[i] = r.Corners()
	}

	data, err := sonic.ConfigStd.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode regions: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadOrCreate returns the stored calibration, or runs selectFn and stores
// its result when path does not exist. created reports the latter.
func LoadOrCreate(ctx context.Context, path string, want int, selectFn SelectFunc) (regions []screenshot.Region, created bool, err error) {
	regions, err = Load(path)
	switch {
	case err == nil:
		if len(regions) != want {
			return nil, false, fmt.Errorf("%w: %s holds %d regions, this mode needs %d; run calibrate again",
				ErrCountMismatch, path, len(regions), want)
		}
		boxLog.Info().Str("path", path).Int("regions", len(regions)).Msg("loaded calibration")
		return regions, false, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, false, err
	}

	if selectFn == nil {
		return nil, false, fmt.Errorf("no calibration at %s", path)
	}
	boxLog.Info().Str("path", path).Int("regions", want).Msg("no calibration found, starting selection")

	regions, err = selectFn(ctx, want)
	if err != nil {
		return nil, false, err
	}
	if len(regions) != want {
		return nil, false, fmt.Errorf("%w: selected %d regions, need %d", ErrCountMismatch, len(regions), want)
	}
	if err := Save(path, regions); err != nil {
		return nil, false, fmt.Errorf("save calibration: %w", err)
	}
	return regions, true, nil
}
