package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quiz-ocr-llm/src/boxes"
	"quiz-ocr-llm/src/config"
	"quiz-ocr-llm/src/gui"
	"quiz-ocr-llm/src/runtimeinit"
	"quiz-ocr-llm/src/screenshot"
)

func newCalibrateCmd(g *globalOptions) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Draw the quiz regions and overwrite the calibration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mode != config.ModeWatch && mode != config.ModeHotkey {
				return fmt.Errorf("unknown mode %q (want %s or %s)", mode, config.ModeWatch, config.ModeHotkey)
			}
			cfg, err := config.LoadWithOptions(g.loadOptions())
			if err != nil {
				return err
			}
			setupLogging(cfg, g.verbose)

			capturer := runtimeinit.NewCapturer(cfg)
			selectFn := selectorFunc(capturer, gui.NewSelector(), cfg.OptionCount, mode == config.ModeWatch)
			regions, err := selectFn(cmd.Context(), cfg.RegionCount(mode))
			if err != nil {
				return err
			}
			if err := boxes.Save(cfg.BoxesFile, regions); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d regions to %s\n", len(regions), cfg.BoxesFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", config.ModeWatch, "Region set to calibrate: watch or hotkey")
	return cmd
}

// selectorFunc adapts a gui.Selector to boxes.SelectFunc, prompting for the
// regions of the given mode on a fresh snapshot.
func selectorFunc(capturer screenshot.Capturer, sel gui.Selector, optionCount int, withQuestionNumber bool) boxes.SelectFunc {
	return func(ctx context.Context, n int) ([]screenshot.Region, error) {
		names := boxes.Names(optionCount, withQuestionNumber)
		if len(names) != n {
			return nil, fmt.Errorf("%w: selector has %d names for %d regions", boxes.ErrCountMismatch, len(names), n)
		}
		snap, err := capturer.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("snapshot for calibration: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Select %d regions: %v\n", n, names)
		return sel.Select(ctx, snap, names)
	}
}
