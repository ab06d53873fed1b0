package main

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"quiz-ocr-llm/src/runtimeinit"
)

// OCRResult is the --json output of the ocr command.
type OCRResult struct {
	Text      string  `json:"text"`
	Source    string  `json:"source"`
	Engine    string  `json:"engine"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func newOCRCmd(g *globalOptions) *cobra.Command {
	var (
		imagePath  string
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "ocr",
		Short: "Run the configured OCR engine on a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readPNG(imagePath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("decode PNG: %w", err)
			}

			rt, err := runtimeinit.Bootstrap(cmd.Context(), runtimeinit.Options{
				LoadOptions: g.loadOptions(),
				Verbose:     g.verbose,
				WithOCR:     true,
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			start := time.Now()
			text, err := rt.OCR.Recognize(cmd.Context(), img)
			if err != nil {
				return fmt.Errorf("OCR failed: %w", err)
			}
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			if !jsonOutput {
				_, err = fmt.Fprintln(out, text)
				return err
			}
			data, err = sonic.ConfigStd.MarshalIndent(OCRResult{
				Text:      text,
				Source:    imagePath,
				Engine:    rt.Config.OCREngine,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Duration:  elapsed.Seconds(),
				CharCount: len([]rune(text)),
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode JSON output: %w", err)
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}
