// Command quizsolver reads quiz questions off the screen and asks a vision
// model for the answer.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"quiz-ocr-llm/src/config"
	"quiz-ocr-llm/src/logutil"
)

func init() {
	// The calibration window needs the main OS thread.
	runtime.LockOSThread()
}

type globalOptions struct {
	envFile    string
	apiKeyPath string
	provider   string
	model      string
	boxesFile  string
	window     string
	verbose    bool
}

func (g *globalOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		EnvPath:            g.envFile,
		APIKeyPathOverride: g.apiKeyPath,
		Provider:           g.provider,
		Model:              g.model,
		BoxesFile:          g.boxesFile,
		CaptureWindow:      g.window,
	}
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "quizsolver",
		Short:         "Answer on-screen quiz questions with OCR and a vision LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&g.envFile, "env-file", "", "Path to .env file (highest precedence)")
	f.StringVar(&g.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	f.StringVar(&g.provider, "provider", "", "LLM provider: anthropic or groq")
	f.StringVar(&g.model, "model", "", "Model name (provider default when empty)")
	f.StringVar(&g.boxesFile, "boxes", "", "Calibration file (default bounding_boxes.json)")
	f.StringVar(&g.window, "window", "", "Capture from the window with this exact title")
	f.BoolVarP(&g.verbose, "verbose", "v", false, "Debug logging")

	cmd.AddCommand(
		newCalibrateCmd(g),
		newRunCmd(g, config.ModeWatch),
		newRunCmd(g, config.ModeHotkey),
		newAskCmd(g),
		newOCRCmd(g),
	)
	return cmd
}

func setupLogging(cfg *config.Config, verbose bool) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logutil.Setup(cfg.EnableFileLogging, level)
}
