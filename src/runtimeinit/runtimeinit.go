// Package runtimeinit wires configuration into ready-to-use collaborators.
package runtimeinit

import (
	"context"
	"errors"
	"fmt"

	"quiz-ocr-llm/src/clipboard"
	"quiz-ocr-llm/src/config"
	"quiz-ocr-llm/src/llm"
	"quiz-ocr-llm/src/logutil"
	"quiz-ocr-llm/src/metrics"
	"quiz-ocr-llm/src/ocr"
	"quiz-ocr-llm/src/screenshot"
)

var initLog = logutil.Module("runtimeinit")

type Options struct {
	LoadOptions config.LoadOptions
	// Verbose forces debug logging regardless of LOG_LEVEL.
	Verbose bool

	// Ping validates the API key before returning.
	Ping bool
	// WithOCR builds the configured OCR engine.
	WithOCR bool
	// WithCapture builds the screen or window capturer.
	WithCapture bool
	// ServeMetrics starts the metrics endpoint when METRICS_ADDR is set.
	ServeMetrics bool
}

// Runtime holds the collaborators built from one configuration.
type Runtime struct {
	Config   *config.Config
	LLM      llm.Client
	OCR      ocr.Engine
	Capturer screenshot.Capturer
	Metrics  *metrics.Metrics

	closers []func() error
}

// Bootstrap loads configuration, sets up logging and builds the requested
// collaborators. Call Close when done.
func Bootstrap(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logutil.Setup(cfg.EnableFileLogging, level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	initLog.Info().Str("provider", cfg.Provider).Str("model", cfg.Model).
		Str("key", logutil.RedactKey(cfg.APIKey)).Msg("configuration loaded")

	client, err := NewLLM(cfg)
	if err != nil {
		return nil, err
	}
	if opts.Ping {
		if err := client.Ping(ctx); err != nil {
			return nil, fmt.Errorf("startup check failed: %w", err)
		}
		initLog.Info().Str("provider", client.Name()).Msg("LLM ping succeeded")
	}

	rt := &Runtime{Config: cfg, LLM: client, Metrics: metrics.New()}

	if opts.WithOCR {
		engine, closeFn, err := NewOCR(cfg, client)
		if err != nil {
			return nil, err
		}
		rt.OCR = engine
		rt.addCloser(closeFn)
	}
	if opts.WithCapture {
		rt.Capturer = NewCapturer(cfg)
	}
	if cfg.CopyToClipboard {
		if err := clipboard.Init(); err != nil {
			initLog.Warn().Err(err).Msg("clipboard disabled")
			cfg.CopyToClipboard = false
		}
	}
	if opts.ServeMetrics && cfg.MetricsAddr != "" {
		go func() {
			if err := rt.Metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				initLog.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server failed")
			}
		}()
	}
	return rt, nil
}

// NewLLM builds the retrying, rate-limited client for cfg.
func NewLLM(cfg *config.Config) (llm.Client, error) {
	return llm.New(llm.Config{
		Provider:   cfg.Provider,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.LLMBaseURL,
		Timeout:    cfg.LLMTimeout,
		MaxRetries: cfg.MaxRetries,
		RatePerSec: cfg.RatePerSec,
	})
}

// NewOCR builds the configured engine. The returned close func may be nil.
func NewOCR(cfg *config.Config, client llm.Client) (ocr.Engine, func() error, error) {
	switch cfg.OCREngine {
	case config.OCREngineVision:
		return ocr.NewVision(client), nil, nil
	default:
		t, err := ocr.NewTesseract(ocr.TesseractOptions{
			Language: cfg.OCRLanguage,
			PSM:      cfg.OCRPSM,
			Scale:    cfg.OCRScale,
		})
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	}
}

// NewCapturer captures from CAPTURE_WINDOW when set, else the whole desktop.
func NewCapturer(cfg *config.Config) screenshot.Capturer {
	if cfg.CaptureWindow != "" {
		initLog.Info().Str("window", cfg.CaptureWindow).Msg("capturing from window")
		return screenshot.NewWindowCapturer(cfg.CaptureWindow)
	}
	return screenshot.NewDisplayCapturer()
}

func (r *Runtime) addCloser(fn func() error) {
	if fn != nil {
		r.closers = append(r.closers, fn)
	}
}

func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	r.closers = nil
	return errors.Join(errs...)
}
