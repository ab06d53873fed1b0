// Package llm sends a text prompt plus an optional PNG image to a
// vision-capable chat model and returns the reply text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"quiz-ocr-llm/src/logutil"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGroq      = "groq"

	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.5
	DefaultTimeout     = 45 * time.Second
	DefaultMaxRetries  = 3
	DefaultRatePerSec  = 1.0

	initialRetryDelay = 1 * time.Second
)

var llmLog = logutil.Module("llm")

// Request is one single-turn question to the model.
type Request struct {
	Prompt string
	// Image is PNG-encoded; nil sends text only.
	Image     []byte
	MaxTokens int
	// Temperature is nil for DefaultTemperature; zero is sent as is.
	Temperature *float64
	TopP        float64
}

// Float returns a pointer to v, for Request.Temperature.
func Float(v float64) *float64 { return &v }

func (r Request) withDefaults() Request {
	if r.MaxTokens <= 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	if r.Temperature == nil {
		r.Temperature = Float(DefaultTemperature)
	}
	if r.TopP <= 0 {
		r.TopP = 1
	}
	return r
}

// Client is a chat-completion backend.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	// Ping validates the key without running inference.
	Ping(ctx context.Context) error
	Name() string
}

type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration

	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// RatePerSec caps outgoing completions; <= 0 disables the limit.
	RatePerSec float64
	// RetryInitialInterval overrides the first backoff delay.
	RetryInitialInterval time.Duration

	HTTPClient *http.Client
}

// StatusError is a non-200 reply from the provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether another attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// New builds the provider client wrapped with rate limiting and retries.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var inner Client
	switch cfg.Provider {
	case ProviderAnthropic, "":
		inner = newAnthropic(cfg, httpClient)
	case ProviderGroq:
		inner = newGroq(cfg, httpClient)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	rc := &retryingClient{
		next:       inner,
		maxRetries: cfg.MaxRetries,
		initial:    cfg.RetryInitialInterval,
	}
	if rc.initial <= 0 {
		rc.initial = initialRetryDelay
	}
	if cfg.RatePerSec > 0 {
		rc.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return rc, nil
}

type retryingClient struct {
	next       Client
	maxRetries int
	initial    time.Duration
	limiter    *rate.Limiter
}

func (c *retryingClient) Name() string { return c.next.Name() }

func (c *retryingClient) Ping(ctx context.Context) error { return c.next.Ping(ctx) }

func (c *retryingClient) Complete(ctx context.Context, req Request) (string, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initial
	eb.Multiplier = 1.5
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.maxRetries)), ctx)

	attempt := 0
	var reply string
	op := func() error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		text, err := c.next.Complete(ctx, req)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && !se.Retryable() {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		reply = text
		return nil
	}
	notify := func(err error, wait time.Duration) {
		llmLog.Warn().Err(err).Str("provider", c.next.Name()).Int("attempt", attempt).
			Dur("retry_in", wait).Msg("completion failed, retrying")
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if attempt > 1 {
			return "", fmt.Errorf("failed after %d attempts: %w", attempt, err)
		}
		return "", err
	}
	return reply, nil
}
