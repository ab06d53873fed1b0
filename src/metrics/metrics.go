// Package metrics exposes solver counters and latencies to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quiz-ocr-llm/src/logutil"
)

const namespace = "quiz_solver"

// Outcome labels for Solves.
const (
	OutcomeAnswered  = "answered"
	OutcomeUnmatched = "unmatched"
	OutcomeNoAnswer  = "no_answer"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
)

var metricsLog = logutil.Module("metrics")

// Metrics groups the collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Polls             prometheus.Counter
	QuestionsDetected prometheus.Counter
	Solves            *prometheus.CounterVec
	OCRSeconds        prometheus.Histogram
	LLMSeconds        prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Question-number region reads.",
		}),
		QuestionsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_detected_total",
			Help:      "Stable question-number changes that triggered a solve.",
		}),
		Solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Finished solves by outcome.",
		}, []string{"outcome"}),
		OCRSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ocr_duration_seconds",
			Help:      "Latency of one OCR call.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		LLMSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_duration_seconds",
			Help:      "Latency of one completion including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9),
		}),
	}
	m.Registry.MustRegister(m.Polls, m.QuestionsDetected, m.Solves, m.OCRSeconds, m.LLMSeconds)
	return m
}

// ObserveOCR records the time since start. Safe on a nil receiver.
func (m *Metrics) ObserveOCR(start time.Time) {
	if m != nil {
		m.OCRSeconds.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveLLM(start time.Time) {
	if m != nil {
		m.LLMSeconds.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Poll() {
	if m != nil {
		m.Polls.Inc()
	}
}

func (m *Metrics) QuestionDetected() {
	if m != nil {
		m.QuestionsDetected.Inc()
	}
}

func (m *Metrics) Solve(outcome string) {
	if m != nil {
		m.Solves.WithLabelValues(outcome).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	metricsLog.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
