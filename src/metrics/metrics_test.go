package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Poll()
	m.Poll()
	m.QuestionDetected()
	m.Solve(OutcomeAnswered)
	m.Solve(OutcomeAnswered)
	m.Solve(OutcomeError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Polls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuestionsDetected))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Solves.WithLabelValues(OutcomeAnswered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Solves.WithLabelValues(OutcomeError)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Poll()
		m.QuestionDetected()
		m.Solve(OutcomeSkipped)
		m.ObserveOCR(time.Now())
		m.ObserveLLM(time.Now())
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveLLM(time.Now().Add(-time.Second))
	m.Poll()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "quiz_solver_polls_total 1")
	assert.Contains(t, string(body), "quiz_solver_llm_duration_seconds_count 1")
}
