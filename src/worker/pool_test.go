package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-ocr-llm/src/session"
)

func TestSubmitRunsJob(t *testing.T) {
	p := New(1)
	defer p.Close()

	done := make(chan session.Result, 1)
	ok := p.Submit(context.Background(), func(context.Context) (session.Result, error) {
		return session.Result{Answer: "Paris"}, nil
	}, func(res session.Result, err error) {
		assert.NoError(t, err)
		done <- res
	})
	require.True(t, ok)

	select {
	case res := <-done:
		assert.Equal(t, "Paris", res.Answer)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
	}
}

func TestSubmitBackPressure(t *testing.T) {
	p := New(1)
	defer p.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	blocking := func(context.Context) (session.Result, error) {
		close(started)
		<-release
		return session.Result{}, nil
	}
	noop := func(context.Context) (session.Result, error) { return session.Result{}, nil }

	require.True(t, p.Submit(context.Background(), blocking, nil))
	<-started
	// Worker busy; the single queue slot takes one more, then submissions drop.
	assert.True(t, p.Submit(context.Background(), noop, nil))
	assert.False(t, p.Submit(context.Background(), noop, nil))
	close(release)
}

func TestCancelledContextSkipsJob(t *testing.T) {
	p := New(1)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errCh := make(chan error, 1)
	ran := false
	p.Submit(ctx, func(context.Context) (session.Result, error) {
		ran = true
		return session.Result{}, nil
	}, func(_ session.Result, err error) { errCh <- err })

	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.False(t, ran)
}

func TestPanicBecomesError(t *testing.T) {
	p := New(1)
	defer p.Close()

	errCh := make(chan error, 1)
	p.Submit(context.Background(), func(context.Context) (session.Result, error) {
		panic("boom")
	}, func(_ session.Result, err error) { errCh <- err })

	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestCloseIsIdempotent(t *testing.T) {
	p := New(2)
	p.Close()
	assert.NotPanics(t, p.Close)
}
