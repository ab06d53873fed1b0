// Package eventloop coordinates hotkey presses, question polling and solves
// on a single goroutine.
package eventloop

import (
	"context"
	"errors"
	"time"

	"quiz-ocr-llm/src/boxes"
	"quiz-ocr-llm/src/config"
	"quiz-ocr-llm/src/hotkey"
	"quiz-ocr-llm/src/logutil"
	"quiz-ocr-llm/src/metrics"
	"quiz-ocr-llm/src/question"
	"quiz-ocr-llm/src/screenshot"
	"quiz-ocr-llm/src/session"
	"quiz-ocr-llm/src/worker"
)

var loopLog = logutil.Module("eventloop")

// Solver is the part of session.Solver the loop drives.
type Solver interface {
	Solve(ctx context.Context, layout boxes.Layout, question string) (session.Result, error)
	ReadRegion(ctx context.Context, name string, region screenshot.Region) (string, error)
}

type Options struct {
	Mode         string
	Layout       boxes.Layout
	Solver       Solver
	Target       session.ResultTarget
	Metrics      *metrics.Metrics
	PollInterval time.Duration
	StableReads  int
	Deadline     time.Duration
	Workers      int
}

// Loop is the single-threaded coordinator. All fields below are owned by
// the Run goroutine.
type Loop struct {
	mode     string
	layout   boxes.Layout
	solver   Solver
	target   session.ResultTarget
	metrics  *metrics.Metrics
	tracker  *question.Tracker
	pool     *worker.Pool
	interval time.Duration
	deadline time.Duration

	busy  bool
	armed bool

	results  chan result
	hotkeyCh chan struct{}
}

type result struct {
	res      session.Result
	err      error
	question string
	cancel   context.CancelFunc
}

// New creates a loop. Watch mode needs a question-number region.
func New(opts Options) (*Loop, error) {
	if opts.Solver == nil || opts.Target == nil {
		return nil, errors.New("eventloop: solver and target are required")
	}
	if opts.Mode == "" {
		opts.Mode = config.ModeHotkey
	}
	if opts.Mode == config.ModeWatch && opts.Layout.QuestionNumber == nil {
		return nil, errors.New("eventloop: watch mode needs a question number region")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.Deadline <= 0 {
		opts.Deadline = 60 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Loop{
		mode:     opts.Mode,
		layout:   opts.Layout,
		solver:   opts.Solver,
		target:   opts.Target,
		metrics:  opts.Metrics,
		tracker:  question.NewTracker(opts.StableReads),
		pool:     worker.New(opts.Workers),
		interval: opts.PollInterval,
		deadline: opts.Deadline,
		results:  make(chan result, 1),
		hotkeyCh: make(chan struct{}, 4),
	}, nil
}

// Trigger posts a hotkey press into the loop. It never blocks; presses are
// dropped while the queue is full.
func (l *Loop) Trigger() {
	select {
	case l.hotkeyCh <- struct{}{}:
	default:
	}
}

// StartHotkey registers a global hotkey that calls Trigger.
func (l *Loop) StartHotkey(ctx context.Context, combo string) error {
	return hotkey.Listen(ctx, combo, l.Trigger)
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.pool.Close()

	var tick <-chan time.Time
	if l.mode == config.ModeWatch {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.hotkeyCh:
			l.handleHotkey(ctx)
		case <-tick:
			if l.armed && !l.busy {
				l.poll(ctx)
			}
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) handleHotkey(ctx context.Context) {
	if l.mode == config.ModeWatch {
		l.armed = !l.armed
		if l.armed {
			loopLog.Info().Msg("watching for new questions")
		} else {
			loopLog.Info().Msg("paused; press the hotkey again to resume")
		}
		return
	}
	l.startSolve(ctx, "")
}

func (l *Loop) poll(ctx context.Context) {
	l.metrics.Poll()
	text, err := l.solver.ReadRegion(ctx, "question_number", *l.layout.QuestionNumber)
	if err != nil {
		loopLog.Debug().Err(err).Msg("question number read failed")
		return
	}

	obs := l.tracker.Observe(text)
	switch {
	case !obs.Recognized:
		loopLog.Debug().Str("text", logutil.Sanitize(text)).Msg("question number format not recognized")
	case obs.Ready:
		l.metrics.QuestionDetected()
		loopLog.Info().Str("question", obs.Label.Key()).Msg("new question detected")
		l.startSolve(ctx, obs.Label.Key())
	case obs.Streak > 0:
		loopLog.Debug().Str("question", obs.Label.Key()).Int("streak", obs.Streak).Msg("question number changing")
	}
}

func (l *Loop) startSolve(ctx context.Context, label string) {
	if l.busy {
		loopLog.Info().Msg("solve already in progress, skipping")
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, l.deadline)
	layout := l.layout
	l.busy = true
	submitted := l.pool.Submit(jobCtx, func(ctx context.Context) (session.Result, error) {
		return l.solver.Solve(ctx, layout, label)
	}, func(res session.Result, err error) {
		select {
		case l.results <- result{res: res, err: err, question: label, cancel: cancel}:
		case <-ctx.Done():
			cancel()
		}
	})
	if !submitted {
		cancel()
		l.busy = false
		loopLog.Warn().Msg("worker queue full, skipping")
	}
}

func (l *Loop) handleResult(r result) {
	defer func() {
		l.busy = false
		if r.cancel != nil {
			r.cancel()
		}
	}()
	l.metrics.Solve(session.Outcome(r.res, r.err))

	if r.err != nil {
		if errors.Is(r.err, session.ErrMissingOption) {
			loopLog.Info().Str("question", r.question).Err(r.err).Msg("skipping question")
		} else {
			loopLog.Error().Str("question", r.question).Err(r.err).Msg("solve failed")
		}
		if err := l.target.OnFailure(r.question, r.err); err != nil {
			loopLog.Warn().Err(err).Msg("failure delivery error")
		}
		return
	}

	loopLog.Info().Str("question", r.question).Str("answer", logutil.Sanitize(r.res.Answer)).
		Int("option", r.res.OptionIndex).Dur("took", r.res.Took).Msg("solved")
	if err := l.target.OnSuccess(r.res); err != nil {
		loopLog.Warn().Err(err).Msg("result delivery error")
	}
}

// Deadline returns the per-solve deadline.
func (l *Loop) Deadline() time.Duration { return l.deadline }
