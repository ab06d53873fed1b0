// Package worker runs solve jobs off the event loop goroutine.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"quiz-ocr-llm/src/logutil"
	"quiz-ocr-llm/src/session"
)

var workerLog = logutil.Module("worker")

// Job is one unit of work; it must honour ctx.
type Job func(ctx context.Context) (session.Result, error)

// ResultCallback is invoked on job completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(res session.Result, err error)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan task
	wg   sync.WaitGroup
	once sync.Once
}

type task struct {
	ctx context.Context
	run Job
	cb  ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan task, 1)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.work(i)
	}
	return p
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for t := range p.jobs {
		res, err := runSafely(t)
		workerLog.Debug().Int("worker", id).Err(err).Msg("job finished")
		if t.cb != nil {
			t.cb(res, err)
		}
	}
}

func runSafely(t task) (res session.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	if err := t.ctx.Err(); err != nil {
		return session.Result{}, err
	}
	return t.run(t.ctx)
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, job Job, cb ResultCallback) bool {
	select {
	case p.jobs <- task{ctx: ctx, run: job, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}
