// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package pool runs connection handlers on a fixed number of workers.
//
// Jobs are queued without bound and started in submission order; at most
// Cap jobs run at once. A job that never returns, such as a websocket
// pusher, holds its worker for its whole lifetime, so once Cap long-lived
// jobs are running every later job waits in the queue.
package pool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"

	"github.com/wangtaoking1/psionic/log"
	"github.com/wangtaoking1/psionic/metrics"
)

// ErrClosed is returned by Submit after Release.
var ErrClosed = errors.New("pool closed")

// Job is a unit of work. It runs to completion on one worker.
type Job func()

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger of the pool.
func WithLogger(logger log.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// Pool is a fixed-size worker pool with an unbounded FIFO queue.
type Pool struct {
	logger  log.Logger
	workers *ants.Pool

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job
	closed bool
	done   chan struct{}

	running atomic.Int32
}

// New starts a pool of size workers.
func New(size int, opts ...Option) (*Pool, error) {
	if size < 1 {
		return nil, errors.Errorf("pool size must be at least 1, got %d", size)
	}

	p := &Pool{done: make(chan struct{})}
	for _, o := range opts {
		o(p)
	}
	if p.logger == nil {
		p.logger = log.WithName("pool")
	}
	p.cond = sync.NewCond(&p.mu)

	workers, err := ants.NewPool(size,
		ants.WithPanicHandler(p.handlePanic),
		ants.WithLogger(antsLogger{p.logger}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create workers")
	}
	p.workers = workers

	go p.feed()
	p.logger.Infow("Worker pool started", "size", size)

	return p, nil
}

// Submit queues job and returns immediately.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.queue = append(p.queue, job)
	metrics.PendingJobs.Inc()
	p.cond.Signal()

	return nil
}

// Pending returns the number of queued jobs not yet handed to a worker.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.queue)
}

// Running returns the number of jobs currently executing.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// Cap returns the number of workers.
func (p *Pool) Cap() int {
	return p.workers.Cap()
}

// Release stops accepting jobs, drops the queued ones and releases the
// workers. Running jobs are not interrupted. Dropped jobs never run, so
// whatever they own must be cleaned up by the submitter.
func (p *Pool) Release() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	dropped := len(p.queue)
	metrics.PendingJobs.Sub(float64(dropped))
	p.queue = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	// unblocks a feeder waiting for a free worker
	p.workers.Release()
	<-p.done
	p.logger.Infow("Worker pool released", "dropped_jobs", dropped)
}

// feed hands queued jobs to the workers one at a time. ants blocks the
// submit while all workers are busy, which keeps the queue order.
func (p *Pool) feed() {
	defer close(p.done)

	for {
		job, ok := p.next()
		if !ok {
			return
		}
		err := p.workers.Submit(p.wrap(job))
		if errors.Is(err, ants.ErrPoolClosed) {
			return
		}
		if err != nil {
			p.logger.Errorw("Failed to start job", "error", err)
		}
	}
}

func (p *Pool) next() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return nil, false
	}

	job := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	metrics.PendingJobs.Dec()

	return job, true
}

func (p *Pool) wrap(job Job) func() {
	return func() {
		p.running.Add(1)
		defer p.running.Add(-1)
		job()
	}
}

func (p *Pool) handlePanic(v interface{}) {
	metrics.PanickedJobs.Inc()
	p.logger.Errorw("Job panicked", "panic", fmt.Sprint(v))
}

type antsLogger struct {
	logger log.Logger
}

func (l antsLogger) Printf(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}
