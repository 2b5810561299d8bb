// Copyright (c) 2026 Ersel Seyit. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import (
	"fmt"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

const (
	poolRunning int32 = iota
	poolDraining
	poolStopped
)

// Pool is a fixed-size worker pool pulling work units from a shared
// [Queue].
//
// Lifecycle: construct with [NewPool], submit with [Submit], drain with
// [Pool.Wait], shut down with [Pool.Close]. Once Close begins, Submit fails
// with [ErrPoolClosed]; work already queued still runs.
type Pool struct {
	tasks   *Queue[func()]
	wake    chan struct{}
	stop    chan struct{}
	joined  chan struct{}
	wg      sync.WaitGroup
	workers int
	idle    time.Duration

	errOnce sync.Once
	fatal   error

	_      pad
	active atomix.Int64
	_      pad
	queued atomix.Int64
	_      pad
	state  atomix.Int32
}

// NewPool creates a pool with the given number of workers and starts them.
// Zero or negative worker counts are coerced to one.
func NewPool(workers int, opts ...PoolOption) *Pool {
	if workers < 1 {
		workers = 1
	}
	cfg := poolConfig{idleInterval: defaultIdleInterval}
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Pool{
		tasks:   NewQueue[func()](),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		joined:  make(chan struct{}),
		workers: workers,
		idle:    cfg.idleInterval,
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

// Submit places fn on the pool's queue and returns a handle for its result.
// The handle's Wait blocks until fn has run and then yields fn's value or
// propagates its failure; a panic inside fn is captured as a [*PanicError]
// and never kills the worker.
//
// Submit fails with [ErrPoolClosed] once shutdown has begun.
//
// Submit is a package-level function because the result type R varies per
// call site and methods cannot introduce type parameters.
func Submit[R any](p *Pool, fn func() (R, error)) (*Result[R], error) {
	if p.state.LoadAcquire() != poolRunning {
		return nil, ErrPoolClosed
	}
	r := newResult[R]()
	run := func() {
		defer func() {
			if v := recover(); v != nil {
				var zero R
				r.fulfill(zero, &PanicError{Value: v})
			}
		}()
		v, err := fn()
		r.fulfill(v, err)
	}
	p.queued.AddAcqRel(1)
	if err := p.tasks.Enqueue(&run); err != nil {
		p.queued.AddAcqRel(-1)
		return nil, err
	}
	select {
	case p.wake <- struct{}{}:
	default:
	}
	return r, nil
}

// Wait blocks until the queue is empty and no work unit is running. Every
// unit submitted before Wait began has completed when Wait returns.
//
// Wait drains work on the calling goroutine when it can, so it makes
// progress even on a pool whose workers are all busy.
func (p *Pool) Wait() {
	backoff := iox.Backoff{}
	for {
		if run, err := p.tasks.Dequeue(); err == nil {
			p.run(run)
			backoff.Reset()
			continue
		}
		if p.active.LoadAcquire() == 0 && p.queued.LoadAcquire() == 0 && p.tasks.Empty() {
			return
		}
		backoff.Wait()
	}
}

// ActiveTasks returns the number of currently executing work units.
func (p *Pool) ActiveTasks() int {
	n := p.active.LoadRelaxed()
	if n < 0 {
		return 0
	}
	return int(n)
}

// QueuedTasks returns the approximate number of pending work units.
func (p *Pool) QueuedTasks() int {
	n := p.queued.LoadRelaxed()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Workers returns the worker count the pool was started with.
func (p *Pool) Workers() int {
	return p.workers
}

// Close shuts the pool down: it drains outstanding work, signals the
// workers to exit, and joins them. Close is idempotent; concurrent and
// repeated calls all return after the join.
//
// The returned error is the first fatal failure raised inside a worker's
// loop, if any. Failures of submitted work units are not fatal; they
// surface on their own result handles.
func (p *Pool) Close() error {
	if !p.state.CompareAndSwapAcqRel(poolRunning, poolDraining) {
		<-p.joined
		return p.fatal
	}
	p.Wait()
	p.state.StoreRelease(poolStopped)
	close(p.stop)
	p.wg.Wait()
	close(p.joined)
	return p.fatal
}

// worker is the loop each pool goroutine runs: pull a unit and execute it,
// otherwise sleep on the wake signal with a bounded timeout so a missed
// signal or a shutdown never strands the worker.
func (p *Pool) worker() {
	defer p.wg.Done()
	defer func() {
		if v := recover(); v != nil {
			p.errOnce.Do(func() {
				p.fatal = fmt.Errorf("cds: worker failed: %v", v)
			})
		}
	}()

	timer := time.NewTimer(p.idle)
	defer timer.Stop()
	for {
		if run, err := p.tasks.Dequeue(); err == nil {
			p.run(run)
			continue
		}
		select {
		case <-p.stop:
			p.drain()
			return
		case <-p.wake:
		case <-timer.C:
		}
		timer.Reset(p.idle)
	}
}

// drain empties the queue after the stop signal. Close has already waited
// for quiescence, but a submit racing shutdown may have slipped a unit in;
// it runs rather than being dropped.
func (p *Pool) drain() {
	for {
		run, err := p.tasks.Dequeue()
		if err != nil {
			return
		}
		p.run(run)
	}
}

// run executes a unit just taken from the queue. The active increment
// precedes the queued decrement so a unit in the gap between Dequeue and
// execution is always counted somewhere; Wait's exit test relies on that
// overlap.
func (p *Pool) run(run func()) {
	p.active.AddAcqRel(1)
	p.queued.AddAcqRel(-1)
	defer p.active.AddAcqRel(-1)
	run()
}
