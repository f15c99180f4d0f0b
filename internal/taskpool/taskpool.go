// Package taskpool runs a transitively-growing set of tasks across a fixed
// worker pool: a worker processing a task may submit more tasks, which
// become eligible for scheduling by any worker (spec §4.4 "task feeder
// contract", §9 "cyclic / transitive task graph"). It generalizes gnark's
// utils/parallel.Execute (a fixed range split across goroutines, with no
// feedback) to support that cyclic append-while-draining shape, and uses
// golang.org/x/sync/errgroup the way gnark's constraint/marshal.go does to
// propagate the first fatal error out of a fan-out.
package taskpool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Feeder is handed to a running task so it can submit more work. Submit may
// be called from any worker at any time while the pool is running.
type Feeder[T any] interface {
	Submit(task T)
}

// Work processes one task, given its 0-based worker id (stable for the
// life of a single Run call, letting the caller keep worker-local state in
// a slice indexed by id) and a Feeder for submitting follow-up tasks.
type Work[T any] func(workerID int, task T, feeder Feeder[T]) error

// Pool runs Work over a task frontier that can grow while draining.
type Pool[T any] struct {
	workers int

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []T
	pending int // queued + in-flight
	stopped bool
}

// New returns a Pool with the given number of workers. workers <= 0 selects
// a single worker.
func New[T any](workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool[T]{workers: workers}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Submit adds a task to the frontier. It implements Feeder.
func (p *Pool[T]) Submit(task T) {
	p.mu.Lock()
	p.queue = append(p.queue, task)
	p.pending++
	p.cond.Signal()
	p.mu.Unlock()
}

// Run seeds the frontier with initial and drains it using work, fanning out
// across the pool's workers. It returns once the frontier is empty and no
// worker is active, or returns the first error any worker's Work returned
// (remaining queued tasks are discarded; in-flight tasks are allowed to
// finish).
func (p *Pool[T]) Run(ctx context.Context, initial []T, work Work[T]) error {
	p.mu.Lock()
	p.queue = append(p.queue[:0], initial...)
	p.pending = len(initial)
	p.stopped = false
	p.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for id := 0; id < p.workers; id++ {
		id := id
		g.Go(func() error {
			for {
				task, ok := p.next()
				if !ok {
					return nil
				}
				err := work(id, task, p)
				p.finish(err)
				if err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}

// next blocks until a task is available, the frontier has drained, or the
// pool has been stopped by a fatal error.
func (p *Pool[T]) next() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && p.pending > 0 && !p.stopped {
		p.cond.Wait()
	}
	if len(p.queue) == 0 || p.stopped {
		var zero T
		return zero, false
	}
	last := len(p.queue) - 1
	task := p.queue[last]
	p.queue = p.queue[:last]
	return task, true
}

// finish marks one task done (whether or not it submitted follow-ups) and,
// on error, stops the pool so idle workers wake up and exit.
func (p *Pool[T]) finish(err error) {
	p.mu.Lock()
	p.pending--
	if err != nil {
		p.stopped = true
	}
	if p.pending == 0 || p.stopped {
		p.cond.Broadcast()
	}
	p.mu.Unlock()
}
