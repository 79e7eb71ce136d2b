// Package pool runs hook command batches on a bounded set of workers.
package pool

import (
	"context"
	"runtime"
	"sync"
)

// Task is a unit of work for the pool.
type Task func(ctx context.Context)

// Pool is a fixed-size worker pool. Hooks submit one task per command
// batch and wait on their own WaitGroup, so batches of the same hook run
// concurrently while hooks stay strictly ordered.
type Pool struct {
	tasks   chan Task
	wg      sync.WaitGroup
	workers int

	mu        sync.Mutex
	completed int64
}

// New sizes the pool. workers <= 0 means one per CPU.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		tasks:   make(chan Task, workers*2),
		workers: workers,
	}
}

// Workers reports the pool size.
func (p *Pool) Workers() int { return p.workers }

// Start launches the workers.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Submit queues a task, blocking when all workers are busy and the queue
// is full.
func (p *Pool) Submit(t Task) {
	p.tasks <- t
}

// Stop drains queued tasks and waits for the workers to exit.
func (p *Pool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}

// Completed reports how many tasks have finished.
func (p *Pool) Completed() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for task := range p.tasks {
		// Cancelled runs still drain the queue so Stop returns; the
		// task sees the cancelled context and exits fast.
		task(ctx)

		p.mu.Lock()
		p.completed++
		p.mu.Unlock()
	}
}
