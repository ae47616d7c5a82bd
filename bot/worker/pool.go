package worker

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrPoolClosed = errors.New("worker pool closed")
	ErrQueueFull  = errors.New("worker queue full")
)

// Option configures a Pool.
type Option func(*Pool)

// WithQueueSize sets how many tasks may wait for a worker. The default is eight per worker.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// WithPanicHandler receives the value of a panicking task. The worker survives the panic.
func WithPanicHandler(fn func(recovered any)) Option {
	return func(p *Pool) {
		p.onPanic = fn
	}
}

// Pool runs tasks on a fixed number of goroutines.
type Pool struct {
	tasks     chan func()
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	size      int
	queueSize int
	onPanic   func(any)
}

// New starts size workers. A size below one is raised to one.
func New(size int, opts ...Option) *Pool {
	size = max(size, 1)
	p := &Pool{size: size, queueSize: max(size*8, 8)}
	for _, opt := range opts {
		opt(p)
	}
	p.tasks = make(chan func(), p.queueSize)

	p.wg.Add(size)
	for range size {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	if task == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			if p.onPanic == nil {
				panic(r)
			}
			p.onPanic(r)
		}
	}()
	task()
}

// TrySubmit enqueues a task or fails with ErrQueueFull without blocking.
func (p *Pool) TrySubmit(task func()) error {
	// The read lock keeps tasks open until the send completes.
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
}

// Shutdown stops accepting tasks and waits for queued ones until ctx is done.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.close()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// StopNow stops accepting tasks without waiting. Queued tasks still run.
func (p *Pool) StopNow() {
	p.close()
}

// Size returns the worker count.
func (p *Pool) Size() int {
	return p.size
}

// Pending returns the number of queued tasks not yet picked up by a worker.
func (p *Pool) Pending() int {
	return len(p.tasks)
}
