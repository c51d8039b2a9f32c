// Package taskpool provides a fixed-size worker pool for short CPU-bound
// tasks. The pool is created once at startup, injected into the services that
// need it, and shut down once at process teardown.
package taskpool

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// ErrClosed is returned by Submit after the pool has been shut down.
var ErrClosed = errors.New("taskpool: pool is closed")

// Task is a unit of work executed by a pool worker.
type Task func()

// Pool runs submitted tasks on a fixed number of worker goroutines.
type Pool struct {
	size  int
	tasks chan Task
	quit  chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// DefaultSize returns the default worker count: at least 2, otherwise one per
// available CPU.
func DefaultSize() int {
	if n := runtime.GOMAXPROCS(0); n > 2 {
		return n
	}
	return 2
}

// New creates a pool with the given number of workers. A non-positive size
// falls back to DefaultSize.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize()
	}
	p := &Pool{
		size:  size,
		tasks: make(chan Task, size*4),
		quit:  make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// Submit enqueues a task for execution. It blocks while the queue is full and
// returns ErrClosed once the pool has been shut down.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.mu.Unlock()

	select {
	case p.tasks <- task:
		return nil
	case <-p.quit:
		return ErrClosed
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Shutdown stops all workers. Queued tasks that have not started are
// abandoned; tasks already running finish on their own goroutine. Shutdown is
// idempotent and does not wait for queued work.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.quit)
	p.mu.Unlock()

	p.wg.Wait()
}
