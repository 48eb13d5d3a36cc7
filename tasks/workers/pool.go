package workers

import (
	"context"
	"sync"
	"task-manager/logger"
	"task-manager/tasks/execution"
	"task-manager/tasks/queue"
	"time"
)

const defaultShutdownTimeout = 30 * time.Second

// Pool runs a fixed set of Workers against one command queue.
type Pool struct {
	workers []*Worker
	logger  *logger.Logger
	running sync.WaitGroup

	mu              sync.Mutex
	cancel          context.CancelFunc
	shutdownTimeout time.Duration
}

func NewPool(size int, q queue.CommandQueue, exec *execution.Executor, lg *logger.Logger) *Pool {
	p := &Pool{
		workers:         make([]*Worker, 0, size),
		logger:          lg,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for id := 1; id <= size; id++ {
		p.workers = append(p.workers, NewWorker(id, q, exec, lg))
	}
	return p
}

func (p *Pool) Size() int {
	return len(p.workers)
}

func (p *Pool) SetShutdownTimeout(timeout time.Duration) {
	p.mu.Lock()
	p.shutdownTimeout = timeout
	p.mu.Unlock()
}

// Start launches one goroutine per worker. The workers exit when ctx ends,
// Stop is called or the queue is closed and drained.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		p.running.Add(1)
		go func() {
			defer p.running.Done()
			w.Start(ctx)
		}()
	}

	p.logger.Info("command workers started", map[string]any{
		"workers": len(p.workers),
	})
}

// Wait returns once every worker has exited.
func (p *Pool) Wait() {
	p.running.Wait()
}

// Stop interrupts the workers and gives in-flight commands up to the
// shutdown timeout to finish. Calling it more than once is safe.
func (p *Pool) Stop() {
	p.mu.Lock()
	cancel, timeout := p.cancel, p.shutdownTimeout
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, w := range p.workers {
		w.Stop()
	}

	if p.waitFor(timeout) {
		p.logger.Info("command workers exited", map[string]any{
			"workers": len(p.workers),
		})
		return
	}
	p.logger.Warn("command workers still busy at shutdown", map[string]any{
		"workers": len(p.workers),
		"timeout": timeout.String(),
	})
}

func (p *Pool) waitFor(timeout time.Duration) bool {
	exited := make(chan struct{})
	go func() {
		p.running.Wait()
		close(exited)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-exited:
		return true
	case <-timer.C:
		return false
	}
}
