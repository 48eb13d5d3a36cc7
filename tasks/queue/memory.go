package queue

import (
	"context"
	"fmt"
	"sync"
	"task-manager/tasks"
)

var _ CommandQueue = (*MemoryCommandQueue)(nil)

// MemoryCommandQueue is a bounded FIFO backed by a buffered channel.
type MemoryCommandQueue struct {
	commands  chan *tasks.Command
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryCommandQueue(size int) (*MemoryCommandQueue, error) {
	if size < 1 {
		return nil, fmt.Errorf("queue size must be at least 1, got %d", size)
	}
	return &MemoryCommandQueue{
		commands: make(chan *tasks.Command, size),
		done:     make(chan struct{}),
	}, nil
}

// Enqueue blocks while the buffer is full.
func (q *MemoryCommandQueue) Enqueue(ctx context.Context, cmd *tasks.Command) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.commands <- cmd:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue keeps returning buffered commands after Close and reports
// ErrQueueClosed once the buffer is empty.
func (q *MemoryCommandQueue) Dequeue(ctx context.Context) (*tasks.Command, error) {
	select {
	case cmd := <-q.commands:
		return cmd, nil
	default:
	}

	select {
	case cmd := <-q.commands:
		return cmd, nil
	case <-q.done:
		select {
		case cmd := <-q.commands:
			return cmd, nil
		default:
			return nil, ErrQueueClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryCommandQueue) Depth(_ context.Context) (int64, error) {
	return int64(len(q.commands)), nil
}

func (q *MemoryCommandQueue) Close() error {
	q.closeOnce.Do(func() {
		close(q.done)
	})
	return nil
}
