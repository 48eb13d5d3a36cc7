package queue

import (
	"context"
	stderrors "errors"
	"task-manager/tasks"
)

// ErrQueueClosed is returned by operations on a closed queue.
var ErrQueueClosed = stderrors.New("queue is closed")

// CommandQueue hands commands from runners to background workers.
type CommandQueue interface {
	// Enqueue adds a command to the tail of the queue
	Enqueue(ctx context.Context, cmd *tasks.Command) error

	// Dequeue blocks until a command is available or ctx is done
	Dequeue(ctx context.Context) (*tasks.Command, error)

	// Depth returns the number of commands waiting in queue
	Depth(ctx context.Context) (int64, error)

	// Close releases the queue. Blocked callers return ErrQueueClosed.
	Close() error
}
