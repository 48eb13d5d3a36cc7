package queue

import (
	"context"
	"fmt"
	"task-manager/tasks"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

// Shared behaviour of every CommandQueue implementation.

func testQueueBasicOperations(t *testing.T, queue CommandQueue) {
	ctx := context.Background()

	original := tasks.NewCommand("Do laundry", "round up dirty clothes")

	err := queue.Enqueue(ctx, original)
	assert.NilError(t, err, "Failed to enqueue command")

	depth, err := queue.Depth(ctx)
	assert.NilError(t, err, "Failed to get queue depth")
	assert.Equal(t, int64(1), depth, "Queue depth should be 1 after enqueue")

	dequeued, err := queue.Dequeue(ctx)
	assert.NilError(t, err, "Failed to dequeue command")
	assert.Assert(t, dequeued != nil, "Dequeued command should not be nil")

	assert.Equal(t, original.ID, dequeued.ID)
	assert.Equal(t, original.TaskID, dequeued.TaskID)
	assert.Equal(t, original.Text, dequeued.Text)
	assert.Assert(t, original.EnqueuedAt.Equal(dequeued.EnqueuedAt))

	depth, err = queue.Depth(ctx)
	assert.NilError(t, err, "Failed to get queue depth after dequeue")
	assert.Equal(t, int64(0), depth, "Queue should be empty after dequeue")
}

func testQueueFIFOOrdering(t *testing.T, queue CommandQueue) {
	ctx := context.Background()

	commands := []*tasks.Command{
		tasks.NewCommand("first", "one"),
		tasks.NewCommand("second", "two"),
		tasks.NewCommand("third", "three"),
	}

	for _, cmd := range commands {
		assert.NilError(t, queue.Enqueue(ctx, cmd), "Failed to enqueue command")
	}

	depth, err := queue.Depth(ctx)
	assert.NilError(t, err)
	assert.Equal(t, int64(3), depth, "Queue depth should be 3")

	for i, expected := range commands {
		dequeued, err := queue.Dequeue(ctx)
		assert.NilError(t, err, "Failed to dequeue command %d", i)
		assert.Equal(t, expected.ID, dequeued.ID, "Command %d out of order", i)
	}

	depth, err = queue.Depth(ctx)
	assert.NilError(t, err)
	assert.Equal(t, int64(0), depth, "Queue should be empty")
}

func testQueueConcurrency(t *testing.T, queue CommandQueue) {
	ctx := context.Background()
	numCommands := 10

	for i := range numCommands {
		cmd := tasks.NewCommand(fmt.Sprintf("task-%d", i), "concurrent")
		assert.NilError(t, queue.Enqueue(ctx, cmd), "Failed to enqueue command %d", i)
	}

	results := make(chan *tasks.Command, numCommands)
	errs := make(chan error, numCommands)

	for range numCommands {
		go func() {
			cmd, err := queue.Dequeue(ctx)
			if err != nil {
				errs <- err
			} else {
				results <- cmd
			}
		}()
	}

	seen := make(map[string]bool)
	for i := range numCommands {
		select {
		case cmd := <-results:
			assert.Assert(t, !seen[cmd.ID], "command %s dequeued twice", cmd.ID)
			seen[cmd.ID] = true
		case err := <-errs:
			t.Fatalf("Error during concurrent dequeue: %v", err)
		case <-time.After(1 * time.Second):
			t.Fatalf("Timeout waiting for concurrent dequeue %d", i)
		}
	}

	assert.Equal(t, numCommands, len(seen), "Should have dequeued all commands")
}

func testQueueDequeueHonoursContext(t *testing.T, queue CommandQueue) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := queue.Dequeue(ctx)
	assert.Assert(t, err != nil, "Dequeue on an empty queue should fail once ctx is done")
}
