// Command demo walks through the store API with a background worker that
// answers the dispatched solutions.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"task-manager/logger"
	"task-manager/tasks/execution"
	"task-manager/tasks/handlers"
	"task-manager/tasks/processor"
	"task-manager/tasks/queue"
	"task-manager/tasks/registry"
	"task-manager/tasks/runners"
	"task-manager/tasks/store"
	"task-manager/tasks/workers"
)

func main() {
	lg := logger.New(os.Getenv("LOG_LEVEL"), os.Stderr)
	if err := run(context.Background(), os.Stdout, lg); err != nil {
		log.Fatalf("demo failed: %v", err)
	}
}

func run(ctx context.Context, out io.Writer, lg *logger.Logger) error {
	taskStore := store.NewMemoryTaskStore(lg)

	reg := registry.NewRegistry()
	reg.Register("round up dirty clothes", handlers.NewReplyHandler("Oh no! I have to round up the dirty clothes. *sigh*", out, lg))
	reg.Register("eat pizza", handlers.NewReplyHandler("This is delicious! Thank you.", out, lg))
	reg.SetFallback(handlers.NewUnrecognizedHandler(out, lg))

	q, err := queue.NewMemoryCommandQueue(8)
	if err != nil {
		return err
	}
	pool := workers.NewPool(1, q, execution.NewExecutor(reg, taskStore, lg), lg)
	p := processor.New(taskStore, runners.NewAsynchronousRunner(q, reg), lg)

	if err := taskStore.AddTask(ctx, "Do laundry", "round up dirty clothes"); err != nil {
		return err
	}
	if err := taskStore.AddTask(ctx, "Fix hunger", "eat pizza"); err != nil {
		return err
	}

	pool.Start(ctx)

	if _, err := p.Dispatch(ctx, "Do laundry"); err != nil {
		return err
	}

	// "do laundry" is a different task from "Do laundry".
	if err := taskStore.ChangeSolution(ctx, "do laundry", "eat pizza"); err != nil {
		return err
	}

	if ok, err := taskStore.HasSolution(ctx, "do laundry"); err != nil {
		return err
	} else if ok {
		if _, err := p.Dispatch(ctx, "do laundry"); err != nil {
			return err
		}
	}

	if ok, err := taskStore.HasSolution(ctx, "do"); err != nil {
		return err
	} else if ok {
		fmt.Fprintln(out, "This shouldn't run.")
	}

	// Workers drain what is buffered, then exit.
	if err := q.Close(); err != nil {
		return err
	}
	pool.Wait()

	fmt.Fprintln(out, "Example procedure complete.")
	return nil
}
