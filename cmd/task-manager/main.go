package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"task-manager/api/server"
	"task-manager/config"
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
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	lg := logger.New(cfg.LogLevel, nil)
	if err := run(cfg, lg); err != nil {
		lg.Error("task manager stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run(cfg *config.Config, lg *logger.Logger) error {
	lg.Info("Starting task manager", map[string]any{
		"version":   cfg.Version,
		"port":      cfg.ServerPort,
		"log_level": cfg.LogLevel,
		"backend":   cfg.StoreBackend,
		"async":     cfg.Async,
	})

	taskStore, closeStore, err := createTaskStore(cfg, lg)
	if err != nil {
		return fmt.Errorf("failed to create task store: %w", err)
	}
	defer closeStore()

	reg := createCommandRegistry(lg)
	runner, stopRunner, err := createRunner(cfg, execution.NewExecutor(reg, taskStore, lg), reg, lg)
	if err != nil {
		return err
	}
	defer stopRunner()

	srv := server.New(server.Dependencies{
		Store:      taskStore,
		Dispatcher: processor.New(taskStore, runner, lg),
		Registry:   reg,
		Config:     cfg,
		Logger:     lg,
	})
	return srv.Start()
}

// createRunner runs commands inline, or through a queue and worker pool in
// async mode. The returned stop function closes the queue and stops the pool.
func createRunner(cfg *config.Config, executor *execution.Executor, reg *registry.CommandRegistry, lg *logger.Logger) (runners.Runner, func(), error) {
	if !cfg.Async {
		return runners.NewSynchronousRunner(executor), func() {}, nil
	}

	q, err := createCommandQueue(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create command queue: %w", err)
	}

	pool := workers.NewPool(cfg.WorkerCount, q, executor, lg)
	pool.SetShutdownTimeout(cfg.ShutdownTimeout)
	pool.Start(context.Background())

	stop := func() {
		if err := q.Close(); err != nil {
			lg.Warn("failed to close command queue", map[string]any{"error": err.Error()})
		}
		pool.Stop()
	}
	return runners.NewAsynchronousRunner(q, reg), stop, nil
}

func createTaskStore(cfg *config.Config, lg *logger.Logger) (store.TaskStore, func(), error) {
	if !cfg.UsesRedis() {
		return store.NewMemoryTaskStore(lg), func() {}, nil
	}

	s, err := store.NewRedisTaskStore(cfg.RedisURL, cfg.KeyPrefix, lg)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}

// createCommandQueue shares Redis with the store when it is configured,
// so commands survive a restart.
func createCommandQueue(cfg *config.Config) (queue.CommandQueue, error) {
	if cfg.UsesRedis() {
		return queue.NewRedisCommandQueue(cfg.RedisURL, cfg.KeyPrefix+cfg.QueueName)
	}
	return queue.NewMemoryCommandQueue(cfg.QueueSize)
}

// createCommandRegistry sets up the commands the processor understands.
// Replies are only logged; the demo program prints them instead.
func createCommandRegistry(lg *logger.Logger) *registry.CommandRegistry {
	reg := registry.NewRegistry()
	reg.Register("round up dirty clothes", handlers.NewReplyHandler("Oh no! I have to round up the dirty clothes. *sigh*", nil, lg))
	reg.Register("eat pizza", handlers.NewReplyHandler("This is delicious! Thank you.", nil, lg))
	reg.SetFallback(handlers.NewUnrecognizedHandler(nil, lg))

	lg.Info("Registered command handlers", map[string]any{
		"count":    len(reg.GetRegisteredCommands()),
		"commands": reg.GetRegisteredCommands(),
	})

	return reg
}
