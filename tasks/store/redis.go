package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"strconv"
	"task-manager/errors"
	"task-manager/logger"
	"task-manager/tasks"
	"time"

	"github.com/redis/go-redis/v9"
)

const maxWatchRetries = 10

var _ TaskStore = (*RedisTaskStore)(nil)

// RedisTaskStore keeps solutions and completion flags in two Redis hashes.
// Operations touching both hashes run inside MULTI/EXEC.
type RedisTaskStore struct {
	client       *redis.Client
	solutionsKey string
	completedKey string
	logger       *logger.Logger
}

func NewRedisTaskStore(url, keyPrefix string, lg *logger.Logger) (*RedisTaskStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if lg == nil {
		lg = logger.Nop()
	}

	return &RedisTaskStore{
		client:       client,
		solutionsKey: keyPrefix + "solutions",
		completedKey: keyPrefix + "completed",
		logger:       lg,
	}, nil
}

func encodeBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (s *RedisTaskStore) AddTask(ctx context.Context, id, solution string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.solutionsKey, id, solution)
		pipe.HSet(ctx, s.completedKey, id, encodeBool(false))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	s.logger.Task(logger.DEBUG, id, "task added", map[string]any{
		"solution":  solution,
		"completed": false,
	})
	return nil
}

func (s *RedisTaskStore) RemoveTask(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.solutionsKey, id)
		pipe.HDel(ctx, s.completedKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove task: %w", err)
	}

	s.logger.Task(logger.DEBUG, id, "task removed")
	return nil
}

func (s *RedisTaskStore) GetSolution(ctx context.Context, id string) (string, bool, error) {
	solution, err := s.client.HGet(ctx, s.solutionsKey, id).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get solution: %w", err)
	}
	return solution, true, nil
}

func (s *RedisTaskStore) ChangeSolution(ctx context.Context, id, solution string) error {
	if err := s.AddTask(ctx, id, solution); err != nil {
		return err
	}
	s.logger.Task(logger.DEBUG, id, "solution changed", map[string]any{
		"solution": solution,
	})
	return nil
}

func (s *RedisTaskStore) ChangeSolutionText(ctx context.Context, id, solution string) error {
	txf := func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, s.solutionsKey, id).Result()
		if err != nil {
			return err
		}
		if !exists {
			return errors.NewTaskNotFoundError(id)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.solutionsKey, id, solution)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, txf, s.solutionsKey)
		if stderrors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if _, ok := errors.IsTaskError(err); ok {
				return err
			}
			return fmt.Errorf("failed to change solution text: %w", err)
		}

		s.logger.Task(logger.DEBUG, id, "solution text changed", map[string]any{
			"solution": solution,
		})
		return nil
	}

	return fmt.Errorf("failed to change solution text: %w", redis.TxFailedErr)
}

func (s *RedisTaskStore) IsCompleted(ctx context.Context, id string) (bool, error) {
	value, err := s.client.HGet(ctx, s.completedKey, id).Result()
	if stderrors.Is(err, redis.Nil) {
		return false, errors.NewTaskNotFoundError(id)
	}
	if err != nil {
		return false, fmt.Errorf("failed to get completion: %w", err)
	}

	return parseFlag(id, value)
}

// parseFlag decodes a stored completion flag.
func parseFlag(id, value string) (bool, error) {
	completed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("corrupt completion flag %q for task %q: %w", value, id, err)
	}
	return completed, nil
}

func (s *RedisTaskStore) SetCompleted(ctx context.Context, id string) error {
	return s.SetCompletion(ctx, id, true)
}

func (s *RedisTaskStore) SetCompletion(ctx context.Context, id string, completed bool) error {
	if err := s.client.HSet(ctx, s.completedKey, id, encodeBool(completed)).Err(); err != nil {
		return fmt.Errorf("failed to set completion: %w", err)
	}

	s.logger.Task(logger.DEBUG, id, "completion set", map[string]any{
		"completed": completed,
	})
	return nil
}

func (s *RedisTaskStore) CompleteIfSolution(ctx context.Context, id, solution string) (bool, error) {
	var completed bool
	txf := func(tx *redis.Tx) error {
		completed = false
		current, err := tx.HGet(ctx, s.solutionsKey, id).Result()
		if stderrors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if current != solution {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.completedKey, id, encodeBool(true))
			return nil
		})
		if err == nil {
			completed = true
		}
		return err
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, txf, s.solutionsKey, s.completedKey)
		if stderrors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to complete task: %w", err)
		}

		if completed {
			s.logger.Task(logger.DEBUG, id, "completion set", map[string]any{
				"completed": true,
			})
		} else {
			s.logger.Task(logger.DEBUG, id, "completion skipped: solution no longer matches", map[string]any{
				"solution": solution,
			})
		}
		return completed, nil
	}

	return false, fmt.Errorf("failed to complete task: %w", redis.TxFailedErr)
}

func (s *RedisTaskStore) HasSolution(ctx context.Context, id string) (bool, error) {
	solution, ok, err := s.GetSolution(ctx, id)
	if err != nil {
		return false, err
	}
	return ok && solution != "", nil
}

func (s *RedisTaskStore) Get(ctx context.Context, id string) (*tasks.Task, error) {
	var solutionCmd, completedCmd *redis.StringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		solutionCmd = pipe.HGet(ctx, s.solutionsKey, id)
		completedCmd = pipe.HGet(ctx, s.completedKey, id)
		return nil
	})
	if err != nil && !stderrors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	solution, solErr := solutionCmd.Result()
	flag, flagErr := completedCmd.Result()
	hasSolution := solErr == nil
	hasCompletion := flagErr == nil
	if !hasSolution && !hasCompletion {
		return nil, errors.NewTaskNotFoundError(id)
	}

	task := &tasks.Task{ID: id, Solution: solution, SolutionSet: hasSolution}
	if hasCompletion {
		if task.Completed, err = parseFlag(id, flag); err != nil {
			return nil, err
		}
	}
	return task, nil
}

// snapshot reads both hashes in one transaction.
func (s *RedisTaskStore) snapshot(ctx context.Context) (map[string]string, map[string]string, error) {
	var solutionsCmd, completedCmd *redis.MapStringStringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		solutionsCmd = pipe.HGetAll(ctx, s.solutionsKey)
		completedCmd = pipe.HGetAll(ctx, s.completedKey)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	return solutionsCmd.Val(), completedCmd.Val(), nil
}

func (s *RedisTaskStore) List(ctx context.Context) ([]tasks.Task, error) {
	solutions, completed, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	ids := unionKeys(solutions, completed)
	list := make([]tasks.Task, 0, len(ids))
	for _, id := range ids {
		solution, hasSolution := solutions[id]
		var done bool
		if flag, ok := completed[id]; ok {
			if done, err = parseFlag(id, flag); err != nil {
				return nil, err
			}
		}
		list = append(list, tasks.Task{
			ID:          id,
			Solution:    solution,
			SolutionSet: hasSolution,
			Completed:   done,
		})
	}
	return list, nil
}

func (s *RedisTaskStore) Len(ctx context.Context) (int, error) {
	solutions, completed, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return len(unionKeys(solutions, completed)), nil
}

// Close releases the Redis connection pool.
func (s *RedisTaskStore) Close() error {
	return s.client.Close()
}

func unionKeys(a, b map[string]string) []string {
	ids := make([]string, 0, len(a)+len(b))
	for id := range a {
		ids = append(ids, id)
	}
	for id := range b {
		if _, ok := a[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
