package store

import (
	"context"
	"slices"
	"sync"
	"task-manager/errors"
	"task-manager/logger"
	"task-manager/tasks"
)

// Compile-time check to ensure MemoryTaskStore implements TaskStore interface
var _ TaskStore = (*MemoryTaskStore)(nil)

// MemoryTaskStore is a process-local TaskStore. A single mutex guards both
// maps for the full duration of every operation.
type MemoryTaskStore struct {
	mu        sync.Mutex
	solutions map[string]string
	completed map[string]bool
	logger    *logger.Logger
}

// NewMemoryTaskStore creates an empty store. lg may be nil.
func NewMemoryTaskStore(lg *logger.Logger) *MemoryTaskStore {
	if lg == nil {
		lg = logger.Nop()
	}
	return &MemoryTaskStore{
		solutions: make(map[string]string),
		completed: make(map[string]bool),
		logger:    lg,
	}
}

func (s *MemoryTaskStore) AddTask(_ context.Context, id, solution string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.add(id, solution)
	return nil
}

// add must be called with mu held.
func (s *MemoryTaskStore) add(id, solution string) {
	s.solutions[id] = solution
	s.completed[id] = false

	s.logger.Task(logger.DEBUG, id, "task added", map[string]any{
		"solution":  solution,
		"completed": false,
	})
}

func (s *MemoryTaskStore) RemoveTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.solutions, id)
	delete(s.completed, id)

	s.logger.Task(logger.DEBUG, id, "task removed")
	return nil
}

func (s *MemoryTaskStore) GetSolution(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	solution, ok := s.solutions[id]
	return solution, ok, nil
}

func (s *MemoryTaskStore) ChangeSolution(_ context.Context, id, solution string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.add(id, solution)
	s.logger.Task(logger.DEBUG, id, "solution changed", map[string]any{
		"solution": solution,
	})
	return nil
}

func (s *MemoryTaskStore) ChangeSolutionText(_ context.Context, id, solution string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.solutions[id]; !ok {
		return errors.NewTaskNotFoundError(id)
	}
	s.solutions[id] = solution

	s.logger.Task(logger.DEBUG, id, "solution text changed", map[string]any{
		"solution":  solution,
		"completed": s.completed[id],
	})
	return nil
}

func (s *MemoryTaskStore) IsCompleted(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed, ok := s.completed[id]
	if !ok {
		return false, errors.NewTaskNotFoundError(id)
	}
	return completed, nil
}

func (s *MemoryTaskStore) SetCompleted(ctx context.Context, id string) error {
	return s.SetCompletion(ctx, id, true)
}

func (s *MemoryTaskStore) SetCompletion(_ context.Context, id string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.solutions[id]; !ok {
		s.logger.Task(logger.WARN, id, "completion set for task without solution")
	}
	s.completed[id] = completed

	s.logger.Task(logger.DEBUG, id, "completion set", map[string]any{
		"completed": completed,
	})
	return nil
}

func (s *MemoryTaskStore) CompleteIfSolution(_ context.Context, id, solution string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.solutions[id]
	if !ok || current != solution {
		s.logger.Task(logger.DEBUG, id, "completion skipped: solution no longer matches", map[string]any{
			"solution": solution,
			"present":  ok,
			"current":  current,
		})
		return false, nil
	}
	s.completed[id] = true

	s.logger.Task(logger.DEBUG, id, "completion set", map[string]any{
		"completed": true,
	})
	return true, nil
}

func (s *MemoryTaskStore) HasSolution(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	solution, ok := s.solutions[id]
	return ok && solution != "", nil
}

func (s *MemoryTaskStore) Get(_ context.Context, id string) (*tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.snapshot(id)
	if !ok {
		return nil, errors.NewTaskNotFoundError(id)
	}
	return &task, nil
}

func (s *MemoryTaskStore) List(_ context.Context) ([]tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.ids()
	list := make([]tasks.Task, 0, len(ids))
	for _, id := range ids {
		task, _ := s.snapshot(id)
		list = append(list, task)
	}
	return list, nil
}

func (s *MemoryTaskStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids()), nil
}

// snapshot must be called with mu held.
func (s *MemoryTaskStore) snapshot(id string) (tasks.Task, bool) {
	solution, hasSolution := s.solutions[id]
	completed, hasCompletion := s.completed[id]
	if !hasSolution && !hasCompletion {
		return tasks.Task{}, false
	}
	return tasks.Task{
		ID:          id,
		Solution:    solution,
		SolutionSet: hasSolution,
		Completed:   completed,
	}, true
}

// ids returns the sorted union of keys of both maps. Must be called with mu held.
func (s *MemoryTaskStore) ids() []string {
	ids := make([]string, 0, len(s.completed))
	for id := range s.completed {
		ids = append(ids, id)
	}
	for id := range s.solutions {
		if _, ok := s.completed[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
