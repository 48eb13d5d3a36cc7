package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"task-manager/errors"
	"task-manager/tasks"
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

// Behaviour shared by every TaskStore implementation. newStore must return
// an empty store that is independent from stores returned by earlier calls.

func testStoreUnknownID(t *testing.T, newStore func(t *testing.T) TaskStore) {
	ctx := context.Background()
	s := newStore(t)

	solution, ok, err := s.GetSolution(ctx, "never-added")
	require.NoError(t, err)
	assert.Assert(t, !ok)
	assert.Equal(t, "", solution)

	has, err := s.HasSolution(ctx, "never-added")
	require.NoError(t, err)
	assert.Assert(t, !has)

	_, err = s.IsCompleted(ctx, "never-added")
	require.Error(t, err)
	assert.Assert(t, errors.IsNotFound(err))

	_, err = s.Get(ctx, "never-added")
	assert.Assert(t, errors.IsNotFound(err))

	require.NoError(t, s.RemoveTask(ctx, "never-added"))
	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func testStoreAddTask(t *testing.T, newStore func(t *testing.T) TaskStore) {
	testCases := []struct {
		name        string
		id          string
		solution    string
		hasSolution bool
	}{
		{"regular solution", "Do laundry", "round up dirty clothes", true},
		{"empty solution", "Idle", "", false},
		{"empty id", "", "anything", true},
		{"unicode", "料理", "食べる", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			require.NoError(t, s.AddTask(ctx, tc.id, tc.solution))

			got, ok, err := s.GetSolution(ctx, tc.id)
			require.NoError(t, err)
			assert.Assert(t, ok)
			assert.Equal(t, tc.solution, got)

			completed, err := s.IsCompleted(ctx, tc.id)
			require.NoError(t, err)
			assert.Assert(t, !completed)

			has, err := s.HasSolution(ctx, tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.hasSolution, has)

			// An empty solution is set but does not count as having a solution.
			task, err := s.Get(ctx, tc.id)
			require.NoError(t, err)
			assert.DeepEqual(t, &tasks.Task{ID: tc.id, Solution: tc.solution, SolutionSet: true}, task)
		})
	}
}

func testStoreOverwriteResetsCompletion(t *testing.T, newStore func(t *testing.T) TaskStore) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.AddTask(ctx, "t", "first"))
	require.NoError(t, s.SetCompleted(ctx, "t"))
	require.NoError(t, s.AddTask(ctx, "t", "second"))

	got, _, err := s.GetSolution(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	completed, err := s.IsCompleted(ctx, "t")
	require.NoError(t, err)
	assert.Assert(t, !completed)
}

func testStoreRemoveTask(t *testing.T, newStore func(t *testing.T) TaskStore) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.AddTask(ctx, "t", "s"))
	require.NoError(t, s.AddTask(ctx, "other", "o"))
	require.NoError(t, s.RemoveTask(ctx, "t"))

	_, ok, err := s.GetSolution(ctx, "t")
	require.NoError(t, err)
	assert.Assert(t, !ok)

	_, err = s.IsCompleted(ctx, "t")
	assert.Assert(t, errors.IsNotFound(err))

	// Removing twice is a no-op
	require.NoError(t, s.RemoveTask(ctx, "t"))

	got, ok, err := s.GetSolution(ctx, "other")
	require.NoError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, "o", got)
}

func testStoreChangeSolution(t *testing.T, newStore func(t *testing.T) TaskStore) {
	ctx := context.Background()

	t.Run("resets completion", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, "t", "s1"))
		require.NoError(t, s.SetCompleted(ctx, "t"))

		require.NoError(t, s.ChangeSolution(ctx, "t", "s2"))

		got, _, err := s.GetSolution(ctx, "t")
		require.NoError(t, err)
		assert.Equal(t, "s2", got)
		completed, err := s.IsCompleted(ctx, "t")
		require.NoError(t, err)
		assert.Assert(t, !completed)
	})

	t.Run("creates unknown task", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.ChangeSolution(ctx, "new", "s"))

		has, err := s.HasSolution(ctx, "new")
		require.NoError(t, err)
		assert.Assert(t, has)
	})

	t.Run("text only keeps completion", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, "t", "s1"))
		require.NoError(t, s.SetCompleted(ctx, "t"))

		require.NoError(t, s.ChangeSolutionText(ctx, "t", "s2"))

		got, _, err := s.GetSolution(ctx, "t")
		require.NoError(t, err)
		assert.Equal(t, "s2", got)
		completed, err := s.IsCompleted(ctx, "t")
		require.NoError(t, err)
		assert.Assert(t, completed)
	})

	t.Run("text only on unknown task", func(t *testing.T) {
		s := newStore(t)
		err := s.ChangeSolutionText(ctx, "missing", "s")
		assert.Assert(t, errors.IsNotFound(err))

		_, ok, err := s.GetSolution(ctx, "missing")
		require.NoError(t, err)
		assert.Assert(t, !ok)
	})
}

func testStoreCompletion(t *testing.T, newStore func(t *testing.T) TaskStore) {
	ctx := context.Background()

	t.Run("set and clear", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, "t", "s"))

		require.NoError(t, s.SetCompleted(ctx, "t"))
		completed, err := s.IsCompleted(ctx, "t")
		require.NoError(t, err)
		assert.Assert(t, completed)

		require.NoError(t, s.SetCompletion(ctx, "t", false))
		completed, err = s.IsCompleted(ctx, "t")
		require.NoError(t, err)
		assert.Assert(t, !completed)

		require.NoError(t, s.SetCompletion(ctx, "t", true))
		completed, err = s.IsCompleted(ctx, "t")
		require.NoError(t, err)
		assert.Assert(t, completed)
	})

	t.Run("unknown task gets orphan flag", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetCompleted(ctx, "ghost"))

		completed, err := s.IsCompleted(ctx, "ghost")
		require.NoError(t, err)
		assert.Assert(t, completed)

		has, err := s.HasSolution(ctx, "ghost")
		require.NoError(t, err)
		assert.Assert(t, !has)

		_, ok, err := s.GetSolution(ctx, "ghost")
		require.NoError(t, err)
		assert.Assert(t, !ok)

		task, err := s.Get(ctx, "ghost")
		require.NoError(t, err)
		assert.DeepEqual(t, &tasks.Task{ID: "ghost", Completed: true}, task)

		require.NoError(t, s.RemoveTask(ctx, "ghost"))
		_, err = s.IsCompleted(ctx, "ghost")
		assert.Assert(t, errors.IsNotFound(err))
	})
}

func testStoreCompleteIfSolution(t *testing.T, newStore func(t *testing.T) TaskStore) {
	ctx := context.Background()

	t.Run("matching solution", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, "t", "eat pizza"))

		ok, err := s.CompleteIfSolution(ctx, "t", "eat pizza")
		require.NoError(t, err)
		assert.Assert(t, ok)

		completed, err := s.IsCompleted(ctx, "t")
		require.NoError(t, err)
		assert.Assert(t, completed)
	})

	t.Run("removed task stays removed", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, "t", "eat pizza"))
		require.NoError(t, s.RemoveTask(ctx, "t"))

		ok, err := s.CompleteIfSolution(ctx, "t", "eat pizza")
		require.NoError(t, err)
		assert.Assert(t, !ok)

		_, err = s.Get(ctx, "t")
		assert.Assert(t, errors.IsNotFound(err))
		n, err := s.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("replaced solution", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, "t", "eat pizza"))
		require.NoError(t, s.ChangeSolution(ctx, "t", "round up dirty clothes"))

		ok, err := s.CompleteIfSolution(ctx, "t", "eat pizza")
		require.NoError(t, err)
		assert.Assert(t, !ok)

		task, err := s.Get(ctx, "t")
		require.NoError(t, err)
		assert.DeepEqual(t, &tasks.Task{ID: "t", Solution: "round up dirty clothes", SolutionSet: true}, task)
	})

	t.Run("solution comparison is exact", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddTask(ctx, "t", "eat pizza"))

		ok, err := s.CompleteIfSolution(ctx, "t", "EAT PIZZA")
		require.NoError(t, err)
		assert.Assert(t, !ok)
	})
}

func testStoreListAndLen(t *testing.T, newStore func(t *testing.T) TaskStore) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.AddTask(ctx, "b", "second"))
	require.NoError(t, s.AddTask(ctx, "a", "first"))
	require.NoError(t, s.SetCompleted(ctx, "a"))
	require.NoError(t, s.SetCompletion(ctx, "c", false))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.DeepEqual(t, []tasks.Task{
		{ID: "a", Solution: "first", SolutionSet: true, Completed: true},
		{ID: "b", Solution: "second", SolutionSet: true},
		{ID: "c"},
	}, list)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// testStoreLaundryScenario replays the demonstration program.
func testStoreLaundryScenario(t *testing.T, newStore func(t *testing.T) TaskStore) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.AddTask(ctx, "Do laundry", "round up dirty clothes"))
	require.NoError(t, s.AddTask(ctx, "Fix hunger", "eat pizza"))

	got, ok, err := s.GetSolution(ctx, "Do laundry")
	require.NoError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, "round up dirty clothes", got)

	// Keys are case-sensitive: this creates a new task
	require.NoError(t, s.ChangeSolution(ctx, "do laundry", "eat pizza"))

	has, err := s.HasSolution(ctx, "do laundry")
	require.NoError(t, err)
	assert.Assert(t, has)

	got, _, err = s.GetSolution(ctx, "do laundry")
	require.NoError(t, err)
	assert.Equal(t, "eat pizza", got)

	got, _, err = s.GetSolution(ctx, "Do laundry")
	require.NoError(t, err)
	assert.Equal(t, "round up dirty clothes", got)

	has, err = s.HasSolution(ctx, "do")
	require.NoError(t, err)
	assert.Assert(t, !has)
}

type oracleEntry struct {
	solution    string
	hasSolution bool
	completed   bool
	hasFlag     bool
}

// testStoreConcurrentOracle runs random operations from many goroutines, each
// on its own key range, and compares the result with a sequential replay.
func testStoreConcurrentOracle(t *testing.T, newStore func(t *testing.T) TaskStore, workers, opsPerWorker int) {
	ctx := context.Background()
	s := newStore(t)

	oracle := make(map[string]oracleEntry)
	var oracleMu sync.Mutex

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(w), 42))
			local := make(map[string]oracleEntry)

			for i := range opsPerWorker {
				id := fmt.Sprintf("w%d-k%d", w, rng.IntN(8))
				solution := fmt.Sprintf("s%d", i)
				e := local[id]

				switch rng.IntN(6) {
				case 0, 1:
					if err := s.AddTask(ctx, id, solution); err != nil {
						t.Errorf("AddTask: %v", err)
						return
					}
					e = oracleEntry{solution: solution, hasSolution: true, hasFlag: true}
				case 2:
					if err := s.RemoveTask(ctx, id); err != nil {
						t.Errorf("RemoveTask: %v", err)
						return
					}
					e = oracleEntry{}
				case 3:
					if err := s.SetCompleted(ctx, id); err != nil {
						t.Errorf("SetCompleted: %v", err)
						return
					}
					e.completed, e.hasFlag = true, true
				case 4:
					if err := s.ChangeSolution(ctx, id, solution); err != nil {
						t.Errorf("ChangeSolution: %v", err)
						return
					}
					e = oracleEntry{solution: solution, hasSolution: true, hasFlag: true}
				case 5:
					got, ok, err := s.GetSolution(ctx, id)
					if err != nil {
						t.Errorf("GetSolution: %v", err)
						return
					}
					if ok != e.hasSolution || got != e.solution {
						t.Errorf("GetSolution(%q) = %q, %v; want %q, %v", id, got, ok, e.solution, e.hasSolution)
					}
				}
				local[id] = e
			}

			oracleMu.Lock()
			for id, e := range local {
				oracle[id] = e
			}
			oracleMu.Unlock()
		}(w)
	}
	wg.Wait()

	expected := make([]tasks.Task, 0, len(oracle))
	for id, e := range oracle {
		if !e.hasSolution && !e.hasFlag {
			continue
		}
		expected = append(expected, tasks.Task{
			ID:          id,
			Solution:    e.solution,
			SolutionSet: e.hasSolution,
			Completed:   e.completed,
		})
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(expected))

	byID := make(map[string]tasks.Task, len(list))
	for _, task := range list {
		byID[task.ID] = task
	}
	for _, want := range expected {
		assert.DeepEqual(t, want, byID[want.ID])
	}
}

// testStoreNoLostUpdates adds distinct ids concurrently and checks they all land.
func testStoreNoLostUpdates(t *testing.T, newStore func(t *testing.T) TaskStore, workers, perWorker int) {
	ctx := context.Background()
	s := newStore(t)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range perWorker {
				id := fmt.Sprintf("task-%d-%d", w, i)
				if err := s.AddTask(ctx, id, id); err != nil {
					t.Errorf("AddTask: %v", err)
					return
				}
				if err := s.SetCompleted(ctx, id); err != nil {
					t.Errorf("SetCompleted: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, n)

	list, err := s.List(ctx)
	require.NoError(t, err)
	for _, task := range list {
		assert.Equal(t, task.ID, task.Solution)
		assert.Assert(t, task.Completed, "task %s lost its completion flag", task.ID)
	}
}
