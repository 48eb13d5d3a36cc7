package store

import (
	"context"
	"task-manager/tasks"
)

// TaskStore maps task ids to solutions and completion flags.
//
// Every operation is linearizable. Reads of an unknown id report absence
// rather than failing, except IsCompleted which returns a not_found error.
type TaskStore interface {
	// AddTask stores solution for id and resets its completion flag to false.
	AddTask(ctx context.Context, id, solution string) error

	// RemoveTask deletes id from both maps. Removing an unknown id is a no-op.
	RemoveTask(ctx context.Context, id string) error

	// GetSolution returns the solution for id; ok is false when id has none.
	GetSolution(ctx context.Context, id string) (solution string, ok bool, err error)

	// ChangeSolution behaves exactly like AddTask, completion reset included.
	ChangeSolution(ctx context.Context, id, solution string) error

	// ChangeSolutionText replaces the solution of an existing task and keeps
	// its completion flag.
	ChangeSolutionText(ctx context.Context, id, solution string) error

	// IsCompleted reports the completion flag of id.
	IsCompleted(ctx context.Context, id string) (bool, error)

	// SetCompleted marks id completed, even if id was never added.
	SetCompleted(ctx context.Context, id string) error

	// SetCompletion sets the completion flag of id to completed.
	SetCompletion(ctx context.Context, id string, completed bool) error

	// CompleteIfSolution marks id completed only while its stored solution
	// equals solution, checking and setting in one step. It reports whether
	// the flag was set; an absent or replaced solution leaves the store as is.
	CompleteIfSolution(ctx context.Context, id, solution string) (bool, error)

	// HasSolution reports whether id has a non-empty solution.
	HasSolution(ctx context.Context, id string) (bool, error)

	// Get returns a snapshot of id, or not_found if id is in neither map.
	Get(ctx context.Context, id string) (*tasks.Task, error)

	// List returns a snapshot of every id, sorted by id.
	List(ctx context.Context) ([]tasks.Task, error)

	// Len returns the number of distinct ids held.
	Len(ctx context.Context) (int, error)
}
