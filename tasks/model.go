package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Task is a point-in-time view of one id held by a store.
type Task struct {
	ID       string `json:"task_id"`
	Solution string `json:"solution"`
	// SolutionSet is false for an id that only carries a completion flag.
	// An empty solution is still set; see TaskStore.HasSolution.
	SolutionSet bool `json:"solution_set"`
	Completed   bool `json:"completed"`
}

// Command is a solution text handed to the processor.
type Command struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id,omitempty"`
	Text       string    `json:"text"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewCommand builds a command for text. taskID may be empty for commands
// that do not originate from a stored task.
func NewCommand(taskID, text string) *Command {
	return &Command{
		ID:         uuid.New().String(),
		TaskID:     taskID,
		Text:       text,
		EnqueuedAt: time.Now().UTC(),
	}
}
