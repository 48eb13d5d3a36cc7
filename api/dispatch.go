package api

import (
	"context"
	"net/http"
	"task-manager/logger"
	"task-manager/tasks/execution"
)

// Dispatcher sends the stored solution of a task as a command.
type Dispatcher interface {
	Dispatch(ctx context.Context, taskID string) (*execution.Result, error)
}

// DispatchResponse defines the JSON response returned after dispatching a task.
type DispatchResponse struct {
	CommandID  string `json:"command_id"`
	TaskID     string `json:"task_id"`
	Command    string `json:"command"`
	Status     string `json:"status"`
	Reply      string `json:"reply,omitempty"`
	Recognized bool   `json:"recognized"`
}

// NewDispatchHandler returns an HTTP handler that dispatches a task's solution.
//
// With a synchronous runner the reply is returned with 200. With an
// asynchronous runner the command is queued and 202 is returned; the
// completion flag is set later by a worker.
func NewDispatchHandler(d Dispatcher, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, taskErr := taskID(r)
		if taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		result, err := d.Dispatch(r.Context(), id)
		if err != nil {
			handleError(w, err, lg)
			return
		}

		resp := DispatchResponse{
			CommandID:  result.Command.ID,
			TaskID:     result.Command.TaskID,
			Command:    result.Command.Text,
			Reply:      result.Reply,
			Recognized: result.Recognized,
		}

		status := http.StatusOK
		resp.Status = "done"
		if result.Queued {
			status = http.StatusAccepted
			resp.Status = "queued"
		}
		writeJSON(w, status, resp, lg)
	}
}
