package api

import (
	"net/http"
	"task-manager/errors"
	"task-manager/logger"
	"task-manager/tasks"
	"task-manager/tasks/store"

	"github.com/gorilla/mux"
)

// TaskListResponse is returned by GET /tasks.
type TaskListResponse struct {
	Tasks []tasks.Task `json:"tasks"`
	Count int          `json:"count"`
}

// SolutionResponse is returned by GET /tasks/{id}/solution.
type SolutionResponse struct {
	TaskID      string `json:"task_id"`
	Solution    string `json:"solution"`
	HasSolution bool   `json:"has_solution"`
}

// CompletionResponse is returned by the /tasks/{id}/completed endpoints.
type CompletionResponse struct {
	TaskID    string `json:"task_id"`
	Completed bool   `json:"completed"`
}

type putTaskRequest struct {
	Solution *string `json:"solution"`
}

type patchTaskRequest struct {
	Solution       *string `json:"solution"`
	KeepCompletion bool    `json:"keep_completion"`
}

type completionRequest struct {
	Completed *bool `json:"completed"`
}

// taskID extracts and validates the {id} route variable.
func taskID(r *http.Request) (string, *errors.TaskError) {
	id := mux.Vars(r)["id"]
	if id == "" {
		return "", errors.NewValidationError("task ID is required")
	}
	if taskErr := validateTaskID(id); taskErr != nil {
		return "", taskErr
	}
	return id, nil
}

func validateSolution(solution *string) *errors.TaskError {
	if solution == nil {
		return errors.NewValidationError("solution is required")
	}
	if len(*solution) > maxSolutionSize {
		return errors.NewValidationError("solution too large", map[string]any{
			"max_size_bytes":    maxSolutionSize,
			"actual_size_bytes": len(*solution),
		})
	}
	return nil
}

// NewListTasksHandler returns every task held by the store, sorted by id.
func NewListTasksHandler(s store.TaskStore, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.List(r.Context())
		if err != nil {
			handleError(w, err, lg)
			return
		}
		writeJSON(w, http.StatusOK, TaskListResponse{Tasks: list, Count: len(list)}, lg)
	}
}

// NewGetTaskHandler returns a snapshot of a single task.
func NewGetTaskHandler(s store.TaskStore, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, taskErr := taskID(r)
		if taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		task, err := s.Get(r.Context(), id)
		if err != nil {
			handleError(w, err, lg)
			return
		}
		writeJSON(w, http.StatusOK, task, lg)
	}
}

// NewPutTaskHandler stores a solution and resets the completion flag.
func NewPutTaskHandler(s store.TaskStore, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, taskErr := taskID(r)
		if taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		var req putTaskRequest
		if taskErr := decodeBody(w, r, &req, false); taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}
		if taskErr := validateSolution(req.Solution); taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		if err := s.AddTask(r.Context(), id, *req.Solution); err != nil {
			handleError(w, err, lg)
			return
		}
		writeTask(w, r, s, id, lg)
	}
}

// NewPatchTaskHandler changes the solution of a task. With keep_completion
// set the task must already have a solution and its flag is preserved.
func NewPatchTaskHandler(s store.TaskStore, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, taskErr := taskID(r)
		if taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		var req patchTaskRequest
		if taskErr := decodeBody(w, r, &req, false); taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}
		if taskErr := validateSolution(req.Solution); taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		var err error
		if req.KeepCompletion {
			err = s.ChangeSolutionText(r.Context(), id, *req.Solution)
		} else {
			err = s.ChangeSolution(r.Context(), id, *req.Solution)
		}
		if err != nil {
			handleError(w, err, lg)
			return
		}
		writeTask(w, r, s, id, lg)
	}
}

// NewDeleteTaskHandler removes a task. Unknown ids are not an error.
func NewDeleteTaskHandler(s store.TaskStore, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, taskErr := taskID(r)
		if taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		if err := s.RemoveTask(r.Context(), id); err != nil {
			handleError(w, err, lg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewGetSolutionHandler returns the solution of a task, or not_found.
func NewGetSolutionHandler(s store.TaskStore, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, taskErr := taskID(r)
		if taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		solution, ok, err := s.GetSolution(r.Context(), id)
		if err != nil {
			handleError(w, err, lg)
			return
		}
		if !ok {
			respondWithError(w, errors.NewTaskNotFoundError(id), lg)
			return
		}

		writeJSON(w, http.StatusOK, SolutionResponse{
			TaskID:      id,
			Solution:    solution,
			HasSolution: solution != "",
		}, lg)
	}
}

// NewGetCompletionHandler reports the completion flag of a task.
func NewGetCompletionHandler(s store.TaskStore, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, taskErr := taskID(r)
		if taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		completed, err := s.IsCompleted(r.Context(), id)
		if err != nil {
			handleError(w, err, lg)
			return
		}
		writeJSON(w, http.StatusOK, CompletionResponse{TaskID: id, Completed: completed}, lg)
	}
}

// NewSetCompletionHandler sets the completion flag of a task. The body is
// optional and defaults to {"completed": true}.
func NewSetCompletionHandler(s store.TaskStore, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, taskErr := taskID(r)
		if taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		var req completionRequest
		if taskErr := decodeBody(w, r, &req, true); taskErr != nil {
			respondWithError(w, taskErr, lg)
			return
		}

		var err error
		if req.Completed == nil {
			err = s.SetCompleted(r.Context(), id)
		} else {
			err = s.SetCompletion(r.Context(), id, *req.Completed)
		}
		if err != nil {
			handleError(w, err, lg)
			return
		}

		completed, err := s.IsCompleted(r.Context(), id)
		if err != nil {
			handleError(w, err, lg)
			return
		}
		writeJSON(w, http.StatusOK, CompletionResponse{TaskID: id, Completed: completed}, lg)
	}
}

func writeTask(w http.ResponseWriter, r *http.Request, s store.TaskStore, id string, lg *logger.Logger) {
	task, err := s.Get(r.Context(), id)
	if err != nil {
		handleError(w, err, lg)
		return
	}
	writeJSON(w, http.StatusOK, task, lg)
}
