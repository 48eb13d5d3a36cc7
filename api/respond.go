package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"task-manager/errors"
	"task-manager/logger"
)

const (
	maxBodySize     = 1024 * 1024 // 1 MB
	maxSolutionSize = 1024 * 100  // 100 KB
	maxTaskIDLen    = 256
)

// ErrorResponse defines the JSON structure for error responses
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    string         `json:"type,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// decodeBody reads a JSON body into v. An empty body is accepted when
// allowEmpty is set and leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) *errors.TaskError {
	// Limit request body size - this will cause Decode to fail if exceeded
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF && allowEmpty {
			return nil
		}
		if strings.Contains(err.Error(), "http: request body too large") {
			return errors.NewValidationError("request body too large", map[string]any{
				"max_size_bytes": maxBodySize,
			})
		}
		return errors.NewValidationError("invalid JSON payload", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

func validateTaskID(id string) *errors.TaskError {
	if len(id) > maxTaskIDLen {
		return errors.NewValidationError("task ID too long", map[string]any{
			"max_length":    maxTaskIDLen,
			"actual_length": len(id),
		})
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any, lg *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing left to do but log.
		lg.Error("failed to encode response", map[string]any{
			"error":       err.Error(),
			"status_code": status,
		})
	}
}

// handleError maps err onto a structured error response. Errors that are not
// TaskErrors are reported as internal.
func handleError(w http.ResponseWriter, err error, lg *logger.Logger) {
	if taskErr, ok := errors.IsTaskError(err); ok {
		respondWithError(w, taskErr, lg)
		return
	}
	respondWithError(w, errors.NewInternalError(err.Error()), lg)
}

// respondWithError sends a structured error response
func respondWithError(w http.ResponseWriter, taskErr *errors.TaskError, lg *logger.Logger) {
	fields := map[string]any{
		"error_type":    string(taskErr.Type),
		"error_message": taskErr.Message,
		"status_code":   taskErr.Code,
		"error_details": taskErr.Details,
	}
	if taskErr.Code >= http.StatusInternalServerError {
		lg.Error("HTTP error response", fields)
	} else {
		lg.Warn("HTTP error response", fields)
	}

	writeJSON(w, taskErr.Code, ErrorResponse{
		Error:   taskErr.Message,
		Type:    string(taskErr.Type),
		Details: taskErr.Details,
	}, lg)
}

// NotFoundHandler answers unmatched routes with a not_found error body.
func NotFoundHandler(lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, errors.NewNotFoundError("route not found", map[string]any{
			"path": r.URL.Path,
		}), lg)
	}
}

// MethodNotAllowedHandler answers known routes hit with the wrong method.
func MethodNotAllowedHandler(lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskErr := errors.NewValidationError("method not allowed", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		taskErr.Code = http.StatusMethodNotAllowed
		respondWithError(w, taskErr, lg)
	}
}
