package api

import (
	"net/http"
	"task-manager/config"
	"task-manager/logger"
	"task-manager/tasks/registry"
	"task-manager/tasks/store"
	"time"
)

var startTime = time.Now()

// HealthResponse provides detailed health information
type HealthResponse struct {
	Status             string   `json:"status"`
	Timestamp          string   `json:"timestamp"`
	Uptime             string   `json:"uptime"`
	Backend            string   `json:"backend"`
	Async              bool     `json:"async"`
	TaskCount          int      `json:"task_count"`
	RegisteredCommands []string `json:"registered_commands"`
	Version            string   `json:"version,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// NewHealthHandler returns a health check handler. A store that cannot be
// read reports "degraded" with 503.
func NewHealthHandler(cfg *config.Config, reg *registry.CommandRegistry, s store.TaskStore, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:             "healthy",
			Timestamp:          time.Now().UTC().Format(time.RFC3339),
			Uptime:             time.Since(startTime).String(),
			Backend:            cfg.StoreBackend,
			Async:              cfg.Async,
			RegisteredCommands: reg.GetRegisteredCommands(),
			Version:            cfg.Version,
		}

		status := http.StatusOK
		count, err := s.Len(r.Context())
		if err != nil {
			lg.Error("health check failed to read store", map[string]any{
				"error": err.Error(),
			})
			status = http.StatusServiceUnavailable
			response.Status = "degraded"
			response.Error = err.Error()
		}
		response.TaskCount = count

		writeJSON(w, status, response, lg)
	}
}
