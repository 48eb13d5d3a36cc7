package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"task-manager/api"
	"task-manager/api/middleware"
	"task-manager/config"
	"task-manager/logger"
	"task-manager/tasks/registry"
	"task-manager/tasks/store"
	"time"

	"github.com/gorilla/mux"
)

// Server wraps http.Server with graceful shutdown capabilities
type Server struct {
	httpServer *http.Server
	config     *config.Config
	logger     *logger.Logger
}

// Dependencies contains everything the routes need.
type Dependencies struct {
	Store      store.TaskStore
	Dispatcher api.Dispatcher
	Registry   *registry.CommandRegistry
	Config     *config.Config
	Logger     *logger.Logger
}

func New(deps Dependencies) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         deps.Config.Address(),
			Handler:      newRouter(deps),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		config: deps.Config,
		logger: deps.Logger,
	}
}

func newRouter(deps Dependencies) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = api.NotFoundHandler(deps.Logger)
	r.MethodNotAllowedHandler = api.MethodNotAllowedHandler(deps.Logger)

	r.HandleFunc("/health", api.NewHealthHandler(deps.Config, deps.Registry, deps.Store, deps.Logger)).Methods(http.MethodGet)

	r.HandleFunc("/tasks", api.NewListTasksHandler(deps.Store, deps.Logger)).Methods(http.MethodGet)

	r.HandleFunc("/tasks/{id}", api.NewGetTaskHandler(deps.Store, deps.Logger)).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", api.NewPutTaskHandler(deps.Store, deps.Logger)).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id}", api.NewPatchTaskHandler(deps.Store, deps.Logger)).Methods(http.MethodPatch)
	r.HandleFunc("/tasks/{id}", api.NewDeleteTaskHandler(deps.Store, deps.Logger)).Methods(http.MethodDelete)
	r.HandleFunc("/tasks/{id}/solution", api.NewGetSolutionHandler(deps.Store, deps.Logger)).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}/completed", api.NewGetCompletionHandler(deps.Store, deps.Logger)).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}/completed", api.NewSetCompletionHandler(deps.Store, deps.Logger)).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id}/dispatch", api.NewDispatchHandler(deps.Dispatcher, deps.Logger)).Methods(http.MethodPost)

	return applyMiddleware(r, deps.Logger)
}

// applyMiddleware wraps the router so unmatched routes are logged too.
func applyMiddleware(handler http.Handler, lg *logger.Logger) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	wrapped := middleware.LoggingMiddleware(lg)(handler)
	wrapped = middleware.RequestIDMiddleware(wrapped)
	return wrapped
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", map[string]any{
			"address": s.config.Address(),
		})

		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed to start", map[string]any{
				"error": err.Error(),
			})
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	return s.shutdown()
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	s.logger.Info("Server shutdown complete")
	return nil
}
