package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/eTutor-plus-plus/taskdispatch/internal/config"
	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/eventbus"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
	"github.com/eTutor-plus-plus/taskdispatch/internal/tasktype"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/clog"
)

// Server is the orchestrating layer: it owns the metadata-store write
// transaction around every task-type service call.
type Server struct {
	server      *http.Server
	env         *config.Env
	tasks       task.Repository
	groups      taskgroup.Repository
	registry    *tasktype.Registry
	submissions *dispatcher.SubmissionProxy
	bus         *eventbus.Bus
}

func NewServer(
	env *config.Env,
	tasks task.Repository,
	groups taskgroup.Repository,
	registry *tasktype.Registry,
	submissions *dispatcher.SubmissionProxy,
	bus *eventbus.Bus,
) *Server {
	return &Server{
		env:         env,
		tasks:       tasks,
		groups:      groups,
		registry:    registry,
		submissions: submissions,
		bus:         bus,
	}
}

// Handler builds the complete HTTP handler: the API routes wrapped in the
// API key check and CORS.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		// The event stream writes directly; only the JSON endpoints go
		// through the response-converting middleware.
		r.With(clog.SlogChiMiddleware()).Get("/events", s.streamEvents)

		r.Group(func(r chi.Router) {
			r.Use(
				clog.SlogChiMiddleware(),
				cerr.NewJSONResponseChiMiddleware(),
			)
			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", s.createTask)
				r.Get("/", s.listTasks)
				r.Get("/{id}", s.getTask)
				r.Put("/{id}", s.updateTask)
				r.Delete("/{id}", s.deleteTask)
			})
			r.Route("/taskgroups", func(r chi.Router) {
				r.Post("/", s.createTaskGroup)
				r.Get("/", s.listTaskGroups)
				r.Get("/{name}", s.getTaskGroup)
				r.Put("/{name}", s.updateTaskGroup)
				r.Delete("/{name}", s.deleteTaskGroup)
			})
			r.Route("/submissions", func(r chi.Router) {
				r.Post("/", s.submit)
				r.Get("/{id}", s.getSubmission)
				r.Get("/{id}/grading", s.getGrading)
			})
			r.NotFound(func(w http.ResponseWriter, r *http.Request) {
				cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
			})
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)

	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.apiKeyMiddleware(mux))
}

// ListenAndServe starts the HTTP server. The provided context is the base
// context for all incoming requests; cancelling it (on shutdown signal) also
// ends open event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip API key check for the health endpoint.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = r.Header.Get("Authorization")
			if len(apiKey) > 7 && apiKey[:7] == "Bearer " {
				apiKey = apiKey[7:]
			}
		}
		if apiKey != s.env.APIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
