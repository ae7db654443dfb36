// Package api serves the operator HTTP API and the websocket event feed.
package api

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"replyflow/internal/config"
)

type contextKey string

const loggerContextKey = contextKey("logger")

type Server struct {
	server *http.Server

	Logger  *slog.Logger
	Config  *config.Config
	Backend *Backend
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the wrapped connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.status = http.StatusSwitchingProtocols
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func (s *Server) Run(ctx context.Context) error {
	s.Logger.Info("Starting API server", "addr", s.server.Addr)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "api.Server")

	s.server = &http.Server{
		Handler:           NewRouter(s.Logger, s.Backend),
		Addr:              s.Config.APIAddr,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       time.Minute,
	}
	return nil
}

func requestLogger(ctx context.Context) *slog.Logger {
	return ctx.Value(loggerContextKey).(*slog.Logger)
}

// NewRouter mounts the backend routes behind the logging and recovery middlewares.
func NewRouter(baseLogger *slog.Logger, backend *Backend) http.Handler {
	r := chi.NewMux()

	r.Use(
		// Logging
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger := baseLogger.With("method", r.Method, "path", r.URL.Path)
				ctx := context.WithValue(r.Context(), loggerContextKey, logger)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		},

		// Logging
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

				next.ServeHTTP(sw, r)

				duration := time.Since(start)
				requestLogger(r.Context()).Info("request", "duration", duration, "status", sw.status)
			})
		},

		// Recovering panics and logging
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if err := recover(); err != nil {
						requestLogger(r.Context()).Error("panic recovered", "error", err)
						writeError(w, http.StatusInternalServerError, "Internal Server Error")
					}
				}()
				next.ServeHTTP(w, r)
			})
		},
	)

	r.Get("/health", backend.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/owner", backend.GetOwner)
		r.Put("/owner", backend.PutOwner)

		r.Get("/replies", backend.ListReplies)
		r.Post("/replies/approve", backend.BulkApprove)
		r.Post("/replies/{id}/approve", backend.Approve)
		r.Post("/replies/{id}/reject", backend.Reject)

		r.Get("/analytics/summary", backend.Summary)

		if backend.Events != nil {
			r.Get("/events", backend.Events.ServeHTTP)
		}
	})

	return r
}
