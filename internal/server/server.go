// Package server exposes the dispatcher over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/satzbau/internal/dispatch"
	"github.com/abhisek/satzbau/internal/logging"
)

// MaxBodyBytes caps the size of a request body.
const MaxBodyBytes = 1 << 20

// Server serves the single RPC endpoint.
type Server struct {
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// New returns a Server routing requests to d.
func New(d *dispatch.Dispatcher, logger *slog.Logger) *Server {
	logger = logging.OrDefault(logger)
	return &Server{dispatcher: d, logger: logger}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/api/llm", s.handleLLM)
	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "German sentence practice backend is running!")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLLM(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dispatch.Failure{Error: fmt.Sprintf("read request: %v", err)})
		return
	}

	result, fail := s.dispatcher.Handle(r.Context(), body)
	if fail != nil {
		writeJSON(w, http.StatusInternalServerError, fail)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// loggingMiddleware logs each request with its status and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		attrs := []any{
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"size", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case ww.Status() >= 500:
			s.logger.Error("request completed with server error", attrs...)
		case ww.Status() >= 400:
			s.logger.Warn("request completed with client error", attrs...)
		default:
			s.logger.Info("request completed", attrs...)
		}
	})
}
