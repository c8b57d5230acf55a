package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"vodkeep/internal/api"
	"vodkeep/internal/jobs"
	"vodkeep/internal/logging"
	"vodkeep/internal/services"
	"vodkeep/internal/version"
)

// APIServer serves the local status-query surface over HTTP.
type APIServer struct {
	service *api.Service
	logger  *slog.Logger
	server  *http.Server
	addr    string
}

// NewAPIServer builds the server for the given bind address.
func NewAPIServer(bind string, service *api.Service, logger *slog.Logger) *APIServer {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &APIServer{service: service, logger: logger}
	s.server = &http.Server{
		Addr:              bind,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *APIServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /jobs", s.handleSubmit)
	mux.HandleFunc("GET /jobs", s.handleList)
	mux.HandleFunc("GET /jobs/{id}", s.handleGet)
	mux.HandleFunc("GET /jobs/{id}/logs", s.handleLogs)
	return s.withRequestID(mux)
}

// withRequestID tags every request with a correlation id for log
// stitching.
func (s *APIServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Start begins listening. It returns once the listener is bound; serve
// errors are reported through errCh.
func (s *APIServer) Start(errCh chan<- error) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("bind %q: %w", s.server.Addr, err)
	}
	s.addr = listener.Addr().String()
	s.logger.Info("api server listening", logging.String("addr", s.addr))

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return nil
}

// Addr returns the bound address, useful when the configured port is 0.
func (s *APIServer) Addr() string { return s.addr }

// Stop shuts the server down, letting in-flight requests finish.
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, api.HealthResponse{Status: "ok", Version: version.Version})
}

func (s *APIServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req api.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "request body must be JSON with a url field")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, r, http.StatusBadRequest, "url must not be empty")
		return
	}

	resp, err := s.service.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			s.writeError(w, r, http.StatusBadRequest, services.Details(err).Message)
			return
		}
		s.logger.Error("submission failed", logging.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, "could not start processing")
		return
	}
	s.writeJSON(w, r, http.StatusAccepted, resp)
}

func (s *APIServer) handleList(w http.ResponseWriter, r *http.Request) {
	var status jobs.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := jobs.ParseStatus(raw)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}

	resp, err := s.service.List(r.Context(), status)
	if err != nil {
		s.logger.Error("list failed", logging.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, "could not list jobs")
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *APIServer) handleGet(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.service.Describe(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			s.writeError(w, r, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("describe failed", logging.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, "could not read job")
		return
	}
	s.writeJSON(w, r, http.StatusOK, snapshot)
}

func (s *APIServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Logs(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			s.writeError(w, r, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("logs failed", logging.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, "could not read job logs")
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *APIServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(r.Context(), s.logger).Warn("response encoding failed", logging.Error(err))
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeJSON(w, r, status, api.ErrorResponse{Error: message})
}
