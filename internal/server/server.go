// Package server provides a small HTTP server for previewing a generated
// pyramid folder. It only serves files that already exist on disk; tiles
// are never generated on demand.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Server serves one generated target directory.
type Server struct {
	dir       string
	version   string
	startTime time.Time
	log       logrus.FieldLogger
}

// New creates a server for the given directory. A nil logger falls back
// to the logrus standard logger.
func New(dir, version string, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		dir:       dir,
		version:   version,
		startTime: time.Now(),
		log:       logger,
	}
}

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    int       `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler builds the chi router: request logging and recovery middleware,
// a JSON health endpoint and a static file server rooted at the target
// directory.
func (s *Server) Handler(timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/healthz", s.getHealth)
	r.Handle("/*", http.FileServer(http.Dir(s.dir)))

	return r
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Version:   s.version,
		Uptime:    int(time.Since(s.startTime).Seconds()),
		Timestamp: time.Now(),
	}
	if _, err := os.Stat(s.dir); err != nil {
		resp.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Errorf("encode health response: %v", err)
	}
}
