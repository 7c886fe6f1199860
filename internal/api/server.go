// Package api exposes the analytics service over a thin HTTP layer. All
// retrieval policy (time-range to window/file-count mapping) lives here;
// the layers below only see explicit numbers.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OskariKosonen/hunajapannu/pkg/hunajapannu"
)

// Server routes HTTP requests to the analytics service.
type Server struct {
	r   *chi.Mux
	svc *hunajapannu.Service
	log *slog.Logger
}

// NewServer creates the router with its middleware chain.
func NewServer(svc *hunajapannu.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{r: chi.NewRouter(), svc: svc, log: log}

	s.r.Use(requestID)
	s.r.Use(s.observe)
	s.r.Use(middleware.Recoverer)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.Route("/api", func(r chi.Router) {
		r.Get("/logs", s.getLogs)
		r.Get("/analytics", s.getAnalytics)
		r.Get("/validate", s.getValidate)
		r.Get("/test-connection", s.getTestConnection)
		r.Get("/files", s.getFiles)
	})
	s.r.Get("/healthz", s.getHealthz)
	s.r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.r }
