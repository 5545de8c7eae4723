package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct{ mux *chi.Mux }

// New builds the router. Forwarding headers (X-Forwarded-For, X-Real-IP) only replace
// the client address when trustProxy is set, i.e. the API sits behind a proxy that
// overwrites them.
func New(timeout time.Duration, trustProxy bool) *Server {
	m := chi.NewRouter()

	// All middlewares go here (before any routes are added)
	if trustProxy {
		m.Use(chimw.RealIP)
	}
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(timeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
