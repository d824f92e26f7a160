// Package http serves the sandbox backend: the Courtside API endpoints the
// client uses, backed by an in-memory store.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/sandbox"
)

func NewServer(backend *sandbox.Backend, metricsSvc metrics.Metrics, metricsHandler http.Handler, secret string) *Server {
	server := &Server{
		Backend:        backend,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Secret:         secret,
		Router:         chi.NewRouter(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	s.Router.Use(middleware.Recoverer, requestLogger, s.instrument)

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Get("/health", s.HealthCheckHandler())
	s.Router.Get("/api/sandbox/tokens", s.DevTokensHandler())

	// Everything under /api needs a bearer token, e.g. Chain(h, s.guard).
	s.Router.Method(http.MethodGet, "/api/players", Chain(s.ListPlayersHandler(), s.guard))
	s.Router.Method(http.MethodGet, "/api/matches/pending", Chain(s.PendingMatchesHandler(), s.guard))
	s.Router.Method(http.MethodPost, "/api/matches", Chain(s.SubmitMatchHandler(), s.guard))
	s.Router.Method(http.MethodPost, "/api/matches/invite", Chain(s.InviteHandler(), s.guard))
	s.Router.Method(http.MethodPost, "/api/matches/{matchID}/confirm", Chain(s.ConfirmMatchHandler(), s.guard))
	s.Router.Method(http.MethodPost, "/api/matches/{matchID}/reject", Chain(s.RejectMatchHandler(), s.guard))
	s.Router.Method(http.MethodPut, "/api/matches/{matchID}", Chain(s.EditMatchHandler(), s.guard))
	s.Router.Method(http.MethodDelete, "/api/matches/{matchID}", Chain(s.DeleteMatchHandler(), s.guard))
	s.Router.Method(http.MethodPost, "/api/matchmaking/find", Chain(s.FindMatchHandler(), s.guard))
	s.Router.Method(http.MethodPost, "/api/matchmaking/leave", Chain(s.LeaveQueueHandler(), s.guard))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
