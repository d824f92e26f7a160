package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/players"
)

// Middleware defines the standard signature for an HTTP middleware.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middlewares into a single handler.
// The middlewares are applied in the order they are passed.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// contextKey is a custom type to avoid key collisions in context.
type contextKey string

const userKey contextKey = "user"

// requestLogger logs every request. verbose=true turns on debug logging
// for the duration of the request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("incoming request", "method", r.Method, "url", r.URL.String(), "requestID", r.Header.Get("X-Request-ID"))
		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(originalLevel)
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records the outcome and latency of every API request under
// its route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if s.Metrics == nil || !strings.HasPrefix(r.URL.Path, "/api/") {
			return
		}
		op := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			op = r.Method + " " + rctx.RoutePattern()
		}
		outcome := metrics.OutcomeSuccess
		if ww.Status() >= http.StatusBadRequest {
			outcome = metrics.OutcomeAPIError
		}
		s.Metrics.ObserveAPIRequest(op, outcome, time.Since(start).Seconds())
	})
}

// guard rejects requests without a valid bearer token and puts the caller
// in the request context.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authz, "Bearer ")
		if authz == "" || !ok || strings.TrimSpace(token) == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Authentication token missing", Code: "unauthorized"})
			return
		}
		user, err := auth.Verify(s.Secret, strings.TrimSpace(token))
		if err != nil {
			log.Debug("Rejected token", "error", err)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Invalid token", Code: "unauthorized"})
			return
		}
		s.Backend.Register(user)
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFromContext returns the caller set by guard.
func userFromContext(r *http.Request) (players.Player, bool) {
	user, ok := r.Context().Value(userKey).(players.Player)
	return user, ok
}
