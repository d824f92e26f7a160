package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/sandbox"
)

type Server struct {
	Backend        *sandbox.Backend
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Secret         string
	Router         chi.Router
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type devToken struct {
	AuthID   string `json:"auth_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}
