package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/mauv0809/courtside/internal/sandbox"
)

const devTokenTTL = 24 * time.Hour

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// DevTokensHandler issues a token for every known player so the sandbox can
// be driven without a login flow.
func (s *Server) DevTokensHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out []devToken
		for _, p := range s.Backend.Players() {
			tok, err := auth.Issue(s.Secret, players.Player{AuthID: p.AuthID, Username: p.Username}, devTokenTTL)
			if err != nil {
				log.Error("Failed to issue token", "player", p.AuthID, "error", err)
				writeError(w, err)
				return
			}
			out = append(out, devToken{AuthID: p.AuthID, Username: p.Username, Token: tok})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Backend.Players())
	}
}

func (s *Server) PendingMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r)
		writeJSON(w, http.StatusOK, s.Backend.Pending(user.AuthID))
	}
}

func (s *Server) SubmitMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r)
		var payload courtside.MatchPayload
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, fmt.Errorf("%w: %w", sandbox.ErrInvalid, err))
			return
		}
		match, err := s.Backend.Submit(user.AuthID, payload)
		if err != nil {
			writeError(w, err)
			return
		}
		s.countAction("submit")
		writeJSON(w, http.StatusCreated, match)
	}
}

func (s *Server) ConfirmMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r)
		feedback, err := s.Backend.Confirm(user.AuthID, chi.URLParam(r, "matchID"))
		if err != nil {
			writeError(w, err)
			return
		}
		s.countAction("confirm")
		writeJSON(w, http.StatusOK, feedback)
	}
}

func (s *Server) RejectMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r)
		if err := s.Backend.Reject(user.AuthID, chi.URLParam(r, "matchID")); err != nil {
			writeError(w, err)
			return
		}
		s.countAction("reject")
		writeJSON(w, http.StatusOK, statusResponse{Status: string(sandbox.StatusRejected)})
	}
}

func (s *Server) EditMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r)
		var payload courtside.MatchPayload
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, fmt.Errorf("%w: %w", sandbox.ErrInvalid, err))
			return
		}
		match, err := s.Backend.Edit(user.AuthID, chi.URLParam(r, "matchID"), payload)
		if err != nil {
			writeError(w, err)
			return
		}
		s.countAction("edit")
		writeJSON(w, http.StatusOK, match)
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r)
		if err := s.Backend.Delete(user.AuthID, chi.URLParam(r, "matchID")); err != nil {
			writeError(w, err)
			return
		}
		s.countAction("delete")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) FindMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r)
		mode, err := s.decodeMode(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if s.Metrics != nil {
			s.Metrics.IncMatchmakingPolls(string(mode))
		}
		writeJSON(w, http.StatusOK, s.Backend.Find(user.AuthID, mode))
	}
}

func (s *Server) LeaveQueueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r)
		mode, err := s.decodeMode(r)
		if err != nil {
			writeError(w, err)
			return
		}
		s.Backend.Leave(user.AuthID, mode)
		writeJSON(w, http.StatusOK, statusResponse{Status: "left"})
	}
}

func (s *Server) InviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r)
		var req courtside.InviteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, fmt.Errorf("%w: %w", sandbox.ErrInvalid, err))
			return
		}
		invite, err := s.Backend.Invite(user.AuthID, req)
		if err != nil {
			writeError(w, err)
			return
		}
		if s.Metrics != nil {
			s.Metrics.IncInvitesSent(string(req.Mode))
		}
		writeJSON(w, http.StatusCreated, invite)
	}
}

func (s *Server) decodeMode(r *http.Request) (courtside.MatchType, error) {
	var body modeRequest
	if err := decodeJSON(r, &body); err != nil {
		return "", fmt.Errorf("%w: %w", sandbox.ErrInvalid, err)
	}
	mode, err := courtside.ParseMatchType(body.Mode)
	if err != nil {
		return "", fmt.Errorf("%w: %w", sandbox.ErrInvalid, err)
	}
	return mode, nil
}

func (s *Server) countAction(action string) {
	if s.Metrics != nil {
		s.Metrics.IncMatchActions(action)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeError maps backend errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, sandbox.ErrInvalid):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, sandbox.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, sandbox.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, sandbox.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Message: err.Error(), Code: code})
}
