package matchmaking

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/players"
)

// SuggestionsSnapshot is the observable state of a SuggestionsLobby.
type SuggestionsSnapshot struct {
	Mode            courtside.MatchType
	State           State
	Recommendations []map[string]any
	Criteria        *courtside.Criteria
	Index           int
	Err             error
	ActionErr       error
	Message         string
}

// SuggestionsLobby fetches ranked opponent suggestions in one request and
// lets the user browse them and invite one.
type SuggestionsLobby struct {
	cfg Config

	mu        sync.Mutex
	mode      courtside.MatchType
	state     State
	recs      []map[string]any
	criteria  *courtside.Criteria
	index     int
	err       error
	actionErr error
	message   string
	requested bool
	gen       int

	// life is cancelled by Close; loads in flight are tracked so the queue
	// is only left once they are done.
	life     context.Context
	stop     context.CancelFunc
	inflight sync.WaitGroup
}

// NewSuggestionsLobby creates an idle lobby for mode.
func NewSuggestionsLobby(cfg Config, mode courtside.MatchType) *SuggestionsLobby {
	life, stop := context.WithCancel(context.Background())
	return &SuggestionsLobby{cfg: cfg, mode: mode, state: StateIdle, life: life, stop: stop}
}

// Load requests suggestions. Only the latest request may change the state.
func (s *SuggestionsLobby) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrLobbyClosed
	}
	s.gen++
	gen, mode := s.gen, s.mode
	s.state = StateLoading
	s.err = nil
	s.requested = true
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(s.life, cancel)()

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.IncMatchmakingPolls(string(mode))
	}
	result, err := s.cfg.API.FindMatch(ctx, s.cfg.Token, mode)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed || gen != s.gen {
		log.Debug("Dropping stale suggestions response", "mode", mode)
		return nil
	}
	if err != nil {
		log.Warn("Failed to load suggestions", "mode", mode, "error", err)
		s.err = err
		s.state = StateError
		return err
	}

	recs := result.Recommendations
	if result.State == courtside.FindStateMatched && len(recs) == 0 {
		if opponent, ok := result.OpponentPayload().(map[string]any); ok {
			recs = []map[string]any{opponent}
		}
	}
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	s.recs = recs
	s.criteria = result.Criteria
	s.index = 0
	if len(recs) == 0 {
		s.state = StateNoSuggestions
	} else {
		s.state = StateSuggested
	}
	log.Info("Loaded suggestions", "mode", mode, "count", len(recs), "state", s.state)
	return nil
}

// Refresh re-issues the suggestions request.
func (s *SuggestionsLobby) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// SetMode leaves the old mode's queue and loads suggestions for mode.
func (s *SuggestionsLobby) SetMode(ctx context.Context, mode courtside.MatchType) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrLobbyClosed
	}
	old, requested := s.mode, s.requested
	s.mode = mode
	s.requested = false
	s.mu.Unlock()

	if requested && old != mode {
		leaveQueue(s.cfg, old)
	}
	return s.Load(ctx)
}

// Next selects the next suggestion, wrapping around.
func (s *SuggestionsLobby) Next() (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recs) == 0 {
		return nil, false
	}
	s.index = (s.index + 1) % len(s.recs)
	return s.recs[s.index], true
}

// Select picks the suggestion at i.
func (s *SuggestionsLobby) Select(i int) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.recs) {
		return nil, false
	}
	s.index = i
	return s.recs[i], true
}

// Current returns the selected suggestion.
func (s *SuggestionsLobby) Current() (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recs) == 0 {
		return nil, false
	}
	return s.recs[s.index], true
}

// Snapshot returns the current state.
func (s *SuggestionsLobby) Snapshot() SuggestionsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SuggestionsSnapshot{
		Mode:            s.mode,
		State:           s.state,
		Recommendations: append([]map[string]any(nil), s.recs...),
		Criteria:        s.criteria,
		Index:           s.index,
		Err:             s.err,
		ActionErr:       s.actionErr,
		Message:         s.message,
	}
}

// SendInvite invites the selected suggestion and closes the lobby. An
// incomplete roster is reported without sending anything.
func (s *SuggestionsLobby) SendInvite(ctx context.Context) (courtside.Invite, error) {
	rec, ok := s.Current()
	if !ok {
		return courtside.Invite{}, ErrNoRecommendation
	}
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()

	roster, err := BuildInvitePlayers(mode, s.cfg.CurrentUser, rec)
	if err != nil {
		s.setActionErr(err)
		return courtside.Invite{}, err
	}
	invite, err := sendInvite(ctx, s.cfg, courtside.InviteRequest{Mode: mode, Players: roster})
	if err != nil {
		s.setActionErr(err)
		return courtside.Invite{}, err
	}

	s.mu.Lock()
	s.actionErr = nil
	s.message = inviteSentMessage
	s.mu.Unlock()
	s.Close()
	return invite, nil
}

// Close leaves the queue once if suggestions were ever requested, after any
// load in flight has returned. Calling Close again does nothing.
func (s *SuggestionsLobby) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	mode, requested := s.mode, s.requested
	s.stop()
	s.mu.Unlock()
	s.inflight.Wait()

	if requested {
		leaveQueue(s.cfg, mode)
	}
}

func (s *SuggestionsLobby) setActionErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionErr = err
}

// Describe renders a suggestion as "name (Elo 1510)", listing partner and
// opponents for doubles suggestions.
func Describe(rec map[string]any) string {
	name := players.PlayerDisplayName(rec)
	if partner, ok := rec["partner"]; ok && partner != nil {
		opponents := players.NormalizeTeam(rec["opponents"], players.TeamB)
		name = fmt.Sprintf("with %s vs %s", players.PlayerDisplayName(partner), players.FormatTeamNames(opponents, ""))
	} else if teams := players.NormalizeMatchPlayers(rec); len(teams.All()) > 0 {
		name = fmt.Sprintf("%s vs %s", players.FormatTeamNames(teams.A, ""), players.FormatTeamNames(teams.B, ""))
	}
	for _, key := range []string{"elo", "rating", "elo_rating"} {
		if elo, ok := rec[key].(float64); ok {
			return fmt.Sprintf("%s (Elo %.0f)", name, math.Round(elo))
		}
	}
	return strings.TrimSpace(name)
}
