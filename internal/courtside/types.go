package courtside

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mauv0809/courtside/internal/players"
)

// MatchType is the discipline of a match. It doubles as the matchmaking mode.
type MatchType string

const (
	MatchTypeSingles MatchType = "singles"
	MatchTypeDoubles MatchType = "doubles"
)

// ParseMatchType validates a discipline given as text.
func ParseMatchType(s string) (MatchType, error) {
	switch MatchType(strings.ToLower(strings.TrimSpace(s))) {
	case MatchTypeSingles:
		return MatchTypeSingles, nil
	case MatchTypeDoubles:
		return MatchTypeDoubles, nil
	}
	return "", fmt.Errorf("unknown match type %q", s)
}

// PlayersPerTeam is the team size of the discipline.
func (t MatchType) PlayersPerTeam() int {
	if t == MatchTypeDoubles {
		return 2
	}
	return 1
}

// ID is an identifier the backend sends either as a string or as a number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// PendingMatch is a submitted result waiting for confirmation.
type PendingMatch struct {
	MatchID         ID        `json:"match_id"`
	MatchType       MatchType `json:"match_type"`
	PlayersTeamA    []any     `json:"players_team_A"`
	PlayersTeamB    []any     `json:"players_team_B"`
	Score           string    `json:"score"`
	CreatedAt       string    `json:"created_at"`
	SubmittedByUser any       `json:"submitted_by_user,omitempty"`
	// Raw keeps the payload as received so team arrays under other key
	// variants are not lost.
	Raw map[string]any `json:"-"`
}

func (m *PendingMatch) UnmarshalJSON(data []byte) error {
	type plain PendingMatch
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = PendingMatch(p)
	m.Raw = raw
	if m.MatchID == "" {
		if id, ok := players.PlayerAuthID(raw["id"]); ok {
			m.MatchID = ID(id)
		}
	}
	return nil
}

// Teams returns the match's players split by side.
func (m PendingMatch) Teams() players.Teams {
	if m.Raw != nil {
		return players.NormalizeMatchPlayers(m.Raw)
	}
	return players.Teams{
		A: players.NormalizeTeam(m.PlayersTeamA, players.TeamA),
		B: players.NormalizeTeam(m.PlayersTeamB, players.TeamB),
	}
}

// SubmittedByID is the identifier of the player who submitted the match.
func (m PendingMatch) SubmittedByID() string {
	id, _ := players.PlayerAuthID(m.SubmittedByUser)
	return id
}

// PendingMatches is the response of GET /api/matches/pending.
type PendingMatches struct {
	Incoming []PendingMatch `json:"incoming"`
	Outgoing []PendingMatch `json:"outgoing"`
}

// EloChange is one player's rating movement after a confirmation.
type EloChange struct {
	PlayerID    ID      `json:"playerId"`
	Username    string  `json:"username,omitempty"`
	PreviousElo float64 `json:"previousElo"`
	NewElo      float64 `json:"newElo"`
	Change      float64 `json:"change"`
}

// UpdatedElos groups the rating changes by side.
type UpdatedElos struct {
	SideA []EloChange `json:"sideA"`
	SideB []EloChange `json:"sideB"`
}

// RankChange is one player's leaderboard movement after a confirmation.
type RankChange struct {
	PlayerID     ID   `json:"playerId"`
	NewRank      int  `json:"newRank"`
	PreviousRank *int `json:"previousRank"`
	RankChange   int  `json:"rankChange"`
}

// ConfirmationFeedback is returned when a match is confirmed and the
// ratings have been applied.
type ConfirmationFeedback struct {
	UpdatedElos UpdatedElos  `json:"updated_elos"`
	Ranks       []RankChange `json:"ranks"`
}

// MatchPayload is the body for submitting or editing a match.
type MatchPayload struct {
	Discipline   MatchType `json:"discipline"`
	MatchType    MatchType `json:"match_type"`
	PlayersTeamA []string  `json:"players_team_A"`
	PlayersTeamB []string  `json:"players_team_B"`
	Score        string    `json:"score"`
	WinnerTeam   string    `json:"winner_team"`
}

// FindState is the state reported by the matchmaking endpoint.
type FindState string

const (
	FindStateSearching     FindState = "searching"
	FindStateMatched       FindState = "matched"
	FindStateSuggested     FindState = "suggested"
	FindStateNoSuggestions FindState = "no_suggestions"
)

// Criteria describes the rating window used to pick recommendations.
type Criteria struct {
	TargetElo float64 `json:"target_elo"`
	Range     float64 `json:"range"`
	MinElo    float64 `json:"min_elo,omitempty"`
	MaxElo    float64 `json:"max_elo,omitempty"`
}

// FindResult is the response of POST /api/matchmaking/find.
type FindResult struct {
	State           FindState        `json:"state"`
	Opponent        any              `json:"opponent,omitempty"`
	Match           any              `json:"match,omitempty"`
	Recommendations []map[string]any `json:"recommendations,omitempty"`
	Criteria        *Criteria        `json:"criteria,omitempty"`
	Raw             map[string]any   `json:"-"`
}

func (r *FindResult) UnmarshalJSON(data []byte) error {
	type plain FindResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = FindResult(p)
	r.Raw = raw
	return nil
}

// OpponentPayload returns the matched opponent, read from "opponent", then
// "match", then the whole response.
func (r FindResult) OpponentPayload() any {
	if r.Opponent != nil {
		return r.Opponent
	}
	if r.Match != nil {
		return r.Match
	}
	if r.Raw != nil {
		return r.Raw
	}
	return nil
}

// InvitePlayer is one player of an invite with its team tag (1 or 2).
type InvitePlayer struct {
	AuthID   string `json:"auth_id"`
	Username string `json:"username"`
	Team     int    `json:"team"`
}

// InviteRequest is the body of POST /api/matches/invite.
type InviteRequest struct {
	Mode    MatchType      `json:"mode"`
	Players []InvitePlayer `json:"players"`
}

// InviteStatus is the lifecycle state of an invite.
type InviteStatus string

const (
	InviteStatusInvite    InviteStatus = "invite"
	InviteStatusAccepted  InviteStatus = "accepted"
	InviteStatusCancelled InviteStatus = "cancelled"
	InviteStatusDeclined  InviteStatus = "declined"
)

// Invite is a proposed match between specific players.
type Invite struct {
	MatchID     ID           `json:"match_id"`
	Status      InviteStatus `json:"status"`
	SubmittedBy any          `json:"submitted_by"`
	AcceptedBy  any          `json:"accepted_by,omitempty"`
	CreatedAt   string       `json:"created_at"`
	Players     []any        `json:"players"`
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
	Payload map[string]any
}

func (e *APIError) Error() string {
	return e.Message
}

const defaultErrorMessage = "Failed to process request"

func newAPIError(status int, payload map[string]any) *APIError {
	e := &APIError{Status: status, Message: defaultErrorMessage, Payload: payload}
	if msg, ok := payload["message"]; ok && msg != nil {
		e.Message = fmt.Sprint(msg)
	} else if msg, ok := payload["error"]; ok && msg != nil {
		e.Message = fmt.Sprint(msg)
	}
	switch code := payload["code"].(type) {
	case string:
		e.Code = code
	case float64:
		e.Code = strconv.FormatFloat(code, 'f', -1, 64)
	}
	return e
}
