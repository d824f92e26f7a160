package sandbox

import (
	"errors"
	"time"

	"github.com/mauv0809/courtside/internal/courtside"
)

// Rating constants.
const (
	InitialElo = 1500
	EloK       = 32
	// suggestionRange is the first Elo window searched for suggestions.
	suggestionRange = 150
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid request")
)

// Player is a registered player with its rating.
type Player struct {
	AuthID   string  `json:"auth_id"`
	Username string  `json:"username"`
	Elo      float64 `json:"elo"`
}

// MatchStatus is the lifecycle state of a submitted match.
type MatchStatus string

const (
	StatusPending   MatchStatus = "pending"
	StatusConfirmed MatchStatus = "confirmed"
	StatusRejected  MatchStatus = "rejected"
)

// Match is a submitted result.
type Match struct {
	ID          string
	Type        courtside.MatchType
	TeamA       []string
	TeamB       []string
	Score       string
	Winner      string
	SubmittedBy string
	Status      MatchStatus
	CreatedAt   time.Time
}

func (m *Match) involves(userID string) bool {
	return contains(m.TeamA, userID) || contains(m.TeamB, userID)
}

type invite struct {
	courtside.Invite
	mode courtside.MatchType
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
