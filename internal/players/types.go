package players

import (
	"errors"
	"fmt"
)

// Team is the side of a match a player is on. The empty Team means unassigned.
type Team string

const (
	TeamNone Team = ""
	TeamA    Team = "A"
	TeamB    Team = "B"
)

// Other returns the opposing team. TeamNone has no opponent.
func (t Team) Other() Team {
	switch t {
	case TeamA:
		return TeamB
	case TeamB:
		return TeamA
	default:
		return TeamNone
	}
}

// Player is the canonical shape of a player reference, whatever endpoint it
// came from.
type Player struct {
	AuthID   string
	Username string
	Team     Team
	// Raw holds the original fields. It is nil when the player was given as a
	// bare identifier.
	Raw map[string]any
}

// Teams is a match's players split by side.
type Teams struct {
	A []Player
	B []Player
}

// All returns team A followed by team B.
func (t Teams) All() []Player {
	all := make([]Player, 0, len(t.A)+len(t.B))
	all = append(all, t.A...)
	return append(all, t.B...)
}

// Side returns the players of the given team.
func (t Teams) Side(team Team) []Player {
	switch team {
	case TeamA:
		return t.A
	case TeamB:
		return t.B
	default:
		return nil
	}
}

// DefaultDisplayName is used when a player reference carries no name.
const DefaultDisplayName = "Player"

// ErrNoIdentifier is returned when a player reference has none of the known
// identifier fields.
var ErrNoIdentifier = errors.New("player reference has no identifier")

// DecodeError describes a player payload that could not be decoded.
type DecodeError struct {
	Value any
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode player %v: %s", e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// identifier and name fields in probing order. Dotted entries are nested
// under "user".
var (
	idFields = []string{
		"auth_id", "user_id", "id", "profile_id", "player_auth_id", "player_id",
		"user.auth_id", "user.id",
	}
	nameFields = []string{
		"username", "display_name", "name", "user.username", "user.display_name",
		"player_name", "player_username", "email",
	}
	teamFields = []string{"team", "team_side", "side"}

	teamAKeys = []string{"team_A", "teamA", "players_team_A", "players_team_a"}
	teamBKeys = []string{"team_B", "teamB", "players_team_B", "players_team_b"}
)
