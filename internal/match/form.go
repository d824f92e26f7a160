// Package match validates a score form and turns it into the payload the
// backend accepts for submitting or editing a match.
package match

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/score"
)

var (
	ErrScoresOutOfRange    = errors.New("set scores must be whole numbers between 0 and 30 in 1 to 3 sets")
	ErrUndeterminedOutcome = errors.New("the score does not determine a winner")
	ErrMissingOpponent     = errors.New("select your opponent")
	ErrMissingPartner      = errors.New("select your partner")
	ErrDuplicatePlayer     = errors.New("a player can only take one slot")
	ErrMissingCurrentUser  = errors.New("current user is unknown")
)

// Form is the state of the score form, seen from the current user's side.
type Form struct {
	MatchID       courtside.ID
	MatchType     courtside.MatchType
	CurrentUserID string
	PartnerID     string
	OpponentIDs   []string
	Sets          []score.SetScore
	// Outcome is a manually confirmed result. It is only used when the sets
	// alone leave the result open and the user confirmed a draw.
	Outcome score.Outcome
}

// BuildSubmission validates the form and builds the payload. The current
// user's side is always team A.
func BuildSubmission(f Form, policy score.Policy) (courtside.MatchPayload, error) {
	if !score.AreSetsWithinRange(f.Sets) {
		return courtside.MatchPayload{}, ErrScoresOutOfRange
	}

	outcome := policy.DetermineOutcome(f.Sets)
	if outcome == score.OutcomeUndetermined && f.Outcome == score.OutcomeDraw {
		outcome = score.OutcomeDraw
	}
	if outcome == score.OutcomeUndetermined {
		return courtside.MatchPayload{}, ErrUndeterminedOutcome
	}

	teamA, teamB, err := f.sides()
	if err != nil {
		return courtside.MatchPayload{}, err
	}

	payload := courtside.MatchPayload{
		Discipline:   f.MatchType,
		MatchType:    f.MatchType,
		PlayersTeamA: teamA,
		PlayersTeamB: teamB,
		Score:        score.FormatSetsScore(f.Sets),
		WinnerTeam:   string(outcome),
	}
	log.Debug("Built match submission", "match_type", f.MatchType, "score", payload.Score, "winner", payload.WinnerTeam)
	return payload, nil
}

func (f Form) sides() ([]string, []string, error) {
	me := strings.TrimSpace(f.CurrentUserID)
	if me == "" {
		return nil, nil, ErrMissingCurrentUser
	}

	opponents := make([]string, 0, len(f.OpponentIDs))
	for _, id := range f.OpponentIDs {
		if id = strings.TrimSpace(id); id != "" {
			opponents = append(opponents, id)
		}
	}

	teamA := []string{me}
	switch f.MatchType {
	case courtside.MatchTypeDoubles:
		partner := strings.TrimSpace(f.PartnerID)
		if partner == "" {
			return nil, nil, ErrMissingPartner
		}
		if len(opponents) < 2 {
			return nil, nil, ErrMissingOpponent
		}
		teamA = append(teamA, partner)
		opponents = opponents[:2]
	default:
		if len(opponents) < 1 {
			return nil, nil, ErrMissingOpponent
		}
		opponents = opponents[:1]
	}

	seen := make(map[string]bool, len(teamA)+len(opponents))
	for _, id := range append(append([]string{}, teamA...), opponents...) {
		if seen[id] {
			return nil, nil, ErrDuplicatePlayer
		}
		seen[id] = true
	}
	return teamA, opponents, nil
}
