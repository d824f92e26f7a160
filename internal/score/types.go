package score

import (
	"math"
	"strconv"
)

// Points is one side's games in a set. The zero value is blank, which is how
// an untouched score input is represented.
type Points struct {
	value float64
	valid bool
}

// Blank is an empty score input.
var Blank = Points{}

// Games returns a filled score input. Non-finite values are treated as blank.
func Games(n float64) Points {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Blank
	}
	return Points{value: n, valid: true}
}

// Value returns the number of games and whether the input is filled.
func (p Points) Value() (float64, bool) {
	return p.value, p.valid
}

// IsBlank reports whether the input is empty.
func (p Points) IsBlank() bool {
	return !p.valid
}

// Int returns the games as an int when the input is filled with a whole number.
func (p Points) Int() (int, bool) {
	if !p.valid || p.value != math.Trunc(p.value) {
		return 0, false
	}
	return int(p.value), true
}

func (p Points) String() string {
	if !p.valid {
		return ""
	}
	return strconv.FormatFloat(p.value, 'f', -1, 64)
}

// SetScore is a set seen from the current user's side.
type SetScore struct {
	Your     Points
	Opponent Points
}

// TeamSetScore is a set as stored by the backend, by team.
type TeamSetScore struct {
	TeamA Points
	TeamB Points
}

// Oriented converts a stored set to the perspective of a user on team A
// (onTeamA) or team B.
func (t TeamSetScore) Oriented(onTeamA bool) SetScore {
	if onTeamA {
		return SetScore{Your: t.TeamA, Opponent: t.TeamB}
	}
	return SetScore{Your: t.TeamB, Opponent: t.TeamA}
}

// Outcome is the result of a match. The empty Outcome means undetermined.
type Outcome string

const (
	OutcomeUndetermined Outcome = ""
	OutcomeA            Outcome = "A"
	OutcomeB            Outcome = "B"
	OutcomeDraw         Outcome = "draw"
)

// Policy decides how matches with exactly two sets are resolved.
type Policy int

const (
	// PolicyLenientTwoSets always reports an outcome for two sets: the set
	// majority when there is one, a draw otherwise. This is the behaviour
	// the production backend has been receiving.
	PolicyLenientTwoSets Policy = iota
	// PolicyStrictTwoSets resolves two sets like one and three: every set
	// needs a winner and a 1-1 split is undetermined.
	PolicyStrictTwoSets
)

func (p Policy) String() string {
	switch p {
	case PolicyStrictTwoSets:
		return "strict"
	default:
		return "lenient"
	}
}

const (
	MinSets   = 1
	MaxSets   = 3
	MinPoints = 0
	MaxPoints = 30
)
