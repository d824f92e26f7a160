package score

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSetsScore renders sets as the canonical score string, e.g. "6-4, 3-6, 10-8".
// It does not validate.
func FormatSetsScore(sets []SetScore) string {
	parts := make([]string, 0, len(sets))
	for _, set := range sets {
		parts = append(parts, fmt.Sprintf("%s-%s", set.Your, set.Opponent))
	}
	return strings.Join(parts, ", ")
}

// ParseScoreToSets is the inverse of FormatSetsScore. Sides that are not
// numbers come back blank and sets with both sides blank are dropped.
func ParseScoreToSets(score string) []TeamSetScore {
	var sets []TeamSetScore
	for _, part := range strings.Split(score, ",") {
		sides := strings.Split(part, "-")
		set := TeamSetScore{TeamA: parsePoints(sides[0])}
		if len(sides) > 1 {
			set.TeamB = parsePoints(sides[1])
		}
		if set.TeamA.IsBlank() && set.TeamB.IsBlank() {
			continue
		}
		sets = append(sets, set)
	}
	return sets
}

func parsePoints(s string) Points {
	s = strings.TrimSpace(s)
	if s == "" {
		return Blank
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Blank
	}
	return Games(n)
}

// AreSetsWithinRange reports whether there are one to three sets and every
// side holds a whole number between 0 and 30.
func AreSetsWithinRange(sets []SetScore) bool {
	if len(sets) < MinSets || len(sets) > MaxSets {
		return false
	}
	for _, set := range sets {
		if !pointsInRange(set.Your) || !pointsInRange(set.Opponent) {
			return false
		}
	}
	return true
}

func pointsInRange(p Points) bool {
	n, ok := p.Int()
	return ok && n >= MinPoints && n <= MaxPoints
}

// DetermineOutcomeFromSets infers the winner with PolicyLenientTwoSets.
func DetermineOutcomeFromSets(sets []SetScore) Outcome {
	return PolicyLenientTwoSets.DetermineOutcome(sets)
}

// DetermineOutcome infers the winner of a match from its sets. Side A is the
// current user's side.
func (p Policy) DetermineOutcome(sets []SetScore) Outcome {
	if len(sets) < MinSets || len(sets) > MaxSets {
		return OutcomeUndetermined
	}

	winners := make([]Outcome, 0, len(sets))
	for _, set := range sets {
		winners = append(winners, setWinner(set))
	}

	if len(sets) == 2 && p == PolicyLenientTwoSets {
		a, b := count(winners)
		switch {
		case a > b:
			return OutcomeA
		case b > a:
			return OutcomeB
		default:
			return OutcomeDraw
		}
	}

	for _, w := range winners {
		if w == OutcomeUndetermined {
			return OutcomeUndetermined
		}
	}

	a, b := count(winners)
	switch {
	case a > b:
		return OutcomeA
	case b > a:
		return OutcomeB
	default:
		return OutcomeUndetermined
	}
}

func setWinner(set SetScore) Outcome {
	your, okYour := set.Your.Value()
	opp, okOpp := set.Opponent.Value()
	if !okYour || !okOpp {
		return OutcomeUndetermined
	}
	switch {
	case your > opp:
		return OutcomeA
	case opp > your:
		return OutcomeB
	default:
		return OutcomeUndetermined
	}
}

func count(winners []Outcome) (a, b int) {
	for _, w := range winners {
		switch w {
		case OutcomeA:
			a++
		case OutcomeB:
			b++
		}
	}
	return a, b
}
