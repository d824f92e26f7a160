package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/pending"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/mauv0809/courtside/internal/score"
	"github.com/mauv0809/courtside/internal/session"
)

var errAmbiguousID = errors.New("match id prefix matches more than one match")

// parseSets reads "--set 6-4" values, each seen from the current user's side.
func parseSets(values []string) ([]score.SetScore, error) {
	sets := make([]score.SetScore, 0, len(values))
	for _, v := range values {
		your, opponent, ok := strings.Cut(strings.TrimSpace(v), "-")
		if !ok {
			return nil, fmt.Errorf("set %q must look like 6-4", v)
		}
		y, err := strconv.Atoi(strings.TrimSpace(your))
		if err != nil {
			return nil, fmt.Errorf("set %q: %w", v, err)
		}
		o, err := strconv.Atoi(strings.TrimSpace(opponent))
		if err != nil {
			return nil, fmt.Errorf("set %q: %w", v, err)
		}
		sets = append(sets, score.SetScore{Your: score.Games(float64(y)), Opponent: score.Games(float64(o))})
	}
	return sets, nil
}

// resolveMatchID accepts a full id or a unique prefix of a listed match.
func resolveMatchID(view pending.View, arg string) (courtside.ID, error) {
	var found []courtside.ID
	for _, list := range [][]courtside.PendingMatch{view.Incoming, view.Outgoing} {
		for _, m := range list {
			if m.MatchID.String() == arg {
				return m.MatchID, nil
			}
			if strings.HasPrefix(m.MatchID.String(), arg) {
				found = append(found, m.MatchID)
			}
		}
	}
	switch len(found) {
	case 0:
		return courtside.ID(arg), nil
	case 1:
		return found[0], nil
	}
	return "", errAmbiguousID
}

func printPending(w io.Writer, view pending.View, userID string) {
	section := func(title string, list []courtside.PendingMatch) {
		fmt.Fprintf(w, "%s (%d)\n", title, len(list))
		for _, m := range list {
			teams := m.Teams()
			fmt.Fprintf(w, "  %-8s %-7s %s vs %s  %s\n",
				shortID(m.MatchID), m.MatchType,
				players.FormatTeamNames(teams.A, userID),
				players.FormatTeamNames(teams.B, userID),
				m.Score)
		}
	}
	section("Waiting for you", view.Incoming)
	section("Waiting for your opponents", view.Outgoing)
}

func printFeedback(w io.Writer, fb *courtside.ConfirmationFeedback) {
	if fb == nil {
		fmt.Fprintln(w, "Match confirmed")
		return
	}
	fmt.Fprintln(w, "Match confirmed! Rating changes:")
	for _, side := range [][]courtside.EloChange{fb.UpdatedElos.SideA, fb.UpdatedElos.SideB} {
		for _, c := range side {
			name := c.Username
			if name == "" {
				name = c.PlayerID.String()
			}
			fmt.Fprintf(w, "  %-12s %4.0f -> %4.0f (%+.0f)\n", name, c.PreviousElo, c.NewElo, c.Change)
		}
	}
	for _, r := range fb.Ranks {
		if r.PreviousRank == nil {
			fmt.Fprintf(w, "  %s is now ranked #%d\n", shortID(r.PlayerID), r.NewRank)
			continue
		}
		fmt.Fprintf(w, "  %s #%d -> #%d\n", shortID(r.PlayerID), *r.PreviousRank, r.NewRank)
	}
}

func shortID(id courtside.ID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// describeRecovery reports how long a saved recovery session stays usable.
func describeRecovery(rec session.Recovery, now time.Time) string {
	if rec.ExpiresAt <= 0 {
		return "expiry unknown"
	}
	expires := time.Unix(rec.ExpiresAt, 0)
	if !now.Before(expires) {
		return fmt.Sprintf("expired at %s", expires.UTC().Format(time.RFC1123))
	}
	return fmt.Sprintf("valid until %s", expires.UTC().Format(time.RFC1123))
}
