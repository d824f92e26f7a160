// Package sandbox is an in-memory stand-in for the Courtside backend. It
// keeps players, pending matches, the matchmaking queues and invites, and
// applies Elo updates when a match is confirmed.
package sandbox

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/mauv0809/courtside/internal/score"
)

// Backend holds the sandbox state. It is safe for concurrent use.
type Backend struct {
	mu      sync.Mutex
	players map[string]*Player
	matches map[string]*Match
	queues  map[courtside.MatchType][]string
	// matched maps a queued user to the opponent it was paired with.
	matched map[courtside.MatchType]map[string]string
	invites map[string]*invite
	now     func() time.Time
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{
		players: make(map[string]*Player),
		matches: make(map[string]*Match),
		queues:  make(map[courtside.MatchType][]string),
		matched: map[courtside.MatchType]map[string]string{
			courtside.MatchTypeSingles: {},
			courtside.MatchTypeDoubles: {},
		},
		invites: make(map[string]*invite),
		now:     time.Now,
	}
}

// DefaultPlayers is the roster a fresh sandbox is seeded with.
func DefaultPlayers() []Player {
	return []Player{
		{AuthID: "11111111-1111-1111-1111-111111111111", Username: "ana", Elo: 1612},
		{AuthID: "22222222-2222-2222-2222-222222222222", Username: "bea", Elo: 1548},
		{AuthID: "33333333-3333-3333-3333-333333333333", Username: "cy", Elo: 1500},
		{AuthID: "44444444-4444-4444-4444-444444444444", Username: "dan", Elo: 1471},
		{AuthID: "55555555-5555-5555-5555-555555555555", Username: "eve", Elo: 1420},
		{AuthID: "66666666-6666-6666-6666-666666666666", Username: "finn", Elo: 1365},
	}
}

// Seed registers players, replacing any with the same id.
func (b *Backend) Seed(ps ...Player) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range ps {
		if p.Elo == 0 {
			p.Elo = InitialElo
		}
		b.players[p.AuthID] = &p
	}
}

// Register makes sure an authenticated user has a player record.
func (b *Backend) Register(user players.Player) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.players[user.AuthID]; ok {
		return
	}
	b.players[user.AuthID] = &Player{AuthID: user.AuthID, Username: user.Username, Elo: InitialElo}
	log.Info("Registered sandbox player", "id", user.AuthID, "username", user.Username)
}

// Players returns all players ordered by rank.
func (b *Backend) Players() []Player {
	b.mu.Lock()
	defer b.mu.Unlock()
	ranked := b.rankedLocked()
	out := make([]Player, len(ranked))
	for i, p := range ranked {
		out[i] = *p
	}
	return out
}

// Pending lists the pending matches of a user: incoming ones are waiting for
// the user's confirmation, outgoing ones were submitted by the user.
func (b *Backend) Pending(userID string) courtside.PendingMatches {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := courtside.PendingMatches{
		Incoming: []courtside.PendingMatch{},
		Outgoing: []courtside.PendingMatch{},
	}
	for _, m := range b.sortedMatchesLocked() {
		if m.Status != StatusPending || !m.involves(userID) {
			continue
		}
		if m.SubmittedBy == userID {
			res.Outgoing = append(res.Outgoing, b.pendingViewLocked(m))
		} else {
			res.Incoming = append(res.Incoming, b.pendingViewLocked(m))
		}
	}
	return res
}

// Submit records a new pending match on behalf of userID.
func (b *Backend) Submit(userID string, payload courtside.MatchPayload) (courtside.PendingMatch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.validateLocked(userID, payload); err != nil {
		return courtside.PendingMatch{}, err
	}
	m := &Match{
		ID:          uuid.NewString(),
		Type:        matchType(payload),
		TeamA:       payload.PlayersTeamA,
		TeamB:       payload.PlayersTeamB,
		Score:       payload.Score,
		Winner:      payload.WinnerTeam,
		SubmittedBy: userID,
		Status:      StatusPending,
		CreatedAt:   b.now(),
	}
	b.matches[m.ID] = m
	log.Info("Match submitted", "matchID", m.ID, "by", userID, "score", m.Score)
	return b.pendingViewLocked(m), nil
}

// Edit replaces the result of a pending match. Only the submitter may edit.
func (b *Backend) Edit(userID, matchID string, payload courtside.MatchPayload) (courtside.PendingMatch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.ownPendingLocked(userID, matchID)
	if err != nil {
		return courtside.PendingMatch{}, err
	}
	if err := b.validateLocked(userID, payload); err != nil {
		return courtside.PendingMatch{}, err
	}
	m.Type = matchType(payload)
	m.TeamA = payload.PlayersTeamA
	m.TeamB = payload.PlayersTeamB
	m.Score = payload.Score
	m.Winner = payload.WinnerTeam
	log.Info("Match edited", "matchID", m.ID, "score", m.Score)
	return b.pendingViewLocked(m), nil
}

// Delete withdraws a pending match. Only the submitter may delete.
func (b *Backend) Delete(userID, matchID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.ownPendingLocked(userID, matchID); err != nil {
		return err
	}
	delete(b.matches, matchID)
	log.Info("Match deleted", "matchID", matchID)
	return nil
}

// Reject marks an incoming match as rejected.
func (b *Backend) Reject(userID, matchID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.incomingLocked(userID, matchID)
	if err != nil {
		return err
	}
	m.Status = StatusRejected
	log.Info("Match rejected", "matchID", matchID, "by", userID)
	return nil
}

// Confirm accepts an incoming match and applies the rating changes.
func (b *Backend) Confirm(userID, matchID string) (courtside.ConfirmationFeedback, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, err := b.incomingLocked(userID, matchID)
	if err != nil {
		return courtside.ConfirmationFeedback{}, err
	}

	before := b.ranksLocked()
	sideA, sideB := b.applyEloLocked(m)
	after := b.ranksLocked()
	m.Status = StatusConfirmed

	feedback := courtside.ConfirmationFeedback{
		UpdatedElos: courtside.UpdatedElos{SideA: sideA, SideB: sideB},
	}
	for _, id := range append(append([]string{}, m.TeamA...), m.TeamB...) {
		rc := courtside.RankChange{PlayerID: courtside.ID(id), NewRank: after[id]}
		if prev, ok := before[id]; ok {
			rc.PreviousRank = &prev
			rc.RankChange = prev - after[id]
		}
		feedback.Ranks = append(feedback.Ranks, rc)
	}
	log.Info("Match confirmed", "matchID", matchID, "winner", m.Winner)
	return feedback, nil
}

// Find puts userID in the queue for mode. Two queued users are paired and
// both see the other as their opponent. Until then the response carries
// suggestions of players with a similar rating.
func (b *Backend) Find(userID string, mode courtside.MatchType) courtside.FindResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	if opponentID, ok := b.matched[mode][userID]; ok {
		return courtside.FindResult{State: courtside.FindStateMatched, Opponent: b.playerViewLocked(opponentID)}
	}

	queue := b.queues[mode]
	for i, other := range queue {
		if other == userID {
			continue
		}
		b.queues[mode] = append(queue[:i:i], queue[i+1:]...)
		b.removeFromQueueLocked(mode, userID)
		b.matched[mode][other] = userID
		b.matched[mode][userID] = other
		log.Info("Paired players", "mode", mode, "a", userID, "b", other)
		return courtside.FindResult{State: courtside.FindStateMatched, Opponent: b.playerViewLocked(other)}
	}
	if !contains(queue, userID) {
		b.queues[mode] = append(queue, userID)
	}

	recs, criteria := b.suggestLocked(userID, mode)
	if len(recs) == 0 {
		return courtside.FindResult{State: courtside.FindStateNoSuggestions, Criteria: criteria}
	}
	return courtside.FindResult{State: courtside.FindStateSuggested, Recommendations: recs, Criteria: criteria}
}

// Leave removes userID from the queue and any pairing for mode.
func (b *Backend) Leave(userID string, mode courtside.MatchType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeFromQueueLocked(mode, userID)
	delete(b.matched[mode], userID)
}

// Invite creates an invite for a full roster that includes userID.
func (b *Backend) Invite(userID string, req courtside.InviteRequest) (courtside.Invite, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	want := 2 * req.Mode.PlayersPerTeam()
	if req.Mode != courtside.MatchTypeSingles && req.Mode != courtside.MatchTypeDoubles {
		return courtside.Invite{}, fmt.Errorf("%w: unknown mode %q", ErrInvalid, req.Mode)
	}
	// a pairing from the queue invites just the opponent
	if len(req.Players) != want && len(req.Players) != 2 {
		return courtside.Invite{}, fmt.Errorf("%w: %s needs %d players", ErrInvalid, req.Mode, want)
	}
	seen := map[string]bool{}
	perTeam := map[int]int{}
	roster := make([]any, 0, len(req.Players))
	for _, p := range req.Players {
		if _, ok := b.players[p.AuthID]; !ok {
			return courtside.Invite{}, fmt.Errorf("%w: unknown player %s", ErrInvalid, p.AuthID)
		}
		if seen[p.AuthID] {
			return courtside.Invite{}, fmt.Errorf("%w: duplicate player %s", ErrInvalid, p.AuthID)
		}
		if p.Team != 1 && p.Team != 2 {
			return courtside.Invite{}, fmt.Errorf("%w: team must be 1 or 2", ErrInvalid)
		}
		seen[p.AuthID] = true
		perTeam[p.Team]++
		view := b.playerViewLocked(p.AuthID)
		view["team"] = p.Team
		roster = append(roster, view)
	}
	if !seen[userID] {
		return courtside.Invite{}, fmt.Errorf("%w: you must be part of the invite", ErrForbidden)
	}
	if perTeam[1] != perTeam[2] {
		return courtside.Invite{}, fmt.Errorf("%w: teams must be the same size", ErrInvalid)
	}

	inv := &invite{
		Invite: courtside.Invite{
			MatchID:     courtside.ID(uuid.NewString()),
			Status:      courtside.InviteStatusInvite,
			SubmittedBy: b.playerViewLocked(userID),
			CreatedAt:   b.now().UTC().Format(time.RFC3339),
			Players:     roster,
		},
		mode: req.Mode,
	}
	b.invites[inv.MatchID.String()] = inv
	for id := range seen {
		b.removeFromQueueLocked(req.Mode, id)
		delete(b.matched[req.Mode], id)
	}
	log.Info("Invite created", "matchID", inv.MatchID, "mode", req.Mode, "by", userID)
	return inv.Invite, nil
}

func (b *Backend) validateLocked(userID string, p courtside.MatchPayload) error {
	mt := matchType(p)
	if mt != courtside.MatchTypeSingles && mt != courtside.MatchTypeDoubles {
		return fmt.Errorf("%w: unknown match type %q", ErrInvalid, mt)
	}
	size := mt.PlayersPerTeam()
	if len(p.PlayersTeamA) != size || len(p.PlayersTeamB) != size {
		return fmt.Errorf("%w: %s needs %d players per team", ErrInvalid, mt, size)
	}
	seen := map[string]bool{}
	for _, id := range append(append([]string{}, p.PlayersTeamA...), p.PlayersTeamB...) {
		if _, ok := b.players[id]; !ok {
			return fmt.Errorf("%w: unknown player %s", ErrInvalid, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate player %s", ErrInvalid, id)
		}
		seen[id] = true
	}
	if !seen[userID] {
		return fmt.Errorf("%w: you must have played in the match", ErrForbidden)
	}

	stored := score.ParseScoreToSets(p.Score)
	sets := make([]score.SetScore, len(stored))
	for i, s := range stored {
		sets[i] = s.Oriented(true)
	}
	if !score.AreSetsWithinRange(sets) {
		return fmt.Errorf("%w: invalid score %q", ErrInvalid, p.Score)
	}
	switch score.Outcome(p.WinnerTeam) {
	case score.OutcomeA, score.OutcomeB, score.OutcomeDraw:
	default:
		return fmt.Errorf("%w: winner_team must be A, B or draw", ErrInvalid)
	}
	return nil
}

func (b *Backend) ownPendingLocked(userID, matchID string) (*Match, error) {
	m, ok := b.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if m.SubmittedBy != userID {
		return nil, fmt.Errorf("%w: only the submitter can change this match", ErrForbidden)
	}
	if m.Status != StatusPending {
		return nil, fmt.Errorf("%w: match is %s", ErrConflict, m.Status)
	}
	return m, nil
}

func (b *Backend) incomingLocked(userID, matchID string) (*Match, error) {
	m, ok := b.matches[matchID]
	if !ok || !m.involves(userID) {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if m.SubmittedBy == userID {
		return nil, fmt.Errorf("%w: an opponent has to answer this match", ErrForbidden)
	}
	if m.Status != StatusPending {
		return nil, fmt.Errorf("%w: match is %s", ErrConflict, m.Status)
	}
	return m, nil
}

// applyEloLocked moves every player of a side by the same amount, computed
// from the average rating of each side.
func (b *Backend) applyEloLocked(m *Match) ([]courtside.EloChange, []courtside.EloChange) {
	ra, rb := b.averageLocked(m.TeamA), b.averageLocked(m.TeamB)
	expectedA := 1 / (1 + math.Pow(10, (rb-ra)/400))
	var actualA float64
	switch score.Outcome(m.Winner) {
	case score.OutcomeA:
		actualA = 1
	case score.OutcomeDraw:
		actualA = 0.5
	}
	delta := math.Round(EloK * (actualA - expectedA))

	move := func(ids []string, change float64) []courtside.EloChange {
		out := make([]courtside.EloChange, 0, len(ids))
		for _, id := range ids {
			p := b.players[id]
			prev := p.Elo
			p.Elo += change
			out = append(out, courtside.EloChange{
				PlayerID:    courtside.ID(id),
				Username:    p.Username,
				PreviousElo: prev,
				NewElo:      p.Elo,
				Change:      change,
			})
		}
		return out
	}
	return move(m.TeamA, delta), move(m.TeamB, -delta)
}

func (b *Backend) averageLocked(ids []string) float64 {
	if len(ids) == 0 {
		return InitialElo
	}
	var sum float64
	for _, id := range ids {
		sum += b.players[id].Elo
	}
	return sum / float64(len(ids))
}

func (b *Backend) rankedLocked() []*Player {
	ranked := make([]*Player, 0, len(b.players))
	for _, p := range b.players {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Elo != ranked[j].Elo {
			return ranked[i].Elo > ranked[j].Elo
		}
		return strings.Compare(ranked[i].Username, ranked[j].Username) < 0
	})
	return ranked
}

func (b *Backend) ranksLocked() map[string]int {
	ranks := make(map[string]int, len(b.players))
	for i, p := range b.rankedLocked() {
		ranks[p.AuthID] = i + 1
	}
	return ranks
}

// suggestLocked returns the players closest in rating to userID, widening
// the window once when it is empty. Doubles suggestions pair the closest
// player as partner with the next two as opponents.
func (b *Backend) suggestLocked(userID string, mode courtside.MatchType) ([]map[string]any, *courtside.Criteria) {
	me, ok := b.players[userID]
	if !ok {
		return nil, nil
	}
	criteria := &courtside.Criteria{TargetElo: me.Elo, Range: suggestionRange}
	var near []*Player
	for _, window := range []float64{suggestionRange, 2 * suggestionRange} {
		criteria.Range = window
		near = near[:0]
		for _, p := range b.rankedLocked() {
			if p.AuthID != userID && math.Abs(p.Elo-me.Elo) <= window {
				near = append(near, p)
			}
		}
		if len(near) >= 2*mode.PlayersPerTeam()-1 {
			break
		}
	}
	criteria.MinElo = me.Elo - criteria.Range
	criteria.MaxElo = me.Elo + criteria.Range
	sort.SliceStable(near, func(i, j int) bool {
		return math.Abs(near[i].Elo-me.Elo) < math.Abs(near[j].Elo-me.Elo)
	})

	var recs []map[string]any
	if mode == courtside.MatchTypeDoubles {
		for i := 0; i+2 < len(near) && len(recs) < 5; i += 3 {
			recs = append(recs, map[string]any{
				"partner":   b.playerViewLocked(near[i].AuthID),
				"opponents": []any{b.playerViewLocked(near[i+1].AuthID), b.playerViewLocked(near[i+2].AuthID)},
			})
		}
		return recs, criteria
	}
	for _, p := range near {
		if len(recs) == 5 {
			break
		}
		recs = append(recs, map[string]any{
			"player":   b.playerViewLocked(p.AuthID),
			"elo_diff": p.Elo - me.Elo,
		})
	}
	return recs, criteria
}

func (b *Backend) removeFromQueueLocked(mode courtside.MatchType, userID string) {
	queue := b.queues[mode]
	for i, id := range queue {
		if id == userID {
			b.queues[mode] = append(queue[:i:i], queue[i+1:]...)
			return
		}
	}
}

func (b *Backend) sortedMatchesLocked() []*Match {
	out := make([]*Match, 0, len(b.matches))
	for _, m := range b.matches {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (b *Backend) pendingViewLocked(m *Match) courtside.PendingMatch {
	team := func(ids []string) []any {
		out := make([]any, 0, len(ids))
		for _, id := range ids {
			out = append(out, b.playerViewLocked(id))
		}
		return out
	}
	return courtside.PendingMatch{
		MatchID:         courtside.ID(m.ID),
		MatchType:       m.Type,
		PlayersTeamA:    team(m.TeamA),
		PlayersTeamB:    team(m.TeamB),
		Score:           m.Score,
		CreatedAt:       m.CreatedAt.UTC().Format(time.RFC3339),
		SubmittedByUser: b.playerViewLocked(m.SubmittedBy),
	}
}

func (b *Backend) playerViewLocked(id string) map[string]any {
	view := map[string]any{"auth_id": id, "username": players.DefaultDisplayName}
	if p, ok := b.players[id]; ok {
		view["username"] = p.Username
		view["elo"] = p.Elo
	}
	return view
}

func matchType(p courtside.MatchPayload) courtside.MatchType {
	if p.MatchType != "" {
		return p.MatchType
	}
	return p.Discipline
}
