// Package pending keeps the list of matches awaiting confirmation and runs
// the confirm, reject, edit and delete actions against the backend.
package pending

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/match"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/score"
)

// Reconciler holds the pending matches state for one user.
type Reconciler struct {
	api      courtside.CourtsideClient
	prompter Prompter
	notifier notifier.Notifier
	events   pubsub.PubSubClient
	metrics  metrics.Metrics
	token    string
	userID   string
	policy   score.Policy
	dryRun   bool

	mu   sync.Mutex
	view View
}

// Config wires a Reconciler. Notifier and Events are optional.
type Config struct {
	API           courtside.CourtsideClient
	Prompter      Prompter
	Notifier      notifier.Notifier
	Events        pubsub.PubSubClient
	Metrics       metrics.Metrics
	Token         string
	CurrentUserID string
	Policy        score.Policy
	DryRun        bool
}

// New creates a Reconciler. A missing Prompter confirms everything.
func New(cfg Config) *Reconciler {
	r := &Reconciler{
		api:      cfg.API,
		prompter: cfg.Prompter,
		notifier: cfg.Notifier,
		events:   cfg.Events,
		metrics:  cfg.Metrics,
		token:    cfg.Token,
		userID:   cfg.CurrentUserID,
		policy:   cfg.Policy,
		dryRun:   cfg.DryRun,
	}
	if r.prompter == nil {
		r.prompter = AlwaysConfirm
	}
	return r
}

// View returns a snapshot of the current state.
func (r *Reconciler) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.view
	v.Incoming = append([]courtside.PendingMatch(nil), r.view.Incoming...)
	v.Outgoing = append([]courtside.PendingMatch(nil), r.view.Outgoing...)
	return v
}

// Load fetches the pending matches. A failure is kept in LoadError and the
// previous lists are left untouched.
func (r *Reconciler) Load(ctx context.Context) error {
	r.mu.Lock()
	r.view.Loading = true
	r.mu.Unlock()

	pending, err := r.api.GetPendingMatches(ctx, r.token)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Loading = false
	if err != nil {
		log.Warn("Failed to load pending matches", "error", err)
		r.view.LoadError = err
		return err
	}
	r.view.LoadError = nil
	r.view.Incoming = pending.Incoming
	r.view.Outgoing = pending.Outgoing
	log.Debug("Loaded pending matches", "incoming", len(pending.Incoming), "outgoing", len(pending.Outgoing))
	return nil
}

// DetermineUserTeam returns the team the current user plays on. A user
// found on neither side is treated as team A.
func (r *Reconciler) DetermineUserTeam(m courtside.PendingMatch) players.Team {
	return determineUserTeam(m.Teams(), r.userID)
}

func determineUserTeam(teams players.Teams, userID string) players.Team {
	if players.ContainsID(teams.A, userID) {
		return players.TeamA
	}
	if players.ContainsID(teams.B, userID) {
		return players.TeamB
	}
	return players.TeamA
}

// BuildInitialValues pre-fills the edit form from a stored match, with the
// sets turned to the current user's perspective.
func (r *Reconciler) BuildInitialValues(m courtside.PendingMatch) match.Form {
	teams := m.Teams()
	team := determineUserTeam(teams, r.userID)

	stored := score.ParseScoreToSets(m.Score)
	sets := make([]score.SetScore, 0, len(stored))
	for _, s := range stored {
		sets = append(sets, s.Oriented(team == players.TeamA))
	}

	matchType := m.MatchType
	if matchType == "" {
		matchType = courtside.MatchTypeSingles
		if len(teams.A) > 1 || len(teams.B) > 1 {
			matchType = courtside.MatchTypeDoubles
		}
	}

	form := match.Form{
		MatchID:       m.MatchID,
		MatchType:     matchType,
		CurrentUserID: r.userID,
		Sets:          sets,
	}
	own, other := teams.Side(team), teams.Side(team.Other())
	switch matchType {
	case courtside.MatchTypeDoubles:
		for _, p := range own {
			if p.AuthID != r.userID {
				form.PartnerID = p.AuthID
				break
			}
		}
		for _, p := range other {
			if len(form.OpponentIDs) == 2 {
				break
			}
			form.OpponentIDs = append(form.OpponentIDs, p.AuthID)
		}
	default:
		if len(other) > 0 {
			form.OpponentIDs = []string{other[0].AuthID}
		}
	}
	return form
}

// Confirm confirms an incoming match, keeps the rating feedback for display,
// announces the result and reloads the list.
func (r *Reconciler) Confirm(ctx context.Context, matchID courtside.ID) (*courtside.ConfirmationFeedback, error) {
	if err := r.begin(); err != nil {
		return nil, err
	}
	defer r.end()

	m, _ := r.find(matchID)
	feedback, err := r.api.ConfirmMatch(ctx, matchID, r.token)
	if err != nil {
		return nil, r.fail("confirm", err)
	}

	r.mu.Lock()
	r.view.Feedback = feedback
	r.mu.Unlock()
	r.succeed("confirm")

	if r.notifier != nil {
		if err := r.notifier.SendConfirmationResult(m, feedback, r.dryRun); err != nil {
			log.Warn("Failed to announce confirmed match", "error", err, "matchID", matchID)
		}
	}
	r.publish(ctx, pubsub.EventMatchConfirmed, r.matchEvent(matchID, m))
	r.reload(ctx)
	return feedback, nil
}

// DismissFeedback clears the confirmation feedback.
func (r *Reconciler) DismissFeedback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Feedback = nil
}

// Reject rejects an incoming match and reloads the list.
func (r *Reconciler) Reject(ctx context.Context, matchID courtside.ID) error {
	if err := r.begin(); err != nil {
		return err
	}
	defer r.end()

	m, _ := r.find(matchID)
	if err := r.api.RejectMatch(ctx, matchID, r.token); err != nil {
		return r.fail("reject", err)
	}
	r.succeed("reject")
	r.publish(ctx, pubsub.EventMatchRejected, r.matchEvent(matchID, m))
	r.reload(ctx)
	return nil
}

// Delete asks for confirmation and deletes a match. It reports whether the
// match was deleted; a declined prompt sends no request.
func (r *Reconciler) Delete(ctx context.Context, matchID courtside.ID) (bool, error) {
	ok, err := r.prompter.Confirm(ctx, deletePrompt)
	if err != nil {
		return false, fmt.Errorf("failed to confirm deletion: %w", err)
	}
	if !ok {
		log.Debug("Deletion declined", "matchID", matchID)
		return false, nil
	}

	if err := r.begin(); err != nil {
		return false, err
	}
	defer r.end()

	m, _ := r.find(matchID)
	if err := r.api.DeleteMatch(ctx, matchID, r.token); err != nil {
		return false, r.fail("delete", err)
	}
	r.succeed("delete")
	r.publish(ctx, pubsub.EventMatchDeleted, r.matchEvent(matchID, m))
	r.reload(ctx)
	return true, nil
}

// OpenEdit opens the edit form for a listed match and returns its
// pre-filled values.
func (r *Reconciler) OpenEdit(matchID courtside.ID) (match.Form, error) {
	m, ok := r.find(matchID)
	if !ok {
		return match.Form{}, ErrMatchNotFound
	}
	r.mu.Lock()
	r.view.Editing = &m
	r.view.ActionError = nil
	r.mu.Unlock()
	return r.BuildInitialValues(m), nil
}

// CloseEdit closes the edit form.
func (r *Reconciler) CloseEdit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Editing = nil
}

// EditSubmit saves the open edit. On failure the form stays open and the
// error is returned so the caller can reset its own state.
func (r *Reconciler) EditSubmit(ctx context.Context, payload courtside.MatchPayload) error {
	r.mu.Lock()
	editing := r.view.Editing
	r.mu.Unlock()
	if editing == nil {
		return ErrNotEditing
	}

	if err := r.begin(); err != nil {
		return err
	}
	defer r.end()

	if err := r.api.EditMatch(ctx, editing.MatchID, payload, r.token); err != nil {
		return r.fail("edit", err)
	}
	r.succeed("edit")
	r.publish(ctx, pubsub.EventMatchEdited, payloadEvent(editing.MatchID, r.userID, payload))
	r.reload(ctx)
	r.CloseEdit()
	return nil
}

// EditSubmitForm validates the form and saves it as the open edit.
func (r *Reconciler) EditSubmitForm(ctx context.Context, form match.Form) error {
	payload, err := match.BuildSubmission(form, r.policy)
	if err != nil {
		r.setActionError(err)
		return err
	}
	return r.EditSubmit(ctx, payload)
}

// Submit validates and submits a new match result.
func (r *Reconciler) Submit(ctx context.Context, form match.Form) error {
	form.CurrentUserID = r.userID
	payload, err := match.BuildSubmission(form, r.policy)
	if err != nil {
		r.setActionError(err)
		return err
	}

	if err := r.begin(); err != nil {
		return err
	}
	defer r.end()

	if err := r.api.SubmitMatch(ctx, payload, r.token); err != nil {
		return r.fail("submit", err)
	}
	r.succeed("submit")
	r.publish(ctx, pubsub.EventMatchSubmitted, payloadEvent("", r.userID, payload))
	r.reload(ctx)
	return nil
}

func (r *Reconciler) find(matchID courtside.ID) (courtside.PendingMatch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range [][]courtside.PendingMatch{r.view.Incoming, r.view.Outgoing} {
		for _, m := range list {
			if m.MatchID == matchID {
				return m, true
			}
		}
	}
	return courtside.PendingMatch{MatchID: matchID}, false
}

func (r *Reconciler) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.view.Busy {
		return ErrActionInProgress
	}
	r.view.Busy = true
	r.view.ActionError = nil
	return nil
}

func (r *Reconciler) end() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Busy = false
}

func (r *Reconciler) fail(action string, err error) error {
	log.Warn("Match action failed", "action", action, "error", err)
	r.setActionError(err)
	return err
}

func (r *Reconciler) setActionError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.ActionError = err
}

func (r *Reconciler) succeed(action string) {
	log.Info("Match action succeeded", "action", action)
	if r.metrics != nil {
		r.metrics.IncMatchActions(action)
	}
}

// reload refreshes the list after an action. Its failure lands in LoadError
// and does not fail the action.
func (r *Reconciler) reload(ctx context.Context) {
	_ = r.Load(ctx)
}

func (r *Reconciler) publish(ctx context.Context, event pubsub.EventType, data any) {
	if r.events == nil {
		return
	}
	if err := r.events.SendMessage(ctx, event, data); err != nil {
		log.Warn("Failed to publish event", "event", event, "error", err)
	}
}

func (r *Reconciler) matchEvent(matchID courtside.ID, m courtside.PendingMatch) pubsub.MatchEvent {
	teams := m.Teams()
	return pubsub.MatchEvent{
		MatchID:    matchID.String(),
		UserID:     r.userID,
		MatchType:  string(m.MatchType),
		Score:      m.Score,
		TeamA:      authIDs(teams.A),
		TeamB:      authIDs(teams.B),
		OccurredAt: time.Now().Unix(),
	}
}

func payloadEvent(matchID courtside.ID, userID string, p courtside.MatchPayload) pubsub.MatchEvent {
	return pubsub.MatchEvent{
		MatchID:    matchID.String(),
		UserID:     userID,
		MatchType:  string(p.MatchType),
		Score:      p.Score,
		WinnerTeam: p.WinnerTeam,
		TeamA:      p.PlayersTeamA,
		TeamB:      p.PlayersTeamB,
		OccurredAt: time.Now().Unix(),
	}
}

func authIDs(team []players.Player) []string {
	ids := make([]string, 0, len(team))
	for _, p := range team {
		ids = append(ids, p.AuthID)
	}
	return ids
}
