// Package matchmaking runs the matchmaking lobbies: polling the queue until
// an opponent is found, or browsing suggested opponents, and turning the
// result into an invite. A lobby always leaves the server-side queue when it
// is closed.
package matchmaking

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/players"
)

// Snapshot is the observable state of a Lobby.
type Snapshot struct {
	Mode     courtside.MatchType
	State    State
	Opponent any
	Err      error
	// ActionErr is a failed invite; the lobby stays matched.
	ActionErr error
	Message   string
}

// OpponentName is the display name of the matched opponent.
func (s Snapshot) OpponentName() string {
	return players.PlayerDisplayName(s.Opponent)
}

// Lobby polls the matchmaking queue until the user is matched.
type Lobby struct {
	cfg Config

	mu        sync.Mutex
	mode      courtside.MatchType
	state     State
	opponent  any
	err       error
	actionErr error
	message   string
	cancel    context.CancelFunc
	done      chan struct{}
	changed   chan struct{}
	// joined is set while the queue of mode has been entered and not left.
	joined bool
}

// NewLobby creates a lobby in the idle state.
func NewLobby(cfg Config) *Lobby {
	return &Lobby{
		cfg:     cfg,
		state:   StateIdle,
		changed: make(chan struct{}),
	}
}

// Open enters the queue for mode and starts polling.
func (l *Lobby) Open(ctx context.Context, mode courtside.MatchType) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return ErrLobbyClosed
	}
	if l.cancel != nil {
		return nil
	}
	l.mode = mode
	l.startLocked(ctx)
	return nil
}

// SetMode switches the queue. The old mode's queue is left first.
func (l *Lobby) SetMode(ctx context.Context, mode courtside.MatchType) error {
	l.mu.Lock()
	if l.state == StateClosed {
		l.mu.Unlock()
		return ErrLobbyClosed
	}
	if l.mode == mode && l.cancel != nil {
		l.mu.Unlock()
		return nil
	}
	old, joined := l.mode, l.joined
	l.joined = false
	l.mode = mode
	l.stopLocked()
	l.mu.Unlock()

	if joined {
		leaveQueue(l.cfg, old)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return ErrLobbyClosed
	}
	if l.cancel != nil {
		return nil
	}
	l.mode = mode
	l.startLocked(ctx)
	return nil
}

// Retry restarts polling after an error.
func (l *Lobby) Retry(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return ErrLobbyClosed
	}
	if l.state != StateError {
		return nil
	}
	l.stopLocked()
	if l.state == StateClosed {
		return ErrLobbyClosed
	}
	if l.cancel != nil {
		return nil
	}
	l.startLocked(ctx)
	return nil
}

// Close stops polling and leaves the queue of the active mode exactly once.
// The lobby counts as closed before the poller has exited, so no run can be
// started while Close waits. Calling Close again does nothing.
func (l *Lobby) Close() {
	l.mu.Lock()
	if l.state == StateClosed {
		l.mu.Unlock()
		return
	}
	l.setStateLocked(StateClosed)
	mode, joined := l.mode, l.joined
	l.joined = false
	l.stopLocked()
	l.mu.Unlock()

	if joined {
		leaveQueue(l.cfg, mode)
	}
	log.Debug("Matchmaking lobby closed", "mode", mode)
}

// Wait blocks until the lobby is matched, failed or closed.
func (l *Lobby) Wait(ctx context.Context) (Snapshot, error) {
	for {
		l.mu.Lock()
		snap := l.snapshotLocked()
		ch := l.changed
		l.mu.Unlock()

		switch snap.State {
		case StateMatched, StateError, StateClosed:
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ch:
		}
	}
}

// Snapshot returns the current state.
func (l *Lobby) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// SendInvite invites the matched opponent and closes the lobby.
func (l *Lobby) SendInvite(ctx context.Context) (courtside.Invite, error) {
	l.mu.Lock()
	state, mode, opponent := l.state, l.mode, l.opponent
	l.mu.Unlock()
	if state != StateMatched {
		return courtside.Invite{}, ErrNotMatched
	}

	me := l.cfg.CurrentUser
	opponentID, ok := players.PlayerAuthID(opponent)
	if me.AuthID == "" || !ok || opponentID == "" {
		l.setActionErr(ErrMissingPlayerID)
		return courtside.Invite{}, ErrMissingPlayerID
	}

	req := courtside.InviteRequest{
		Mode: mode,
		Players: []courtside.InvitePlayer{
			{AuthID: me.AuthID, Username: me.Username, Team: 1},
			{AuthID: opponentID, Username: players.PlayerDisplayName(opponent), Team: 2},
		},
	}
	invite, err := sendInvite(ctx, l.cfg, req)
	if err != nil {
		l.setActionErr(err)
		return courtside.Invite{}, err
	}

	l.mu.Lock()
	l.actionErr = nil
	l.message = inviteSentMessage
	l.mu.Unlock()
	l.Close()
	return invite, nil
}

func (l *Lobby) setActionErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actionErr = err
}

// startLocked begins a polling run for l.mode.
func (l *Lobby) startLocked(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done
	l.opponent = nil
	l.err = nil
	l.joined = true
	l.setStateLocked(StateSearching)
	log.Info("Searching for a match", "mode", l.mode)
	go l.run(ctx, l.mode, done)
}

// stopLocked cancels the running poller and waits for it to exit. The lock
// is released while waiting.
func (l *Lobby) stopLocked() {
	if l.cancel == nil {
		return
	}
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	cancel()
	l.mu.Unlock()
	<-done
	l.mu.Lock()
}

func (l *Lobby) run(ctx context.Context, mode courtside.MatchType, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.cfg.pollInterval())
	defer ticker.Stop()
	for {
		if l.poll(ctx, mode) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll issues one find request and reports whether polling should stop.
// Results that arrive after the run was cancelled are dropped.
func (l *Lobby) poll(ctx context.Context, mode courtside.MatchType) bool {
	if l.cfg.Metrics != nil {
		l.cfg.Metrics.IncMatchmakingPolls(string(mode))
	}
	result, err := l.cfg.API.FindMatch(ctx, l.cfg.Token, mode)

	l.mu.Lock()
	defer l.mu.Unlock()
	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		log.Warn("Matchmaking poll failed", "mode", mode, "error", err)
		l.err = err
		l.setStateLocked(StateError)
		return true
	}
	if result.State == courtside.FindStateMatched {
		l.opponent = result.OpponentPayload()
		l.setStateLocked(StateMatched)
		log.Info("Matched", "mode", mode, "opponent", players.PlayerDisplayName(l.opponent))
		return true
	}
	log.Debug("Still searching", "mode", mode, "state", result.State)
	return false
}

func (l *Lobby) setStateLocked(s State) {
	l.state = s
	close(l.changed)
	l.changed = make(chan struct{})
}

func (l *Lobby) snapshotLocked() Snapshot {
	return Snapshot{
		Mode:      l.mode,
		State:     l.state,
		Opponent:  l.opponent,
		Err:       l.err,
		ActionErr: l.actionErr,
		Message:   l.message,
	}
}
