package matchmaking

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 10 * time.Millisecond

func testConfig(api *courtside.MockClient) Config {
	return Config{
		API:          api,
		Token:        "tok",
		CurrentUser:  players.Player{AuthID: "u1", Username: "ana"},
		PollInterval: testInterval,
		Metrics:      metrics.NewMock(),
	}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func matchedAfter(polls int32, opponent map[string]any) func(context.Context, string, courtside.MatchType) (courtside.FindResult, error) {
	var n atomic.Int32
	return func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
		if n.Add(1) < polls {
			return courtside.FindResult{State: courtside.FindStateSearching}, nil
		}
		return courtside.FindResult{State: courtside.FindStateMatched, Opponent: opponent}, nil
	}
}

// assertNoMorePolls checks that polling stopped.
func assertNoMorePolls(t *testing.T, api *courtside.MockClient) {
	t.Helper()
	before := api.FindMatchCount()
	time.Sleep(5 * testInterval)
	assert.Equal(t, before, api.FindMatchCount(), "no find requests after close")
}

func TestLobbyPollsUntilMatched(t *testing.T) {
	api := courtside.NewMockClient()
	api.FindMatchFunc = matchedAfter(3, map[string]any{"auth_id": "u9", "username": "zed"})
	lobby := NewLobby(testConfig(api))

	require.NoError(t, lobby.Open(context.Background(), courtside.MatchTypeSingles))
	snap, err := lobby.Wait(waitCtx(t))
	require.NoError(t, err)

	assert.Equal(t, StateMatched, snap.State)
	assert.Equal(t, "zed", snap.OpponentName())
	assert.Equal(t, 3, api.FindMatchCount())
	assertNoMorePolls(t, api)
	assert.Empty(t, api.LeaveQueueModes(), "matching alone does not leave the queue")
}

func TestLobbyOpponentFallbacks(t *testing.T) {
	api := courtside.NewMockClient()
	api.FindMatchFunc = func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
		return courtside.FindResult{State: courtside.FindStateMatched, Match: map[string]any{"player_id": "p2"}}, nil
	}
	lobby := NewLobby(testConfig(api))
	defer lobby.Close()

	require.NoError(t, lobby.Open(context.Background(), courtside.MatchTypeSingles))
	snap, err := lobby.Wait(waitCtx(t))
	require.NoError(t, err)
	id, ok := players.PlayerAuthID(snap.Opponent)
	assert.True(t, ok)
	assert.Equal(t, "p2", id)
}

func TestLobbyCloseLeavesQueueOnce(t *testing.T) {
	tests := []struct {
		name  string
		find  func(context.Context, string, courtside.MatchType) (courtside.FindResult, error)
		state State
	}{
		{
			name: "searching",
			find: func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
				return courtside.FindResult{State: courtside.FindStateSearching}, nil
			},
			state: StateSearching,
		},
		{
			name:  "matched",
			find:  matchedAfter(1, map[string]any{"auth_id": "u9"}),
			state: StateMatched,
		},
		{
			name: "error",
			find: func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
				return courtside.FindResult{}, errors.New("backend down")
			},
			state: StateError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := courtside.NewMockClient()
			api.FindMatchFunc = tt.find
			lobby := NewLobby(testConfig(api))

			require.NoError(t, lobby.Open(context.Background(), courtside.MatchTypeDoubles))
			require.Eventually(t, func() bool {
				return api.FindMatchCount() > 0 && lobby.Snapshot().State == tt.state
			}, time.Second, time.Millisecond)

			lobby.Close()
			lobby.Close()

			assert.Equal(t, []courtside.MatchType{courtside.MatchTypeDoubles}, api.LeaveQueueModes())
			assert.Equal(t, StateClosed, lobby.Snapshot().State)
			assertNoMorePolls(t, api)
		})
	}
}

func TestLobbyCloseWithoutOpen(t *testing.T) {
	api := courtside.NewMockClient()
	lobby := NewLobby(testConfig(api))
	lobby.Close()
	assert.Empty(t, api.LeaveQueueModes())
	assert.ErrorIs(t, lobby.Open(context.Background(), courtside.MatchTypeSingles), ErrLobbyClosed)
}

func TestLobbyLeaveFailureIsSwallowed(t *testing.T) {
	api := courtside.NewMockClient()
	api.LeaveQueueFunc = func(ctx context.Context, token string, mode courtside.MatchType) error {
		return errors.New("gone")
	}
	cfg := testConfig(api)
	m := metrics.NewMock()
	cfg.Metrics = m
	lobby := NewLobby(cfg)

	require.NoError(t, lobby.Open(context.Background(), courtside.MatchTypeSingles))
	assert.NotPanics(t, lobby.Close)
	assert.Equal(t, 1, m.QueueLeaveFailures())
}

func TestLobbyDropsLateResponse(t *testing.T) {
	api := courtside.NewMockClient()
	started := make(chan struct{})
	api.FindMatchFunc = func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
		close(started)
		<-ctx.Done()
		return courtside.FindResult{State: courtside.FindStateMatched, Opponent: map[string]any{"auth_id": "late"}}, nil
	}
	lobby := NewLobby(testConfig(api))

	require.NoError(t, lobby.Open(context.Background(), courtside.MatchTypeSingles))
	<-started
	lobby.Close()

	snap := lobby.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	assert.Nil(t, snap.Opponent)
}

func TestLobbyCannotReopenWhileClosing(t *testing.T) {
	api := courtside.NewMockClient()
	entered := make(chan struct{})
	release := make(chan struct{})
	var first atomic.Bool
	api.FindMatchFunc = func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
		if first.CompareAndSwap(false, true) {
			close(entered)
			<-release
		}
		return courtside.FindResult{State: courtside.FindStateSearching}, nil
	}
	lobby := NewLobby(testConfig(api))

	require.NoError(t, lobby.Open(context.Background(), courtside.MatchTypeSingles))
	<-entered

	closed := make(chan struct{})
	go func() {
		lobby.Close()
		close(closed)
	}()
	require.Eventually(t, func() bool {
		return lobby.Snapshot().State == StateClosed
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, lobby.Open(context.Background(), courtside.MatchTypeSingles), ErrLobbyClosed)
	assert.ErrorIs(t, lobby.SetMode(context.Background(), courtside.MatchTypeDoubles), ErrLobbyClosed)
	assert.ErrorIs(t, lobby.Retry(context.Background()), ErrLobbyClosed)

	close(release)
	<-closed

	assert.Equal(t, 1, api.FindMatchCount())
	assert.Equal(t, []courtside.MatchType{courtside.MatchTypeSingles}, api.LeaveQueueModes())
	assertNoMorePolls(t, api)
}

func TestLobbySetMode(t *testing.T) {
	api := courtside.NewMockClient()
	lobby := NewLobby(testConfig(api))

	require.NoError(t, lobby.Open(context.Background(), courtside.MatchTypeSingles))
	require.Eventually(t, func() bool { return api.FindMatchCount() > 0 }, time.Second, time.Millisecond)

	require.NoError(t, lobby.SetMode(context.Background(), courtside.MatchTypeDoubles))
	assert.Equal(t, []courtside.MatchType{courtside.MatchTypeSingles}, api.LeaveQueueModes())
	assert.Equal(t, courtside.MatchTypeDoubles, lobby.Snapshot().Mode)

	require.NoError(t, lobby.SetMode(context.Background(), courtside.MatchTypeDoubles))
	assert.Len(t, api.LeaveQueueModes(), 1, "same mode is a no-op")

	lobby.Close()
	assert.Equal(t, []courtside.MatchType{courtside.MatchTypeSingles, courtside.MatchTypeDoubles}, api.LeaveQueueModes())
}

func TestLobbyRetry(t *testing.T) {
	api := courtside.NewMockClient()
	var fail atomic.Bool
	fail.Store(true)
	api.FindMatchFunc = func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
		if fail.Load() {
			return courtside.FindResult{}, &courtside.APIError{Status: 503, Message: "Failed to process request"}
		}
		return courtside.FindResult{State: courtside.FindStateMatched, Opponent: "u7"}, nil
	}
	lobby := NewLobby(testConfig(api))
	defer lobby.Close()

	require.NoError(t, lobby.Open(context.Background(), courtside.MatchTypeSingles))
	snap, err := lobby.Wait(waitCtx(t))
	require.NoError(t, err)
	require.Equal(t, StateError, snap.State)
	assert.EqualError(t, snap.Err, "Failed to process request")
	assertNoMorePolls(t, api)

	fail.Store(false)
	require.NoError(t, lobby.Retry(context.Background()))
	snap, err = lobby.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StateMatched, snap.State)
	assert.NoError(t, snap.Err)
}

func TestLobbySendInvite(t *testing.T) {
	api := courtside.NewMockClient()
	api.FindMatchFunc = matchedAfter(1, map[string]any{"auth_id": "u9", "username": "zed"})
	api.CreateInviteFunc = func(ctx context.Context, req courtside.InviteRequest, token string) (courtside.Invite, error) {
		return courtside.Invite{MatchID: "inv-1", Status: courtside.InviteStatusInvite}, nil
	}
	cfg := testConfig(api)
	m := metrics.NewMock()
	n := notifier.NewMock()
	events := pubsub.NewMock()
	cfg.Metrics, cfg.Notifier, cfg.Events = m, n, events
	lobby := NewLobby(cfg)

	_, err := lobby.SendInvite(context.Background())
	assert.ErrorIs(t, err, ErrNotMatched)

	require.NoError(t, lobby.Open(context.Background(), courtside.MatchTypeSingles))
	_, err = lobby.Wait(waitCtx(t))
	require.NoError(t, err)

	invite, err := lobby.SendInvite(context.Background())
	require.NoError(t, err)
	assert.Equal(t, courtside.ID("inv-1"), invite.MatchID)

	require.Len(t, api.CreateInviteCalls, 1)
	assert.Equal(t, courtside.InviteRequest{
		Mode: courtside.MatchTypeSingles,
		Players: []courtside.InvitePlayer{
			{AuthID: "u1", Username: "ana", Team: 1},
			{AuthID: "u9", Username: "zed", Team: 2},
		},
	}, api.CreateInviteCalls[0])

	snap := lobby.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	assert.Equal(t, "Invite sent!", snap.Message)
	assert.Equal(t, []courtside.MatchType{courtside.MatchTypeSingles}, api.LeaveQueueModes())
	assert.Equal(t, 1, m.InvitesSent("singles"))
	assert.Len(t, n.SendInviteNotificationCalls, 1)
	assert.Equal(t, []pubsub.EventType{pubsub.EventInviteSent}, events.Events())
}

func TestLobbySendInviteNeedsIDs(t *testing.T) {
	api := courtside.NewMockClient()
	api.FindMatchFunc = matchedAfter(1, map[string]any{"username": "nameless"})
	lobby := NewLobby(testConfig(api))
	defer lobby.Close()

	require.NoError(t, lobby.Open(context.Background(), courtside.MatchTypeSingles))
	_, err := lobby.Wait(waitCtx(t))
	require.NoError(t, err)

	_, err = lobby.SendInvite(context.Background())
	require.ErrorIs(t, err, ErrMissingPlayerID)
	assert.Empty(t, api.CreateInviteCalls)
	snap := lobby.Snapshot()
	assert.Equal(t, StateMatched, snap.State)
	assert.ErrorIs(t, snap.ActionErr, ErrMissingPlayerID)
}
