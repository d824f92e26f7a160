package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recs(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, map[string]any{"auth_id": fmt.Sprintf("r%d", i), "username": fmt.Sprintf("rec%d", i), "elo": float64(1500 + i)})
	}
	return out
}

func TestSuggestionsLoad(t *testing.T) {
	api := courtside.NewMockClient()
	api.FindMatchFunc = func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
		return courtside.FindResult{
			State:           courtside.FindStateSuggested,
			Recommendations: recs(7),
			Criteria:        &courtside.Criteria{TargetElo: 1500, Range: 100},
		}, nil
	}
	lobby := NewSuggestionsLobby(testConfig(api), courtside.MatchTypeSingles)
	assert.Equal(t, StateIdle, lobby.Snapshot().State)

	require.NoError(t, lobby.Load(context.Background()))
	snap := lobby.Snapshot()
	assert.Equal(t, StateSuggested, snap.State)
	assert.Len(t, snap.Recommendations, MaxRecommendations)
	assert.Equal(t, float64(1500), snap.Criteria.TargetElo)

	current, ok := lobby.Current()
	require.True(t, ok)
	assert.Equal(t, "r1", current["auth_id"])

	for i := 0; i < MaxRecommendations-1; i++ {
		lobby.Next()
	}
	current, _ = lobby.Current()
	assert.Equal(t, "r5", current["auth_id"])
	next, ok := lobby.Next()
	require.True(t, ok)
	assert.Equal(t, "r1", next["auth_id"], "wraps around")

	picked, ok := lobby.Select(2)
	require.True(t, ok)
	assert.Equal(t, "r3", picked["auth_id"])
	_, ok = lobby.Select(9)
	assert.False(t, ok)
}

func TestSuggestionsNoneAndErrors(t *testing.T) {
	api := courtside.NewMockClient()
	calls := 0
	api.FindMatchFunc = func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
		calls++
		switch calls {
		case 1:
			return courtside.FindResult{State: courtside.FindStateNoSuggestions}, nil
		case 2:
			return courtside.FindResult{}, errors.New("backend down")
		default:
			return courtside.FindResult{State: courtside.FindStateSuggested, Recommendations: recs(1)}, nil
		}
	}
	lobby := NewSuggestionsLobby(testConfig(api), courtside.MatchTypeSingles)

	require.NoError(t, lobby.Load(context.Background()))
	assert.Equal(t, StateNoSuggestions, lobby.Snapshot().State)
	_, ok := lobby.Next()
	assert.False(t, ok)

	require.Error(t, lobby.Refresh(context.Background()))
	snap := lobby.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.EqualError(t, snap.Err, "backend down")

	require.NoError(t, lobby.Refresh(context.Background()))
	assert.Equal(t, StateSuggested, lobby.Snapshot().State)
	assert.Equal(t, 3, api.FindMatchCount())
}

func TestSuggestionsSendInvite(t *testing.T) {
	api := courtside.NewMockClient()
	api.FindMatchFunc = func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
		return courtside.FindResult{State: courtside.FindStateSuggested, Recommendations: recs(3)}, nil
	}
	lobby := NewSuggestionsLobby(testConfig(api), courtside.MatchTypeSingles)
	require.NoError(t, lobby.Load(context.Background()))
	lobby.Next()

	_, err := lobby.SendInvite(context.Background())
	require.NoError(t, err)
	require.Len(t, api.CreateInviteCalls, 1)
	assert.Equal(t, []courtside.InvitePlayer{
		{AuthID: "u1", Username: "ana", Team: 1},
		{AuthID: "r2", Username: "rec2", Team: 2},
	}, api.CreateInviteCalls[0].Players)
	assert.Equal(t, StateClosed, lobby.Snapshot().State)
	assert.Equal(t, []courtside.MatchType{courtside.MatchTypeSingles}, api.LeaveQueueModes())

	lobby.Close()
	assert.Len(t, api.LeaveQueueModes(), 1)
}

func TestSuggestionsIncompleteDoublesIsBlocked(t *testing.T) {
	api := courtside.NewMockClient()
	api.FindMatchFunc = func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
		return courtside.FindResult{State: courtside.FindStateSuggested, Recommendations: []map[string]any{{
			"partner":   map[string]any{"auth_id": "u2"},
			"opponents": []any{map[string]any{"auth_id": "u3"}, map[string]any{"username": "no id"}},
		}}}, nil
	}
	lobby := NewSuggestionsLobby(testConfig(api), courtside.MatchTypeDoubles)
	require.NoError(t, lobby.Load(context.Background()))

	_, err := lobby.SendInvite(context.Background())
	require.ErrorIs(t, err, ErrIncompleteDoublesInvite)
	assert.Empty(t, api.CreateInviteCalls)
	snap := lobby.Snapshot()
	assert.Equal(t, StateSuggested, snap.State)
	assert.ErrorIs(t, snap.ActionErr, ErrIncompleteDoublesInvite)
}

func TestSuggestionsCloseOnlyLeavesAfterRequest(t *testing.T) {
	api := courtside.NewMockClient()
	lobby := NewSuggestionsLobby(testConfig(api), courtside.MatchTypeSingles)
	lobby.Close()
	assert.Empty(t, api.LeaveQueueModes())
	assert.ErrorIs(t, lobby.Load(context.Background()), ErrLobbyClosed)
}

func TestSuggestionsCloseWaitsForLoad(t *testing.T) {
	api := courtside.NewMockClient()
	entered := make(chan struct{})
	var returned atomic.Bool
	api.FindMatchFunc = func(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error) {
		close(entered)
		<-ctx.Done()
		returned.Store(true)
		return courtside.FindResult{}, ctx.Err()
	}
	api.LeaveQueueFunc = func(ctx context.Context, token string, mode courtside.MatchType) error {
		assert.True(t, returned.Load(), "queue is left after the load returned")
		return nil
	}
	lobby := NewSuggestionsLobby(testConfig(api), courtside.MatchTypeSingles)

	loaded := make(chan error, 1)
	go func() { loaded <- lobby.Load(context.Background()) }()
	<-entered

	lobby.Close()
	assert.NoError(t, <-loaded, "a load cut short by close is dropped")
	assert.Equal(t, StateClosed, lobby.Snapshot().State)
	assert.Equal(t, []courtside.MatchType{courtside.MatchTypeSingles}, api.LeaveQueueModes())
	assert.ErrorIs(t, lobby.Load(context.Background()), ErrLobbyClosed)
	assert.Equal(t, 1, api.FindMatchCount())
}

func TestSuggestionsSetMode(t *testing.T) {
	api := courtside.NewMockClient()
	lobby := NewSuggestionsLobby(testConfig(api), courtside.MatchTypeSingles)
	require.NoError(t, lobby.Load(context.Background()))

	require.NoError(t, lobby.SetMode(context.Background(), courtside.MatchTypeDoubles))
	assert.Equal(t, []courtside.MatchType{courtside.MatchTypeSingles}, api.LeaveQueueModes())
	assert.Equal(t, []courtside.MatchType{courtside.MatchTypeSingles, courtside.MatchTypeDoubles}, api.FindMatchCalls)

	lobby.Close()
	assert.Equal(t, []courtside.MatchType{courtside.MatchTypeSingles, courtside.MatchTypeDoubles}, api.LeaveQueueModes())
}

func TestBuildInvitePlayers(t *testing.T) {
	me := players.Player{AuthID: "u1", Username: "ana"}

	t.Run("singles from nested player", func(t *testing.T) {
		roster, err := BuildInvitePlayers(courtside.MatchTypeSingles, me, map[string]any{
			"player": map[string]any{"user": map[string]any{"id": "u5", "username": "eve"}},
			"score":  0.92,
		})
		require.NoError(t, err)
		assert.Equal(t, []courtside.InvitePlayer{
			{AuthID: "u1", Username: "ana", Team: 1},
			{AuthID: "u5", Username: "eve", Team: 2},
		}, roster)
	})

	t.Run("singles against yourself", func(t *testing.T) {
		_, err := BuildInvitePlayers(courtside.MatchTypeSingles, me, map[string]any{"auth_id": "u1"})
		assert.ErrorIs(t, err, ErrMissingPlayerID)
	})

	t.Run("doubles from partner and opponents", func(t *testing.T) {
		roster, err := BuildInvitePlayers(courtside.MatchTypeDoubles, me, map[string]any{
			"partner":   map[string]any{"auth_id": "u2", "username": "bea"},
			"opponents": []any{map[string]any{"auth_id": "u3"}, map[string]any{"auth_id": "u4"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []courtside.InvitePlayer{
			{AuthID: "u1", Username: "ana", Team: 1},
			{AuthID: "u2", Username: "bea", Team: 1},
			{AuthID: "u3", Username: players.DefaultDisplayName, Team: 2},
			{AuthID: "u4", Username: players.DefaultDisplayName, Team: 2},
		}, roster)
	})

	t.Run("doubles from team arrays", func(t *testing.T) {
		roster, err := BuildInvitePlayers(courtside.MatchTypeDoubles, me, map[string]any{
			"team_A": []any{"u1", "u2"},
			"team_B": []any{"u3", "u4"},
		})
		require.NoError(t, err)
		assert.Len(t, roster, 4)
		assert.Equal(t, "u2", roster[1].AuthID)
	})

	t.Run("doubles with a duplicate", func(t *testing.T) {
		_, err := BuildInvitePlayers(courtside.MatchTypeDoubles, me, map[string]any{
			"partner":   "u2",
			"opponents": []any{"u2", "u3"},
		})
		assert.ErrorIs(t, err, ErrIncompleteDoublesInvite)
	})
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "rec1 (Elo 1501)", Describe(recs(1)[0]))
	assert.Equal(t, "with bea vs cy & dee", Describe(map[string]any{
		"partner":   map[string]any{"username": "bea"},
		"opponents": []any{map[string]any{"username": "cy"}, map[string]any{"username": "dee"}},
	}))
}
