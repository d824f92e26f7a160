package courtside

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*APIClient, *metrics.Mock) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	m := metrics.NewMock()
	opts = append([]Option{WithHTTPClient(server.Client()), WithMetrics(m)}, opts...)
	return NewClient(server.URL, opts...), m
}

func TestGetPendingMatches(t *testing.T) {
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/matches/pending", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{
			"incoming": [{
				"match_id": 42,
				"match_type": "singles",
				"players_team_A": [{"auth_id": "u2", "username": "bea"}],
				"players_team_B": [{"auth_id": "u1", "username": "ana"}],
				"score": "6-4, 6-3",
				"created_at": "2025-07-09T18:00:00Z",
				"submitted_by_user": {"auth_id": "u2"}
			}],
			"outgoing": [{"id": "m-7", "match_type": "doubles", "team_A": ["u1", "u3"], "team_B": ["u4", "u5"], "score": "6-1"}]
		}`)
	})

	pending, err := client.GetPendingMatches(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, pending.Incoming, 1)
	require.Len(t, pending.Outgoing, 1)

	in := pending.Incoming[0]
	assert.Equal(t, ID("42"), in.MatchID)
	assert.Equal(t, MatchTypeSingles, in.MatchType)
	assert.Equal(t, "u2", in.SubmittedByID())
	assert.Equal(t, "bea", in.Teams().A[0].Username)

	out := pending.Outgoing[0]
	assert.Equal(t, ID("m-7"), out.MatchID, "falls back to id")
	teams := out.Teams()
	require.Len(t, teams.A, 2)
	assert.Equal(t, "u3", teams.A[1].AuthID)
	assert.Equal(t, 1, m.APIRequests("get_pending_matches", metrics.OutcomeSuccess))
}

func TestMissingTokenFailsBeforeRequest(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.GetPendingMatches(context.Background(), "")
	require.ErrorIs(t, err, ErrAuthTokenMissing)
	assert.Equal(t, "Authentication token missing", err.Error())

	err = client.LeaveQueue(context.Background(), "  ", MatchTypeSingles)
	require.ErrorIs(t, err, ErrAuthTokenMissing)
	assert.False(t, called, "no request may be sent without a token")
}

func TestTokenStoreFallback(t *testing.T) {
	var got []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}, WithTokenStore(StaticToken("stored")))

	require.NoError(t, client.RejectMatch(context.Background(), "1", ""))
	require.NoError(t, client.RejectMatch(context.Background(), "1", "explicit"))
	assert.Equal(t, []string{"Bearer stored", "Bearer explicit"}, got)
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    string
	}{
		{"message field", http.StatusConflict, `{"message": "Match already confirmed", "code": "already_confirmed"}`, "Match already confirmed", "already_confirmed"},
		{"error field", http.StatusForbidden, `{"error": "Not a participant"}`, "Not a participant", ""},
		{"numeric code", http.StatusBadRequest, `{"message": "bad", "code": 17}`, "bad", "17"},
		{"no body", http.StatusInternalServerError, ``, "Failed to process request", ""},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "Failed to process request", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.ConfirmMatch(context.Background(), "m1", "tok")
			require.Error(t, err)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Error())
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, 1, m.APIRequests("confirm_match", metrics.OutcomeAPIError))
		})
	}
}

func TestConfirmMatch(t *testing.T) {
	t.Run("feedback", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/matches/m1/confirm", r.URL.Path)
			fmt.Fprint(w, `{
				"updated_elos": {"sideA": [{"playerId": "u1", "previousElo": 1500, "newElo": 1516, "change": 16}], "sideB": []},
				"ranks": [{"playerId": "u1", "newRank": 3, "previousRank": 5, "rankChange": 2}]
			}`)
		})
		feedback, err := client.ConfirmMatch(context.Background(), "m1", "tok")
		require.NoError(t, err)
		require.NotNil(t, feedback)
		require.Len(t, feedback.UpdatedElos.SideA, 1)
		assert.Equal(t, float64(16), feedback.UpdatedElos.SideA[0].Change)
		require.Len(t, feedback.Ranks, 1)
		require.NotNil(t, feedback.Ranks[0].PreviousRank)
		assert.Equal(t, 5, *feedback.Ranks[0].PreviousRank)
	})

	t.Run("no content", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		feedback, err := client.ConfirmMatch(context.Background(), "m1", "tok")
		require.NoError(t, err)
		assert.Nil(t, feedback)
	})

	t.Run("unparsable success body is empty", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "ok")
		})
		feedback, err := client.ConfirmMatch(context.Background(), "m1", "tok")
		require.NoError(t, err)
		assert.Nil(t, feedback)
	})

	t.Run("mistyped success body is a decode error", func(t *testing.T) {
		client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"incoming": [{"match_id": "m1", "match_type": "singles", "score": 63}], "outgoing": []}`)
		})
		_, err := client.GetPendingMatches(context.Background(), "tok")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode response")
		var apiErr *APIError
		assert.False(t, errors.As(err, &apiErr))
		assert.Equal(t, 1, m.APIRequests("get_pending_matches", metrics.OutcomeDecodeError))
	})
}

func TestMutations(t *testing.T) {
	type request struct {
		method string
		path   string
		body   map[string]any
	}
	var got []request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := request{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			if len(data) > 0 {
				assert.NoError(t, json.Unmarshal(data, &req.body))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			}
		}
		got = append(got, req)
		if r.URL.Path == "/api/matches/invite" {
			fmt.Fprint(w, `{"match_id": 9, "status": "invite"}`)
			return
		}
		if r.URL.Path == "/api/matchmaking/find" {
			fmt.Fprint(w, `{"state": "matched", "match": {"auth_id": "u9"}}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()
	payload := MatchPayload{
		Discipline:   MatchTypeSingles,
		MatchType:    MatchTypeSingles,
		PlayersTeamA: []string{"u1"},
		PlayersTeamB: []string{"u2"},
		Score:        "6-4",
		WinnerTeam:   "A",
	}

	require.NoError(t, client.DeleteMatch(ctx, "m1", "tok"))
	require.NoError(t, client.EditMatch(ctx, "m1", payload, "tok"))
	require.NoError(t, client.SubmitMatch(ctx, payload, "tok"))
	require.NoError(t, client.LeaveQueue(ctx, "tok", MatchTypeDoubles))
	result, err := client.FindMatch(ctx, "tok", MatchTypeSingles)
	require.NoError(t, err)
	invite, err := client.CreateInvite(ctx, InviteRequest{Mode: MatchTypeSingles, Players: []InvitePlayer{{AuthID: "u1", Username: "ana", Team: 1}}}, "tok")
	require.NoError(t, err)

	require.Len(t, got, 6)
	assert.Equal(t, request{method: http.MethodDelete, path: "/api/matches/m1"}, got[0])
	assert.Equal(t, http.MethodPut, got[1].method)
	assert.Equal(t, "A", got[1].body["winner_team"])
	assert.Equal(t, []any{"u1"}, got[1].body["players_team_A"])
	assert.Equal(t, "/api/matches", got[2].path)
	assert.Equal(t, map[string]any{"mode": "doubles"}, got[3].body)
	assert.Equal(t, "/api/matchmaking/find", got[4].path)
	assert.Equal(t, "/api/matches/invite", got[5].path)

	assert.Equal(t, FindStateMatched, result.State)
	assert.Equal(t, map[string]any{"auth_id": "u9"}, result.OpponentPayload())
	assert.Equal(t, ID("9"), invite.MatchID)
	assert.Equal(t, InviteStatusInvite, invite.Status)
}

func TestNetworkErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	m := metrics.NewMock()
	client := NewClient(url, WithMetrics(m))
	err := client.RejectMatch(context.Background(), "m1", "tok")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, 1, m.APIRequests("reject_match", metrics.OutcomeNetworkError))
}

func TestAuthHeaders(t *testing.T) {
	assert.Empty(t, OptionalAuthHeader("").Get("Authorization"))
	assert.Equal(t, "Bearer abc", OptionalAuthHeader("abc").Get("Authorization"))

	_, err := RequireAuthHeader("")
	assert.ErrorIs(t, err, ErrAuthTokenMissing)
	h, err := RequireAuthHeader("abc")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", h.Get("Authorization"))
}

func TestParseMatchType(t *testing.T) {
	mt, err := ParseMatchType(" Doubles ")
	require.NoError(t, err)
	assert.Equal(t, MatchTypeDoubles, mt)
	assert.Equal(t, 2, mt.PlayersPerTeam())

	_, err = ParseMatchType("triples")
	assert.Error(t, err)
}
