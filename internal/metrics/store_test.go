package metrics

import (
	"testing"

	"github.com/mauv0809/courtside/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) Store {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return New(db)
}

func TestIncrementAndGetAll(t *testing.T) {
	store := setupTestStore(t)

	counters, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, counters)

	store.Increment("match_actions.confirm")
	store.Increment("match_actions.confirm")
	store.Increment("invites_sent.singles")

	counters, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"match_actions.confirm": 2,
		"invites_sent.singles":  1,
	}, counters)
}

func TestRecorderFlattensLabels(t *testing.T) {
	store := setupTestStore(t)
	r := NewRecorder(store)

	r.ObserveAPIRequest("find_match", OutcomeSuccess, 0.2)
	r.IncMatchmakingPolls("doubles")
	r.IncQueueLeaveFailures()
	r.SetStartupTime(1.5)

	counters, err := store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"api_requests.find_match.success": 1,
		"matchmaking_polls.doubles":       1,
		"queue_leave_failures":            1,
	}, counters)
}
