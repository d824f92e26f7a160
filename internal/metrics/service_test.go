package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.ObserveAPIRequest("confirm_match", OutcomeSuccess, 0.05)
	s.ObserveAPIRequest("confirm_match", OutcomeAPIError, 0.01)
	s.IncInvitesSent("singles")
	s.IncQueueLeaveFailures()

	assert.Equal(t, float64(1), testutil.ToFloat64(s.APIRequests.WithLabelValues("confirm_match", OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.InvitesSent.WithLabelValues("singles")))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.QueueLeaveFailures))

	rec := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "courtside_api_requests_total")
}
