package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	MatchActions       *prometheus.CounterVec
	MatchmakingPolls   *prometheus.CounterVec
	InvitesSent        *prometheus.CounterVec
	QueueLeaveFailures prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// Outcome labels for ObserveAPIRequest.
const (
	OutcomeSuccess      = "success"
	OutcomeAPIError     = "api_error"
	OutcomeNetworkError = "network_error"
	OutcomeDecodeError  = "decode_error"
)
