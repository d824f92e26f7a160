package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_api_requests_total",
			Help: "The total number of backend API requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		APIRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "courtside_api_request_duration_seconds",
			Help:    "The duration of backend API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		MatchActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_match_actions_total",
			Help: "The total number of match actions (submit, confirm, reject, edit, delete).",
		}, []string{"action"}),
		MatchmakingPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_matchmaking_polls_total",
			Help: "The total number of matchmaking find requests by mode.",
		}, []string{"mode"}),
		InvitesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_invites_sent_total",
			Help: "The total number of match invites sent by mode.",
		}, []string{"mode"}),
		QueueLeaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_queue_leave_failures_total",
			Help: "The total number of failed attempts to leave the matchmaking queue.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtside_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.APIRequests,
		s.APIRequestDuration,
		s.MatchActions,
		s.MatchmakingPolls,
		s.InvitesSent,
		s.QueueLeaveFailures,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) ObserveAPIRequest(operation string, outcome string, duration float64) {
	s.APIRequests.WithLabelValues(operation, outcome).Inc()
	s.APIRequestDuration.WithLabelValues(operation).Observe(duration)
}

func (s *Service) IncMatchActions(action string) {
	s.MatchActions.WithLabelValues(action).Inc()
}

func (s *Service) IncMatchmakingPolls(mode string) {
	s.MatchmakingPolls.WithLabelValues(mode).Inc()
}

func (s *Service) IncInvitesSent(mode string) {
	s.InvitesSent.WithLabelValues(mode).Inc()
}

func (s *Service) IncQueueLeaveFailures() {
	s.QueueLeaveFailures.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
