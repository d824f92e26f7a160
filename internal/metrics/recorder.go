package metrics

import "strings"

// Recorder implements Metrics on top of a Store, flattening labels into the
// counter key (e.g. "api_requests.confirm_match.success").
type Recorder struct {
	store Store
}

var _ Metrics = (*Recorder)(nil)

// NewRecorder creates a Recorder persisting into s.
func NewRecorder(s Store) *Recorder {
	return &Recorder{store: s}
}

func key(parts ...string) string {
	return strings.Join(parts, ".")
}

func (r *Recorder) ObserveAPIRequest(operation string, outcome string, _ float64) {
	r.store.Increment(key("api_requests", operation, outcome))
}

func (r *Recorder) IncMatchActions(action string) {
	r.store.Increment(key("match_actions", action))
}

func (r *Recorder) IncMatchmakingPolls(mode string) {
	r.store.Increment(key("matchmaking_polls", mode))
}

func (r *Recorder) IncInvitesSent(mode string) {
	r.store.Increment(key("invites_sent", mode))
}

func (r *Recorder) IncQueueLeaveFailures() {
	r.store.Increment("queue_leave_failures")
}

func (r *Recorder) IncSlackNotifSent() {
	r.store.Increment("slack_notifications_sent")
}

func (r *Recorder) IncSlackNotifFailed() {
	r.store.Increment("slack_notifications_failed")
}

// SetStartupTime is not persisted.
func (r *Recorder) SetStartupTime(float64) {}
