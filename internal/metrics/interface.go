package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	ObserveAPIRequest(operation string, outcome string, duration float64)
	IncMatchActions(action string)
	IncMatchmakingPolls(mode string)
	IncInvitesSent(mode string)
	IncQueueLeaveFailures()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// Store persists named counters. The CLI is short lived, so its usage
// counters live in the state database rather than in a scrape target.
type Store interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
