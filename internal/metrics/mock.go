package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	apiRequests        map[string]int
	matchActions       map[string]int
	matchmakingPolls   map[string]int
	invitesSent        map[string]int
	queueLeaveFailures int
	slackNotifSent     int
	slackNotifFailed   int
	startupTime        float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		apiRequests:      make(map[string]int),
		matchActions:     make(map[string]int),
		matchmakingPolls: make(map[string]int),
		invitesSent:      make(map[string]int),
	}
}

func (m *Mock) ObserveAPIRequest(operation string, outcome string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiRequests[key(operation, outcome)]++
}

func (m *Mock) IncMatchActions(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchActions[action]++
}

func (m *Mock) IncMatchmakingPolls(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchmakingPolls[mode]++
}

func (m *Mock) IncInvitesSent(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invitesSent[mode]++
}

func (m *Mock) IncQueueLeaveFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueLeaveFailures++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// APIRequests returns how often an operation finished with the given outcome.
func (m *Mock) APIRequests(operation, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apiRequests[key(operation, outcome)]
}

// MatchActions returns the number of times IncMatchActions was called for action.
func (m *Mock) MatchActions(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchActions[action]
}

// MatchmakingPolls returns the number of polls recorded for mode.
func (m *Mock) MatchmakingPolls(mode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchmakingPolls[mode]
}

// InvitesSent returns the number of invites recorded for mode.
func (m *Mock) InvitesSent(mode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invitesSent[mode]
}

// QueueLeaveFailures returns the number of times IncQueueLeaveFailures was called.
func (m *Mock) QueueLeaveFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queueLeaveFailures
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
