package notifier

import (
	"sync"

	"github.com/mauv0809/courtside/internal/courtside"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendConfirmationResultFunc func(match courtside.PendingMatch, feedback *courtside.ConfirmationFeedback, dryRun bool) error
	SendInviteNotificationFunc func(invite courtside.Invite, req courtside.InviteRequest, dryRun bool) error

	// Call records
	SendConfirmationResultCalls []ConfirmationCall
	SendInviteNotificationCalls []InviteCall
}

// ConfirmationCall holds the arguments for a call to SendConfirmationResult.
type ConfirmationCall struct {
	Match    courtside.PendingMatch
	Feedback *courtside.ConfirmationFeedback
	DryRun   bool
}

// InviteCall holds the arguments for a call to SendInviteNotification.
type InviteCall struct {
	Invite  courtside.Invite
	Request courtside.InviteRequest
	DryRun  bool
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendConfirmationResultCalls = nil
	m.SendInviteNotificationCalls = nil
}

func (m *Mock) SendConfirmationResult(match courtside.PendingMatch, feedback *courtside.ConfirmationFeedback, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendConfirmationResultCalls = append(m.SendConfirmationResultCalls, ConfirmationCall{match, feedback, dryRun})
	if m.SendConfirmationResultFunc != nil {
		return m.SendConfirmationResultFunc(match, feedback, dryRun)
	}
	return nil
}

func (m *Mock) SendInviteNotification(invite courtside.Invite, req courtside.InviteRequest, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendInviteNotificationCalls = append(m.SendInviteNotificationCalls, InviteCall{invite, req, dryRun})
	if m.SendInviteNotificationFunc != nil {
		return m.SendInviteNotificationFunc(invite, req, dryRun)
	}
	return nil
}
