package courtside

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of the CourtsideClient interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	GetPendingMatchesFunc func(ctx context.Context, token string) (PendingMatches, error)
	ConfirmMatchFunc      func(ctx context.Context, matchID ID, token string) (*ConfirmationFeedback, error)
	RejectMatchFunc       func(ctx context.Context, matchID ID, token string) error
	DeleteMatchFunc       func(ctx context.Context, matchID ID, token string) error
	EditMatchFunc         func(ctx context.Context, matchID ID, payload MatchPayload, token string) error
	SubmitMatchFunc       func(ctx context.Context, payload MatchPayload, token string) error
	FindMatchFunc         func(ctx context.Context, token string, mode MatchType) (FindResult, error)
	LeaveQueueFunc        func(ctx context.Context, token string, mode MatchType) error
	CreateInviteFunc      func(ctx context.Context, req InviteRequest, token string) (Invite, error)

	// Call records
	GetPendingMatchesCalls int
	ConfirmMatchCalls      []ID
	RejectMatchCalls       []ID
	DeleteMatchCalls       []ID
	EditMatchCalls         []EditMatchCall
	SubmitMatchCalls       []MatchPayload
	FindMatchCalls         []MatchType
	LeaveQueueCalls        []MatchType
	CreateInviteCalls      []InviteRequest
}

// EditMatchCall records the arguments of an EditMatch call.
type EditMatchCall struct {
	MatchID ID
	Payload MatchPayload
}

var _ CourtsideClient = (*MockClient)(nil)

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPendingMatchesCalls = 0
	m.ConfirmMatchCalls = nil
	m.RejectMatchCalls = nil
	m.DeleteMatchCalls = nil
	m.EditMatchCalls = nil
	m.SubmitMatchCalls = nil
	m.FindMatchCalls = nil
	m.LeaveQueueCalls = nil
	m.CreateInviteCalls = nil
}

func (m *MockClient) GetPendingMatches(ctx context.Context, token string) (PendingMatches, error) {
	m.mu.Lock()
	m.GetPendingMatchesCalls++
	fn := m.GetPendingMatchesFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, token)
	}
	return PendingMatches{}, nil
}

func (m *MockClient) ConfirmMatch(ctx context.Context, matchID ID, token string) (*ConfirmationFeedback, error) {
	m.mu.Lock()
	m.ConfirmMatchCalls = append(m.ConfirmMatchCalls, matchID)
	fn := m.ConfirmMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, token)
	}
	return nil, nil
}

func (m *MockClient) RejectMatch(ctx context.Context, matchID ID, token string) error {
	m.mu.Lock()
	m.RejectMatchCalls = append(m.RejectMatchCalls, matchID)
	fn := m.RejectMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, token)
	}
	return nil
}

func (m *MockClient) DeleteMatch(ctx context.Context, matchID ID, token string) error {
	m.mu.Lock()
	m.DeleteMatchCalls = append(m.DeleteMatchCalls, matchID)
	fn := m.DeleteMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, token)
	}
	return nil
}

func (m *MockClient) EditMatch(ctx context.Context, matchID ID, payload MatchPayload, token string) error {
	m.mu.Lock()
	m.EditMatchCalls = append(m.EditMatchCalls, EditMatchCall{MatchID: matchID, Payload: payload})
	fn := m.EditMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, payload, token)
	}
	return nil
}

func (m *MockClient) SubmitMatch(ctx context.Context, payload MatchPayload, token string) error {
	m.mu.Lock()
	m.SubmitMatchCalls = append(m.SubmitMatchCalls, payload)
	fn := m.SubmitMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, payload, token)
	}
	return nil
}

func (m *MockClient) FindMatch(ctx context.Context, token string, mode MatchType) (FindResult, error) {
	m.mu.Lock()
	m.FindMatchCalls = append(m.FindMatchCalls, mode)
	fn := m.FindMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, token, mode)
	}
	return FindResult{State: FindStateSearching}, nil
}

func (m *MockClient) LeaveQueue(ctx context.Context, token string, mode MatchType) error {
	m.mu.Lock()
	m.LeaveQueueCalls = append(m.LeaveQueueCalls, mode)
	fn := m.LeaveQueueFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, token, mode)
	}
	return nil
}

func (m *MockClient) CreateInvite(ctx context.Context, req InviteRequest, token string) (Invite, error) {
	m.mu.Lock()
	m.CreateInviteCalls = append(m.CreateInviteCalls, req)
	fn := m.CreateInviteFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req, token)
	}
	return Invite{Status: InviteStatusInvite}, nil
}

// FindMatchCount returns the number of FindMatch calls so far.
func (m *MockClient) FindMatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.FindMatchCalls)
}

// LeaveQueueModes returns a copy of the modes LeaveQueue was called with.
func (m *MockClient) LeaveQueueModes() []MatchType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MatchType(nil), m.LeaveQueueCalls...)
}
