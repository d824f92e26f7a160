package pubsub

import (
	"context"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// MockPubSubClient is a mock implementation of PubSubClient for testing.
// It is safe for concurrent use.
type MockPubSubClient struct {
	mu sync.Mutex

	// Spies for method calls
	SendMessageFunc func(event EventType, data any) error

	// Call records
	SendMessageCalls []SendMessageCall
	Closed           bool
}

// SendMessageCall holds the arguments for a call to SendMessage.
type SendMessageCall struct {
	Event EventType
	Data  any
}

var _ PubSubClient = (*MockPubSubClient)(nil)

// NewMock creates a new mock PubSubClient.
func NewMock() *MockPubSubClient {
	return &MockPubSubClient{}
}

// Reset clears all call records.
func (m *MockPubSubClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMessageCalls = nil
}

// SendMessage records the call and executes the mock function if provided.
func (m *MockPubSubClient) SendMessage(_ context.Context, event EventType, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMessageCalls = append(m.SendMessageCalls, SendMessageCall{Event: event, Data: data})
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(event, data)
	}
	return nil
}

// ProcessMessage decodes msgpack like the real client.
func (m *MockPubSubClient) ProcessMessage(data []byte, returnValue any) error {
	return msgpack.Unmarshal(data, returnValue)
}

func (m *MockPubSubClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Events returns the event types sent so far, in order.
func (m *MockPubSubClient) Events() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]EventType, 0, len(m.SendMessageCalls))
	for _, call := range m.SendMessageCalls {
		events = append(events, call.Event)
	}
	return events
}
