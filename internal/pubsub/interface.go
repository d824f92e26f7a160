package pubsub

import "context"

// PubSubClient publishes client events and decodes them on the consuming side.
type PubSubClient interface {
	SendMessage(ctx context.Context, event EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Close() error
}
