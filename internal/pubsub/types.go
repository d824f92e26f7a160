package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// EventType represents the type of event/message sent via pubsub. It is sent
// as the "event" attribute of every message.
type EventType string

const (
	EventMatchSubmitted EventType = "match-submitted"
	EventMatchConfirmed EventType = "match-confirmed"
	EventMatchRejected  EventType = "match-rejected"
	EventMatchDeleted   EventType = "match-deleted"
	EventMatchEdited    EventType = "match-edited"
	EventInviteSent     EventType = "invite-sent"
)

// EventAttribute is the message attribute carrying the EventType.
const EventAttribute = "event"

// MatchEvent is the payload of the match-* events.
type MatchEvent struct {
	MatchID    string   `msgpack:"match_id"`
	UserID     string   `msgpack:"user_id"`
	MatchType  string   `msgpack:"match_type,omitempty"`
	Score      string   `msgpack:"score,omitempty"`
	WinnerTeam string   `msgpack:"winner_team,omitempty"`
	TeamA      []string `msgpack:"team_a,omitempty"`
	TeamB      []string `msgpack:"team_b,omitempty"`
	OccurredAt int64    `msgpack:"occurred_at"`
}

// InviteEvent is the payload of the invite-sent event.
type InviteEvent struct {
	MatchID    string   `msgpack:"match_id"`
	UserID     string   `msgpack:"user_id"`
	Mode       string   `msgpack:"mode"`
	PlayerIDs  []string `msgpack:"player_ids"`
	OccurredAt int64    `msgpack:"occurred_at"`
}
