package matchmaking

import (
	"errors"
	"time"

	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// State is the state of a lobby.
type State string

const (
	StateIdle          State = "idle"
	StateSearching     State = "searching"
	StateLoading       State = "loading"
	StateMatched       State = "matched"
	StateSuggested     State = "suggested"
	StateNoSuggestions State = "no_suggestions"
	StateError         State = "error"
	StateClosed        State = "closed"
)

// DefaultPollInterval is the pause between two queue polls.
const DefaultPollInterval = 4 * time.Second

// MaxRecommendations is the number of suggestions a lobby keeps.
const MaxRecommendations = 5

const (
	leaveTimeout      = 10 * time.Second
	inviteSentMessage = "Invite sent!"
)

var (
	ErrLobbyClosed             = errors.New("lobby is closed")
	ErrNotMatched              = errors.New("no opponent to invite yet")
	ErrMissingPlayerID         = errors.New("unable to resolve the player ids for the invite")
	ErrIncompleteDoublesInvite = errors.New("a doubles invite needs four different players")
	ErrNoRecommendation        = errors.New("no recommendation selected")
)

// Config wires a lobby. Metrics, Notifier and Events are optional.
type Config struct {
	API          API
	Token        string
	CurrentUser  players.Player
	PollInterval time.Duration
	Metrics      metrics.Metrics
	Notifier     notifier.Notifier
	Events       pubsub.PubSubClient
	DryRun       bool
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}
