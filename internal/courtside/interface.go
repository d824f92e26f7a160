package courtside

import "context"

// CourtsideClient defines the interface for interacting with the Courtside backend.
// This allows for mock implementations to be used in tests.
//
// Every token argument may be empty, in which case the client falls back to
// its TokenStore.
type CourtsideClient interface {
	GetPendingMatches(ctx context.Context, token string) (PendingMatches, error)
	ConfirmMatch(ctx context.Context, matchID ID, token string) (*ConfirmationFeedback, error)
	RejectMatch(ctx context.Context, matchID ID, token string) error
	DeleteMatch(ctx context.Context, matchID ID, token string) error
	EditMatch(ctx context.Context, matchID ID, payload MatchPayload, token string) error
	SubmitMatch(ctx context.Context, payload MatchPayload, token string) error
	FindMatch(ctx context.Context, token string, mode MatchType) (FindResult, error)
	LeaveQueue(ctx context.Context, token string, mode MatchType) error
	CreateInvite(ctx context.Context, req InviteRequest, token string) (Invite, error)
}

// TokenStore supplies the persisted access token when none is passed explicitly.
type TokenStore interface {
	AccessToken() (string, error)
}
