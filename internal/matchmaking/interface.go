package matchmaking

import (
	"context"

	"github.com/mauv0809/courtside/internal/courtside"
)

// API is the part of the backend client the lobbies use.
type API interface {
	FindMatch(ctx context.Context, token string, mode courtside.MatchType) (courtside.FindResult, error)
	LeaveQueue(ctx context.Context, token string, mode courtside.MatchType) error
	CreateInvite(ctx context.Context, req courtside.InviteRequest, token string) (courtside.Invite, error)
}

var _ API = (courtside.CourtsideClient)(nil)
