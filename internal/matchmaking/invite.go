package matchmaking

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/mauv0809/courtside/internal/pubsub"
)

// BuildInvitePlayers assembles the invite roster for a recommendation. The
// current user is always on team 1. Singles takes the opponent from
// "player", "opponent" or the recommendation itself. Doubles takes
// "partner" and "opponents", or else the recommendation's teams, and needs
// four different resolvable players.
func BuildInvitePlayers(mode courtside.MatchType, me players.Player, rec map[string]any) ([]courtside.InvitePlayer, error) {
	if me.AuthID == "" {
		return nil, ErrMissingPlayerID
	}
	self := courtside.InvitePlayer{AuthID: me.AuthID, Username: me.Username, Team: 1}

	if mode != courtside.MatchTypeDoubles {
		opponent := firstPresent(rec, "player", "opponent")
		if opponent == nil {
			opponent = rec
		}
		id, ok := players.PlayerAuthID(opponent)
		if !ok || id == "" || id == me.AuthID {
			return nil, ErrMissingPlayerID
		}
		return []courtside.InvitePlayer{
			self,
			{AuthID: id, Username: players.PlayerDisplayName(opponent), Team: 2},
		}, nil
	}

	var partners, opponents []players.Player
	if partner := firstPresent(rec, "partner"); partner != nil {
		partners = players.NormalizeTeam([]any{partner}, players.TeamA)
		opponents = players.NormalizeTeam(rec["opponents"], players.TeamB)
	} else {
		teams := players.NormalizeMatchPlayers(rec)
		for _, p := range teams.A {
			if p.AuthID != me.AuthID {
				partners = append(partners, p)
			}
		}
		opponents = teams.B
	}

	roster := []courtside.InvitePlayer{self}
	seen := map[string]bool{me.AuthID: true}
	add := func(team []players.Player, tag, limit int) {
		n := 0
		for _, p := range team {
			if n == limit {
				return
			}
			if p.AuthID == "" || seen[p.AuthID] {
				continue
			}
			seen[p.AuthID] = true
			roster = append(roster, courtside.InvitePlayer{AuthID: p.AuthID, Username: p.Username, Team: tag})
			n++
		}
	}
	add(partners, 1, 1)
	add(opponents, 2, 2)
	if len(roster) != 4 {
		return nil, ErrIncompleteDoublesInvite
	}
	return roster, nil
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// sendInvite sends the invite and reports it. Shared by both lobbies.
func sendInvite(ctx context.Context, cfg Config, req courtside.InviteRequest) (courtside.Invite, error) {
	invite, err := cfg.API.CreateInvite(ctx, req, cfg.Token)
	if err != nil {
		log.Warn("Failed to send match invite", "mode", req.Mode, "error", err)
		return courtside.Invite{}, err
	}
	log.Info("Match invite sent", "mode", req.Mode, "matchID", invite.MatchID)

	if cfg.Metrics != nil {
		cfg.Metrics.IncInvitesSent(string(req.Mode))
	}
	if cfg.Notifier != nil {
		if err := cfg.Notifier.SendInviteNotification(invite, req, cfg.DryRun); err != nil {
			log.Warn("Failed to announce invite", "error", err)
		}
	}
	if cfg.Events != nil {
		ids := make([]string, 0, len(req.Players))
		for _, p := range req.Players {
			ids = append(ids, p.AuthID)
		}
		event := pubsub.InviteEvent{
			MatchID:    invite.MatchID.String(),
			UserID:     cfg.CurrentUser.AuthID,
			Mode:       string(req.Mode),
			PlayerIDs:  ids,
			OccurredAt: time.Now().Unix(),
		}
		if err := cfg.Events.SendMessage(ctx, pubsub.EventInviteSent, event); err != nil {
			log.Warn("Failed to publish event", "event", pubsub.EventInviteSent, "error", err)
		}
	}
	return invite, nil
}

// leaveQueue removes the user from mode's queue. Failures are only logged.
func leaveQueue(cfg Config, mode courtside.MatchType) {
	ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
	defer cancel()
	if err := cfg.API.LeaveQueue(ctx, cfg.Token, mode); err != nil {
		log.Warn("Failed to leave matchmaking queue", "mode", mode, "error", err)
		if cfg.Metrics != nil {
			cfg.Metrics.IncQueueLeaveFailures()
		}
		return
	}
	log.Debug("Left matchmaking queue", "mode", mode)
}
