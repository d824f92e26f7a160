package slack

import (
	"fmt"
	"math"
	"strings"

	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/slack-go/slack"
)

// formatConfirmationResult creates the Slack message for a confirmed match using Block Kit.
func formatConfirmationResult(match courtside.PendingMatch, feedback *courtside.ConfirmationFeedback) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎾 Match confirmed! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	teams := match.Teams()
	detailsText := fmt.Sprintf("%s vs %s", players.FormatTeamNames(teams.A, ""), players.FormatTeamNames(teams.B, ""))
	if match.Score != "" {
		detailsText += "\nScore: " + match.Score
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	if feedback == nil {
		return slack.NewBlockMessage(blocks...)
	}

	names := make(map[string]string)
	for _, p := range teams.All() {
		names[p.AuthID] = p.Username
	}

	var fields []*slack.TextBlockObject
	for _, side := range []struct {
		title   string
		changes []courtside.EloChange
	}{
		{"Team A", feedback.UpdatedElos.SideA},
		{"Team B", feedback.UpdatedElos.SideB},
	} {
		if len(side.changes) == 0 {
			continue
		}
		lines := make([]string, 0, len(side.changes))
		for _, change := range side.changes {
			lines = append(lines, fmt.Sprintf("• %s: %s → %s (%s)",
				displayName(change.PlayerID, change.Username, names),
				formatElo(change.PreviousElo),
				formatElo(change.NewElo),
				formatDelta(change.Change),
			))
		}
		fields = append(fields, slack.NewTextBlockObject("plain_text", side.title+"\n"+strings.Join(lines, "\n"), true, false))
	}
	if len(fields) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Elo changes:", true, false), fields, nil))
	}

	var rankElements []slack.MixedElement
	for _, rank := range feedback.Ranks {
		name := displayName(rank.PlayerID, "", names)
		rankElements = append(rankElements, slack.NewTextBlockObject("plain_text", formatRank(name, rank), true, false))
	}
	if len(rankElements) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", rankElements...))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatInvite creates the Slack message for a new invite using Block Kit.
func formatInvite(invite courtside.Invite, req courtside.InviteRequest) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎾 New match invite! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	byTeam := map[int][]string{}
	for _, p := range req.Players {
		byTeam[p.Team] = append(byTeam[p.Team], p.Username)
	}
	detailsText := fmt.Sprintf("Mode: %s\nTeam 1: %s\nTeam 2: %s",
		req.Mode,
		strings.Join(byTeam[1], " & "),
		strings.Join(byTeam[2], " & "),
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	if invite.MatchID != "" {
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", "Invite "+invite.MatchID.String(), true, false)))
	}
	return slack.NewBlockMessage(blocks...)
}

func displayName(id courtside.ID, username string, names map[string]string) string {
	if username != "" {
		return username
	}
	if name, ok := names[id.String()]; ok && name != "" {
		return name
	}
	return players.DefaultDisplayName
}

func formatElo(v float64) string {
	return fmt.Sprintf("%.0f", math.Round(v))
}

func formatDelta(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.0f", math.Round(v))
	}
	return fmt.Sprintf("%.0f", math.Round(v))
}

func formatRank(name string, rank courtside.RankChange) string {
	switch {
	case rank.PreviousRank == nil:
		return fmt.Sprintf("%s enters the leaderboard at #%d", name, rank.NewRank)
	case rank.RankChange > 0:
		return fmt.Sprintf("%s is now #%d (up %d)", name, rank.NewRank, rank.RankChange)
	case rank.RankChange < 0:
		return fmt.Sprintf("%s is now #%d (down %d)", name, rank.NewRank, -rank.RankChange)
	default:
		return fmt.Sprintf("%s stays at #%d", name, rank.NewRank)
	}
}
