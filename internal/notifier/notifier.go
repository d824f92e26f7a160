package notifier

import "github.com/mauv0809/courtside/internal/courtside"

// Notifier defines a high-level interface for announcing match events to the club.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For confirmed matches, with the rating changes the backend applied
	SendConfirmationResult(match courtside.PendingMatch, feedback *courtside.ConfirmationFeedback, dryRun bool) error
	// For invites sent from the lobby
	SendInviteNotification(invite courtside.Invite, req courtside.InviteRequest, dryRun bool) error
}
