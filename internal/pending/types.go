package pending

import (
	"context"
	"errors"

	"github.com/mauv0809/courtside/internal/courtside"
)

var (
	ErrMatchNotFound    = errors.New("match is not in the pending list")
	ErrNotEditing       = errors.New("no match is being edited")
	ErrActionInProgress = errors.New("another action is still in progress")
)

// Prompter asks the user to confirm a destructive action.
type Prompter interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, message string) (bool, error)

func (f PrompterFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// AlwaysConfirm is a Prompter that accepts every prompt.
var AlwaysConfirm Prompter = PrompterFunc(func(context.Context, string) (bool, error) { return true, nil })

// View is a snapshot of the pending matches screen. Load failures are
// reported in LoadError, failed actions in ActionError; neither blocks
// further use.
type View struct {
	Loading     bool
	Incoming    []courtside.PendingMatch
	Outgoing    []courtside.PendingMatch
	LoadError   error
	ActionError error
	// Feedback is set after a successful confirmation until dismissed.
	Feedback *courtside.ConfirmationFeedback
	// Editing is the match whose edit form is open.
	Editing *courtside.PendingMatch
	Busy    bool
}

const deletePrompt = "Delete this match? This cannot be undone."
