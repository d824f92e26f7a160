package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/mauv0809/courtside/internal/pending"
	"github.com/mauv0809/courtside/internal/score"
	"github.com/spf13/cobra"
)

func init() {
	pendingDeleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking")
	pendingEditCmd.Flags().StringSlice("set", nil, "Set score from your side, e.g. --set 6-4 --set 3-6")
	pendingEditCmd.Flags().Bool("draw", false, "Record the match as a draw when the sets are level")
	_ = pendingEditCmd.MarkFlagRequired("set")

	pendingCmd.AddCommand(pendingListCmd, pendingConfirmCmd, pendingRejectCmd, pendingDeleteCmd, pendingEditCmd)
	rootCmd.AddCommand(pendingCmd)
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Review results waiting for confirmation",
}

// loadReconciler builds the reconciler for the current user and loads the
// pending list.
func loadReconciler(ctx context.Context, cmd *cobra.Command, a *app) (*pending.Reconciler, string, error) {
	user, tok, err := a.currentUser()
	if err != nil {
		return nil, "", err
	}
	r := pending.New(pending.Config{
		API:           a.api,
		Prompter:      stdinPrompter(cmd),
		Notifier:      a.notifier,
		Events:        a.events,
		Metrics:       a.metrics,
		Token:         tok,
		CurrentUserID: user.AuthID,
		Policy:        a.policy(),
		DryRun:        dryRun,
	})
	if err := r.Load(ctx); err != nil {
		return nil, "", err
	}
	return r, user.AuthID, nil
}

func stdinPrompter(cmd *cobra.Command) pending.Prompter {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return pending.AlwaysConfirm
	}
	return pending.PrompterFunc(func(ctx context.Context, message string) (bool, error) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", message)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return false, nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}

var pendingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incoming and outgoing pending matches",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		r, userID, err := loadReconciler(cmd.Context(), cmd, a)
		if err != nil {
			return err
		}
		printPending(cmd.OutOrStdout(), r.View(), userID)
		return nil
	}),
}

var pendingConfirmCmd = &cobra.Command{
	Use:   "confirm <match-id>",
	Short: "Confirm a result and apply the rating changes",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		r, _, err := loadReconciler(cmd.Context(), cmd, a)
		if err != nil {
			return err
		}
		id, err := resolveMatchID(r.View(), args[0])
		if err != nil {
			return err
		}
		feedback, err := r.Confirm(cmd.Context(), id)
		if err != nil {
			return err
		}
		printFeedback(cmd.OutOrStdout(), feedback)
		return nil
	}),
}

var pendingRejectCmd = &cobra.Command{
	Use:   "reject <match-id>",
	Short: "Dispute a submitted result",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		r, _, err := loadReconciler(cmd.Context(), cmd, a)
		if err != nil {
			return err
		}
		id, err := resolveMatchID(r.View(), args[0])
		if err != nil {
			return err
		}
		if err := r.Reject(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Match rejected")
		return nil
	}),
}

var pendingDeleteCmd = &cobra.Command{
	Use:   "delete <match-id>",
	Short: "Withdraw a result you submitted",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		r, _, err := loadReconciler(cmd.Context(), cmd, a)
		if err != nil {
			return err
		}
		id, err := resolveMatchID(r.View(), args[0])
		if err != nil {
			return err
		}
		deleted, err := r.Delete(cmd.Context(), id)
		if err != nil {
			return err
		}
		if deleted {
			fmt.Fprintln(cmd.OutOrStdout(), "Match deleted")
		}
		return nil
	}),
}

var pendingEditCmd = &cobra.Command{
	Use:   "edit <match-id>",
	Short: "Correct the score of a result you submitted",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		r, _, err := loadReconciler(cmd.Context(), cmd, a)
		if err != nil {
			return err
		}
		id, err := resolveMatchID(r.View(), args[0])
		if err != nil {
			return err
		}
		form, err := r.OpenEdit(id)
		if err != nil {
			return err
		}
		setFlags, _ := cmd.Flags().GetStringSlice("set")
		if form.Sets, err = parseSets(setFlags); err != nil {
			return err
		}
		if draw, _ := cmd.Flags().GetBool("draw"); draw {
			form.Outcome = score.OutcomeDraw
		}
		if err := r.EditSubmitForm(cmd.Context(), form); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Match updated: %s\n", score.FormatSetsScore(form.Sets))
		return nil
	}),
}
