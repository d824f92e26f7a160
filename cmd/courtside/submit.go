package main

import (
	"fmt"

	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/match"
	"github.com/mauv0809/courtside/internal/pending"
	"github.com/mauv0809/courtside/internal/score"
	"github.com/spf13/cobra"
)

func init() {
	submitCmd.Flags().String("type", string(courtside.MatchTypeSingles), "Match type: singles or doubles")
	submitCmd.Flags().StringSlice("opponent", nil, "Opponent id (twice for doubles)")
	submitCmd.Flags().String("partner", "", "Partner id for doubles")
	submitCmd.Flags().StringSlice("set", nil, "Set score from your side, e.g. --set 6-4 --set 3-6")
	submitCmd.Flags().Bool("draw", false, "Record the match as a draw when the sets are level")
	_ = submitCmd.MarkFlagRequired("opponent")
	_ = submitCmd.MarkFlagRequired("set")

	rootCmd.AddCommand(submitCmd)
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a match result for your opponents to confirm",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		user, tok, err := a.currentUser()
		if err != nil {
			return err
		}
		typeFlag, _ := cmd.Flags().GetString("type")
		matchType, err := courtside.ParseMatchType(typeFlag)
		if err != nil {
			return err
		}
		setFlags, _ := cmd.Flags().GetStringSlice("set")
		sets, err := parseSets(setFlags)
		if err != nil {
			return err
		}
		opponents, _ := cmd.Flags().GetStringSlice("opponent")
		partner, _ := cmd.Flags().GetString("partner")

		form := match.Form{
			MatchType:   matchType,
			PartnerID:   partner,
			OpponentIDs: opponents,
			Sets:        sets,
		}
		if draw, _ := cmd.Flags().GetBool("draw"); draw {
			form.Outcome = score.OutcomeDraw
		}

		r := pending.New(pending.Config{
			API:           a.api,
			Events:        a.events,
			Metrics:       a.metrics,
			Token:         tok,
			CurrentUserID: user.AuthID,
			Policy:        a.policy(),
			DryRun:        dryRun,
		})
		if err := r.Submit(cmd.Context(), form); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s %s, waiting for confirmation\n", matchType, score.FormatSetsScore(sets))
		return nil
	}),
}
