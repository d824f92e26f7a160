package main

import (
	"fmt"

	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/matchmaking"
	"github.com/spf13/cobra"
)

func init() {
	for _, c := range []*cobra.Command{lobbyCmd, suggestCmd} {
		c.Flags().String("mode", string(courtside.MatchTypeSingles), "Queue to join: singles or doubles")
		c.Flags().Bool("invite", false, "Send an invite once an opponent is found")
	}
	suggestCmd.Flags().Int("pick", 1, "Suggestion to invite, counting from 1")

	rootCmd.AddCommand(lobbyCmd)
	rootCmd.AddCommand(suggestCmd)
}

func lobbyConfig(cmd *cobra.Command, a *app) (matchmaking.Config, courtside.MatchType, error) {
	user, tok, err := a.currentUser()
	if err != nil {
		return matchmaking.Config{}, "", err
	}
	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := courtside.ParseMatchType(modeFlag)
	if err != nil {
		return matchmaking.Config{}, "", err
	}
	return matchmaking.Config{
		API:          a.api,
		Token:        tok,
		CurrentUser:  user,
		PollInterval: a.cfg.PollInterval,
		Metrics:      a.metrics,
		Notifier:     a.notifier,
		Events:       a.events,
		DryRun:       dryRun,
	}, mode, nil
}

var lobbyCmd = &cobra.Command{
	Use:   "lobby",
	Short: "Wait in the matchmaking queue until an opponent is found",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		cfg, mode, err := lobbyConfig(cmd, a)
		if err != nil {
			return err
		}
		lobby := matchmaking.NewLobby(cfg)
		defer lobby.Close()

		if err := lobby.Open(cmd.Context(), mode); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Searching for a %s match, press Ctrl-C to leave the queue...\n", mode)

		snap, err := lobby.Wait(cmd.Context())
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Left the queue")
			return nil
		}
		if snap.State == matchmaking.StateError {
			return snap.Err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Matched with %s\n", snap.OpponentName())

		if invite, _ := cmd.Flags().GetBool("invite"); !invite {
			return nil
		}
		inv, err := lobby.SendInvite(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", lobby.Snapshot().Message, inv.MatchID)
		return nil
	}),
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show opponents with a similar rating",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		cfg, mode, err := lobbyConfig(cmd, a)
		if err != nil {
			return err
		}
		lobby := matchmaking.NewSuggestionsLobby(cfg, mode)
		defer lobby.Close()

		if err := lobby.Load(cmd.Context()); err != nil {
			return err
		}
		snap := lobby.Snapshot()
		if snap.State == matchmaking.StateNoSuggestions {
			fmt.Fprintln(cmd.OutOrStdout(), "No suggestions right now, try again later")
			return nil
		}
		if c := snap.Criteria; c != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Players around Elo %.0f (±%.0f):\n", c.TargetElo, c.Range)
		}
		for i, rec := range snap.Recommendations {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, matchmaking.Describe(rec))
		}

		if invite, _ := cmd.Flags().GetBool("invite"); !invite {
			return nil
		}
		pick, _ := cmd.Flags().GetInt("pick")
		if _, ok := lobby.Select(pick - 1); !ok {
			return fmt.Errorf("no suggestion %d", pick)
		}
		inv, err := lobby.SendInvite(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", lobby.Snapshot().Message, inv.MatchID)
		return nil
	}),
}
