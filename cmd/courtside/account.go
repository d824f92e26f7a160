package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(statsCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the --token access token for later commands",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		tok := strings.TrimSpace(token)
		if tok == "" {
			return courtside.ErrAuthTokenMissing
		}
		user, err := auth.Identify(tok)
		if err != nil {
			return err
		}
		if err := a.sessions.SetAccessToken(tok); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Username)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token and session",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.sessions.ClearAccessToken(); err != nil {
			return err
		}
		if err := a.sessions.ClearSession(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the player the access token belongs to",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		tok, err := a.accessToken()
		if err != nil {
			return err
		}
		user, err := auth.Identify(tok)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Username, user.AuthID)
		return nil
	}),
}

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Show or set the colour theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(session.ThemeLight), string(session.ThemeDark)},
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if len(args) == 1 {
			if err := a.sessions.SetThemeMode(session.ThemeMode(strings.ToLower(args[0]))); err != nil {
				return err
			}
		}
		mode, err := a.sessions.ThemeMode()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", mode)
		return nil
	}),
}

var recoverCmd = &cobra.Command{
	Use:   "recover [link]",
	Short: "Start a password recovery from the emailed link, or show the saved one",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if len(args) == 0 {
			rec, err := a.sessions.Recovery()
			if errors.Is(err, session.ErrNoRecovery) {
				fmt.Fprintln(cmd.OutOrStdout(), "No password recovery in progress")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password recovery in progress, %s\n", describeRecovery(rec, time.Now()))
			return nil
		}

		rec, err := session.ParseRecoveryFragment(args[0], time.Now())
		if err != nil {
			return err
		}
		if err := a.sessions.SaveRecovery(rec); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recovery session saved, %s\n", describeRecovery(rec, time.Now()))
		return nil
	}),
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show local usage counters",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		counters, err := a.usage.GetAll()
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(counters))
		for k := range counters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%-45s %d\n", k, counters[k])
		}
		return nil
	}),
}
