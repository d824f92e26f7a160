package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	apiURL  string
	token   string
	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "courtside",
	Short: "A CLI for Courtside match results and matchmaking",
	Long: `A command-line client for the Courtside padel platform: confirm or
dispute pending results, submit matches and find opponents.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Base URL of the Courtside API (defaults to COURTSIDE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Access token to use instead of the stored one")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Log Slack announcements instead of posting them")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
