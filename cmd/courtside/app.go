package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/notifier/slack"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/score"
	"github.com/mauv0809/courtside/internal/session"
	"github.com/spf13/cobra"
)

var errNoAPIURL = errors.New("no API URL: set COURTSIDE_API_URL or pass --api")

// app is everything a command needs, built once per invocation.
type app struct {
	cfg      config.Config
	sessions *session.Store
	usage    metrics.Store
	metrics  metrics.Metrics
	api      *courtside.APIClient
	notifier notifier.Notifier
	events   pubsub.PubSubClient
	teardown []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load(false)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	if cfg.LogFormat == "json" {
		log.SetFormatter(log.JSONFormatter)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	db, dbTeardown, err := database.InitDB(cfg.StateDB, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	a := &app{cfg: cfg, teardown: []func(){dbTeardown}}
	a.sessions = session.New(db)
	a.usage = metrics.New(db)
	a.metrics = metrics.NewRecorder(a.usage)

	var tokens courtside.TokenStore = a.sessions
	if token != "" {
		tokens = courtside.StaticToken(token)
	}
	a.api = courtside.NewClient(cfg.APIURL,
		courtside.WithTokenStore(tokens),
		courtside.WithMetrics(a.metrics),
		courtside.WithTimeout(cfg.HTTPTimeout),
	)

	if cfg.Slack.Enabled() {
		a.notifier = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, a.metrics)
	}
	if cfg.PubSub.Enabled() {
		events, err := pubsub.New(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicID)
		if err != nil {
			log.Warn("Match events disabled", "error", err)
		} else {
			a.events = events
			a.teardown = append(a.teardown, func() {
				if err := events.Close(); err != nil {
					log.Warn("Failed to close event publisher", "error", err)
				}
			})
		}
	}
	return a, nil
}

func (a *app) close() {
	for i := len(a.teardown) - 1; i >= 0; i-- {
		a.teardown[i]()
	}
}

// accessToken returns the token for API calls, or ErrAuthTokenMissing.
func (a *app) accessToken() (string, error) {
	tok := strings.TrimSpace(token)
	if tok == "" {
		stored, err := a.sessions.AccessToken()
		if err != nil {
			return "", err
		}
		tok = stored
	}
	if tok == "" {
		return "", courtside.ErrAuthTokenMissing
	}
	return tok, nil
}

// currentUser reads the player the access token belongs to.
func (a *app) currentUser() (players.Player, string, error) {
	if a.cfg.APIURL == "" {
		return players.Player{}, "", errNoAPIURL
	}
	tok, err := a.accessToken()
	if err != nil {
		return players.Player{}, "", err
	}
	user, err := auth.Identify(tok)
	if err != nil {
		return players.Player{}, "", err
	}
	return user, tok, nil
}

func (a *app) policy() score.Policy {
	if a.cfg.StrictTwoSets {
		return score.PolicyStrictTwoSets
	}
	return score.PolicyLenientTwoSets
}

// withApp wraps a command body with app setup and teardown.
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return run(cmd, args, a)
	}
}
