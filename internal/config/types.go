package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	APIURL        string
	StateDB       string
	PollInterval  time.Duration
	HTTPTimeout   time.Duration
	StrictTwoSets bool
	LogFormat     string
	SandboxPort   string
	SandboxSecret string
	Slack         SlackConfig
	Turso         TursoConfig
	PubSub        PubSubConfig
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

// Enabled reports whether notifications can be sent.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type PubSubConfig struct {
	ProjectID string
	TopicID   string
}

// Enabled reports whether match events are published.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != "" && c.TopicID != ""
}
