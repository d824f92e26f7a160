package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
// The API URL is only required when requireAPI is set; the sandbox runs
// without one.
func Load(requireAPI bool) Config {
	err := godotenv.Load()
	if err != nil {
		log.Debug("No .env file found, reading from environment variables")
	}

	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return ""
	}

	apiURL := os.Getenv("COURTSIDE_API_URL")
	if requireAPI {
		apiURL = getEnv("COURTSIDE_API_URL")
	}

	return Config{
		APIURL:        apiURL,
		StateDB:       getEnvDefault("COURTSIDE_STATE_DB", "courtside.db"),
		PollInterval:  getDuration("COURTSIDE_POLL_INTERVAL", 4*time.Second),
		HTTPTimeout:   getDuration("COURTSIDE_HTTP_TIMEOUT", 0),
		StrictTwoSets: getBool("COURTSIDE_STRICT_TWO_SETS"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
		SandboxPort:   getEnvDefault("SANDBOX_PORT", "8081"),
		SandboxSecret: getEnvDefault("SANDBOX_JWT_SECRET", "sandbox-secret"),
		Slack: SlackConfig{
			Token:     os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
		},
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		PubSub: PubSubConfig{
			ProjectID: os.Getenv("GCP_PROJECT"),
			TopicID:   os.Getenv("COURTSIDE_EVENTS_TOPIC"),
		},
	}
}

func getEnvDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn("Invalid duration, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return d
}

func getBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
