package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DatabaseURL string

	DiscordToken string

	SlackToken             string
	SlackSigningSecret     string
	SlackVerificationToken string

	SessionTTL   time.Duration
	CookieSecure bool
	CORSOrigins  []string

	NotionSecretKey string

	Log LogConfig
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:                   getenv("PORT"),
		DatabaseURL:            getenv("DATABASE_URL"),
		DiscordToken:           getenv("DISCORD_TOKEN"),
		SlackToken:             getenv("SLACK_TOKEN"),
		SlackSigningSecret:     getenv("SLACK_SIGNING_SECRET"),
		SlackVerificationToken: getenv("SLACK_VERIFICATION_TOKEN"),
		CookieSecure:           getenv("COOKIE_SECURE") == "true" || getenv("COOKIE_SECURE") == "1",
		NotionSecretKey:        getenv("NOTION_SECRET_KEY"),
		SessionTTL:             time.Hour,
		Log: LogConfig{
			Level: getenv("LOG_LEVEL"),
			Dev:   getenv("LOG_DEV") == "1",
			File:  getenv("LOG_FILE"),
		},
	}
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
		if cfg.Log.Dev {
			cfg.Log.Level = "debug"
		}
	}

	if cfg.DatabaseURL == "" && getenv("DB_HOST") != "" {
		cfg.DatabaseURL = fmt.Sprintf("user=%v password=%v dbname=%v host=%v port=%v sslmode=disable",
			getenv("DB_USER"), getenv("DB_PASSWORD"), getenv("DB_NAME"), getenv("DB_HOST"), getenv("DB_PORT"))
	}
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("missing DATABASE_URL or DB_HOST")
	}

	if v := getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		if ttl <= 0 {
			return cfg, errors.New("SESSION_TTL must be positive")
		}
		cfg.SessionTTL = ttl
	}

	cfg.CORSOrigins = []string{"*"}
	if v := getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.DiscordToken == "" && cfg.SlackToken == "" {
		return cfg, errors.New("missing chat token: set DISCORD_TOKEN or SLACK_TOKEN")
	}
	if cfg.SlackToken != "" && cfg.SlackSigningSecret == "" {
		return cfg, errors.New("missing SLACK_SIGNING_SECRET")
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}
