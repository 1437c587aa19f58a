package config

import (
	"errors"
	"fmt"
	"os"
	"teamstats/internal/constants"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var ErrMissingCredentials = errors.New("CONSUMER_KEY and CONSUMER_SECRET are required")

// Options carries the command-line surface into the container.
type Options struct {
	CheckinPath string
	RosterPath  string
	OutputPath  string
	TokensPath  string
	ArchivePath string
	Member      string
}

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string

	LookupURL  string
	BatchDelay time.Duration

	ArchivePath string
	TokensPath  string
	LogLevel    string
}

func Load(opts Options, logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	delay, err := time.ParseDuration(getEnv("LOOKUP_BATCH_DELAY", constants.LookupBatchDelay.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid LOOKUP_BATCH_DELAY: %w", err)
	}
	if delay < constants.LookupBatchDelay {
		return nil, fmt.Errorf("LOOKUP_BATCH_DELAY must be at least %s, got %s", constants.LookupBatchDelay, delay)
	}

	cfg := &Config{
		ConsumerKey:    getEnv("CONSUMER_KEY", ""),
		ConsumerSecret: getEnv("CONSUMER_SECRET", ""),
		AccessToken:    getEnv("ACCESS_TOKEN", ""),
		AccessSecret:   getEnv("ACCESS_SECRET", ""),
		LookupURL:      getEnv("TWITTER_LOOKUP_URL", constants.TwitterLookupURL),
		BatchDelay:     delay,
		ArchivePath:    firstNonEmpty(opts.ArchivePath, getEnv("ARCHIVE_DB", "")),
		TokensPath:     firstNonEmpty(opts.TokensPath, getEnv("CHECKIN_TOKENS", "")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	logger.Info().
		Str("archive_path", cfg.ArchivePath).
		Str("tokens_path", cfg.TokensPath).
		Str("lookup_url", cfg.LookupURL).
		Dur("batch_delay", cfg.BatchDelay).
		Str("log_level", cfg.LogLevel).
		Bool("preauthorized", cfg.HasAccessToken()).
		Msg("configuration loaded")

	return cfg, nil
}

// ValidateCredentials is checked only by components that talk to the lookup API.
func (c *Config) ValidateCredentials() error {
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

func (c *Config) HasAccessToken() bool {
	return c.AccessToken != "" && c.AccessSecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var Module = fx.Provide(Load)
