package shared

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	AppEnv      string `env:"APP_ENV, default=prod"`
	HTTPAddr    string `env:"HTTP_ADDR, default=:8080"`
	MetricsAddr string `env:"METRICS_ADDR"`

	// Google OAuth client identity and the long-lived refresh token obtained
	// through the one-time interactive grant. The refresh token is consumed
	// read-only; this service never rotates or persists it.
	GoogleClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_OAUTH_REDIRECT_URI"`
	GoogleRefreshToken string `env:"GOOGLE_REFRESH_TOKEN"`

	// Optional overrides; when empty the first accessible account/location
	// is used.
	AccountID  string `env:"GBP_ACCOUNT_ID"`
	LocationID string `env:"GBP_LOCATION_ID"`

	RedisAddr string `env:"REDIS_ADDR, default=localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB, default=0"`

	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS, default=90000"`
	SyncSecret      string `env:"SYNC_SECRET"`
	UpstreamRPS     int    `env:"GBP_RPS, default=5"`
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func Load(ctx context.Context) (Config, error) {
	var c Config
	if err := envconfig.Process(ctx, &c); err != nil {
		return c, err
	}
	if c.GoogleRefreshToken == "" {
		log.Warn().Msg("GOOGLE_REFRESH_TOKEN is empty; synchronization will fail until the one-time grant is completed")
	}
	if c.SyncSecret == "" {
		log.Warn().Msg("SYNC_SECRET is empty; the manual trigger channel is disabled")
	}
	return c, nil
}
