// The syncer is the trusted-scheduler channel as a process: a cron job
// runs this binary, which performs one synchronization and exits.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"gbp_reviews/internal/adapters/gbp"
	"gbp_reviews/internal/adapters/googleauth"
	"gbp_reviews/internal/adapters/observability"
	redisad "gbp_reviews/internal/adapters/redis"
	"gbp_reviews/internal/app"
	"gbp_reviews/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg, err := shared.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	log.Logger = observability.NewLogger(cfg.AppEnv)
	log.Info().Msg("syncer starting")

	auth := googleauth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, cfg.GoogleRefreshToken)
	profile := gbp.New(gbp.Options{
		AccountOverride:  cfg.AccountID,
		LocationOverride: cfg.LocationID,
		RPS:              cfg.UpstreamRPS,
	})
	durable := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL())
	store := app.NewSnapshotStore(durable, app.NewMemoryTier())
	syncSvc := app.NewSyncService(auth, profile, store)

	start := time.Now()
	snap, err := syncSvc.Synchronize(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("synchronization failed")
	}
	log.Info().
		Int("synced", len(snap.Reviews)).
		Float64("rating", snap.Rating).
		Dur("duration", time.Since(start)).
		Msg("synchronization completed")
}
