package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"gbp_reviews/internal/adapters/gbp"
	"gbp_reviews/internal/adapters/googleauth"
	server "gbp_reviews/internal/adapters/http_server"
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

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// deps
	auth := googleauth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, cfg.GoogleRefreshToken)
	profile := gbp.New(gbp.Options{
		AccountOverride:  cfg.AccountID,
		LocationOverride: cfg.LocationID,
		RPS:              cfg.UpstreamRPS,
	})
	durable := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL())
	store := app.NewSnapshotStore(durable, app.NewMemoryTier())
	syncSvc := app.NewSyncService(auth, profile, store)
	gate := app.NewGate(cfg.SyncSecret)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Sync: syncSvc, Gate: gate, Auth: auth})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
