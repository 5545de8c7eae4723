package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	server "propsite/internal/adapters/http_server"
	"propsite/internal/adapters/observability"
	redisad "propsite/internal/adapters/redis"
	"propsite/internal/app"
	"propsite/internal/domain"
	"propsite/internal/shared"
	"propsite/internal/versions"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	st, err := shared.OpenStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage failed")
	}
	defer st.Close()

	// deps
	var cache domain.Cache
	if cfg.UseRedis() {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CachePrefix)
		defer rc.Close()
		cache = rc
	}
	store := versions.New(st.Records)
	q := app.NewQueryService(store, st.Files, cache, cfg.CacheTTL(), cfg.DefaultLang)
	p := app.NewPropertyService(store, st.Files, cache, cfg.PublishWorkers)

	// http
	srv := server.New(cfg.Timeout(), cfg.TrustProxy)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:     q,
		P:     p,
		Users: st.Files,
		Guest: server.NewGuestLimiter(cfg.GuestRPS, cfg.GuestBurst),
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.StorageDriver).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
