package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"reviewdash/internal/adapters/auth"
	"reviewdash/internal/adapters/gbp"
	server "reviewdash/internal/adapters/http_server"
	"reviewdash/internal/adapters/observability"
	redisad "reviewdash/internal/adapters/redis"
	"reviewdash/internal/app"
	"reviewdash/internal/shared"
	mysqlrepo "reviewdash/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	client, err := gbp.New(cfg.GBPBase, cfg.GBPRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize review platform client")
	}

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	s := app.NewSyncService(client, repo, cache)

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(
		&server.Handlers{Q: q, S: s, DefaultDays: cfg.WindowDays},
		auth.Verifier{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer},
	)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
