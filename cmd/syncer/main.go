package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviewdash/internal/adapters/gbp"
	"reviewdash/internal/adapters/observability"
	redisad "reviewdash/internal/adapters/redis"
	"reviewdash/internal/app"
	"reviewdash/internal/domain"
	"reviewdash/internal/shared"
	mysqlrepo "reviewdash/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("base", cfg.GBPBase).
		Int("workers", cfg.Workers).
		Msg("syncer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := gbp.New(cfg.GBPBase, cfg.GBPRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize review platform client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewSyncService(client, repo, cache)

	businesses, err := repo.ListAllBusinesses(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list businesses failed")
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for _, b := range businesses {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(b domain.Business) {
			defer wg.Done()
			defer sem.Release(int64(1))

			bctx, cancel := context.WithTimeout(ctx, cfg.SyncBusinessLimit)
			defer cancel()

			res := svc.Sync(bctx, []domain.Business{b})
			msgs := res.Messages()
			observability.ObserveSync(res.Inserted, res.Updated, len(res.Rejected), len(res.Stored.Failed), len(msgs))
			if len(msgs) > 0 {
				log.Warn().Str("business", b.ID).Str("run", res.RunID).Strs("errors", msgs).Msg("sync finished with errors")
				return
			}
			log.Info().Str("business", b.ID).Str("run", res.RunID).Int("reviews", len(res.Reviews)).Msg("sync ok")
		}(b)
	}

	wg.Wait()
	log.Info().Int("businesses", len(businesses)).Msg("sync completed")
}
