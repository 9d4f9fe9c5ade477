package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/database"
	"github.com/aissms/reeval-backend/internal/logger"
	"github.com/aissms/reeval-backend/internal/repository"
	"github.com/aissms/reeval-backend/internal/service"
)

func main() {
	var college string
	var publish bool
	flag.StringVar(&college, "college", "", "Reconcile a single college (default: all colleges)")
	flag.BoolVar(&publish, "publish", true, "Publish a reconcile event over Redis")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	var events service.EventPublisher = service.NopEventPublisher{}
	if publish {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, reconcile event will not be published")
		} else {
			defer rdb.Close()
			events = service.NewRedisEventPublisher(rdb)
		}
	}

	reconciler := service.NewReconcileService(repository.NewPgStore(pool), events, cfg.StoreTimeout, log)
	result, err := reconciler.ReconcileScope(ctx, college)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)

	if err != nil {
		log.Error().Err(err).Str("college", college).Msg("Reconciliation failed")
		os.Exit(1)
	}
}
