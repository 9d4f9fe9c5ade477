package worker

import (
	"context"
	"time"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Reconciler runs one reconciliation pass over a college, or all colleges
// when college is empty.
type Reconciler interface {
	ReconcileScope(ctx context.Context, college string) (*model.ReconcileResult, error)
}

// ReconcileWorker periodically re-derives urgency labels for every college.
type ReconcileWorker struct {
	reconciler Reconciler
	rdb        *redis.Client
	interval   time.Duration
	log        zerolog.Logger
}

// NewReconcileWorker creates a worker that reconciles every interval. When
// rdb is non-nil a Redis lock keeps replicas from running the same pass.
func NewReconcileWorker(reconciler Reconciler, rdb *redis.Client, interval time.Duration, log zerolog.Logger) *ReconcileWorker {
	return &ReconcileWorker{
		reconciler: reconciler,
		rdb:        rdb,
		interval:   interval,
		log:        log.With().Str("component", "reconcile_worker").Logger(),
	}
}

// Start blocks until ctx is cancelled.
func (w *ReconcileWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info().Msg("ReconcileWorker disabled")
		return
	}
	w.log.Info().Dur("interval", w.interval).Msg("ReconcileWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ReconcileWorker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReconcileWorker) runOnce(ctx context.Context) {
	if !w.acquire(ctx) {
		w.log.Debug().Msg("Another replica holds the reconcile lock, skipping")
		return
	}

	start := time.Now()
	result, err := w.reconciler.ReconcileScope(ctx, "")
	if err != nil {
		w.log.Error().Err(err).Msg("Periodic reconciliation failed")
		return
	}
	w.log.Info().
		Int("total", result.Total).
		Int("changed", result.Changed).
		Dur("took", time.Since(start)).
		Msg("Periodic reconciliation done")
}

// acquire takes the reconcile lock for just under one interval. Redis
// errors let the pass run.
func (w *ReconcileWorker) acquire(ctx context.Context) bool {
	if w.rdb == nil {
		return true
	}
	ttl := w.interval - w.interval/10
	ok, err := w.rdb.SetNX(ctx, config.CacheKey.ReconcileLockKey(), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		w.log.Warn().Err(err).Msg("Reconcile lock unavailable, running anyway")
		return true
	}
	return ok
}
