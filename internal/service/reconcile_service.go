package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/priority"
	"github.com/aissms/reeval-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ReconcileService keeps persisted urgency labels in line with the classifier.
type ReconcileService struct {
	store   repository.TxStore
	events  EventPublisher
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(store repository.TxStore, events EventPublisher, timeout time.Duration, log zerolog.Logger) *ReconcileService {
	return &ReconcileService{
		store:   store,
		events:  events,
		timeout: timeout,
		now:     time.Now,
		log:     log.With().Str("component", "reconcile_service").Logger(),
	}
}

// Reconcile classifies every request and writes the changed urgency labels
// back in a single transaction. Rows whose label already matches are left
// alone. Status is never touched. On failure nothing is applied and the
// returned error wraps ErrReconcileFailed.
func (s *ReconcileService) Reconcile(ctx context.Context, requests []model.Request, students []model.Student) (*model.ReconcileResult, error) {
	result := &model.ReconcileResult{Total: len(requests)}

	idx := priority.IndexStudents(students)
	var changed []model.UrgencyUpdate
	for _, req := range requests {
		p := priority.Classify(req, idx.Lookup(req))
		if req.Urgency != p.Urgency {
			changed = append(changed, model.UrgencyUpdate{ID: req.ID, Urgency: p.Urgency})
		}
	}
	if len(changed) == 0 {
		result.Success = true
		return result, nil
	}

	wctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	err := s.store.InTx(wctx, func(tx repository.Store) error {
		return tx.UpdateRequestUrgencies(wctx, changed)
	})
	if err != nil {
		result.Error = err.Error()
		s.log.Error().Err(err).Int("total", result.Total).Int("changed", len(changed)).Msg("Reconciliation rolled back")
		return result, fmt.Errorf("%w: %w", ErrReconcileFailed, err)
	}

	result.Success = true
	result.Changed = len(changed)
	return result, nil
}

// ReconcileScope loads the working set of a college (or every college when
// empty) and reconciles it. Each store step gets its own timeout. Cached
// evaluator counters are refreshed afterwards on a best-effort basis.
func (s *ReconcileService) ReconcileScope(ctx context.Context, college string) (*model.ReconcileResult, error) {
	var requests []model.Request
	err := s.step(ctx, func(ctx context.Context) (err error) {
		requests, err = s.store.ListRequests(ctx, model.RequestFilter{College: college})
		return err
	})
	if err != nil {
		return &model.ReconcileResult{Error: err.Error()}, fmt.Errorf("%w: load requests: %w", ErrReconcileFailed, err)
	}

	var students []model.Student
	err = s.step(ctx, func(ctx context.Context) (err error) {
		students, err = s.store.ListStudents(ctx, college)
		return err
	})
	if err != nil {
		return &model.ReconcileResult{Total: len(requests), Error: err.Error()}, fmt.Errorf("%w: load students: %w", ErrReconcileFailed, err)
	}

	result, err := s.Reconcile(ctx, requests, students)
	if err != nil {
		return result, err
	}

	now := s.now()
	err = s.step(ctx, func(ctx context.Context) error {
		return s.store.RefreshEvaluatorCounters(ctx, college, now)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("college", college).Msg("Failed to refresh evaluator counters")
	}

	s.log.Info().
		Str("college", college).
		Int("total", result.Total).
		Int("changed", result.Changed).
		Msg("Urgencies reconciled")

	ev := model.RequestEvent{Type: model.EventRequestsReconciled, College: college, Changed: result.Changed, At: now}
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn().Err(err).Msg("Failed to publish reconcile event")
	}
	return result, nil
}

func (s *ReconcileService) step(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}
