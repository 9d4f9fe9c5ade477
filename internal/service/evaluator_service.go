package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Number of queue rows shown on the evaluator dashboard.
const dashboardQueueSize = 10

// EvaluatorService serves evaluator login, dashboard and listings.
type EvaluatorService struct {
	store   repository.Store
	timeout time.Duration
	log     zerolog.Logger
}

// NewEvaluatorService creates a new EvaluatorService.
func NewEvaluatorService(store repository.Store, timeout time.Duration, log zerolog.Logger) *EvaluatorService {
	return &EvaluatorService{
		store:   store,
		timeout: timeout,
		log:     log.With().Str("component", "evaluator_service").Logger(),
	}
}

// Login checks an evaluator's registration numbers.
func (s *EvaluatorService) Login(ctx context.Context, regNo, sppuRegNo string) (*model.Evaluator, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	ev, err := s.store.GetEvaluator(ctx, regNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get evaluator: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(ev.SppuRegNo), []byte(sppuRegNo)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return ev, nil
}

// Dashboard aggregates the evaluator's metrics and work queue at now.
func (s *EvaluatorService) Dashboard(ctx context.Context, regNo string, now time.Time) (*model.EvaluatorDashboard, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	ev, err := s.store.GetEvaluator(ctx, regNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEvaluatorNotFound
		}
		return nil, fmt.Errorf("get evaluator: %w", err)
	}

	stats, err := s.store.GetEvaluatorStats(ctx, ev, now)
	if err != nil {
		return nil, err
	}
	queue, err := s.store.ListEvaluatorQueue(ctx, ev, dashboardQueueSize)
	if err != nil {
		return nil, fmt.Errorf("list evaluator queue: %w", err)
	}

	dash := &model.EvaluatorDashboard{
		Metrics: model.DashboardMetrics{
			PendingReview:     stats.PendingReview,
			UnderReview:       stats.UnderReview,
			CompletedToday:    stats.CompletedToday,
			AverageTime:       math.Round(stats.AverageHours*10) / 10,
			HighPriorityCount: stats.HighPriority,
			FinalStageCount:   stats.FinalStage,
			CompletedChange:   stats.CompletedToday - stats.CompletedYesterday,
		},
		PendingRequests: make([]model.QueueItem, 0, len(queue)),
	}
	for _, q := range queue {
		dash.PendingRequests = append(dash.PendingRequests, model.QueueItem{
			ID:      fmt.Sprintf("REQ%03d", q.ID),
			Student: q.StudentRegNo,
			Subject: q.SubjectName,
			Status:  q.Status,
			Urgency: q.Urgency,
			Date:    q.RequestDate.Format("2006-01-02"),
		})
	}
	return dash, nil
}

// ListSubjects returns the subjects an evaluator reviews.
func (s *EvaluatorService) ListSubjects(ctx context.Context, regNo string) ([]model.EvaluatorSubject, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	subjects, err := s.store.ListEvaluatorSubjects(ctx, regNo)
	if err != nil {
		return nil, fmt.Errorf("list evaluator subjects: %w", err)
	}
	if subjects == nil {
		subjects = []model.EvaluatorSubject{}
	}
	return subjects, nil
}

// ListRequests returns the requests assigned to an evaluator, newest first.
func (s *EvaluatorService) ListRequests(ctx context.Context, regNo string) ([]model.Request, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	requests, err := s.store.ListRequests(ctx, model.RequestFilter{EvaluatorRegNo: regNo})
	if err != nil {
		return nil, fmt.Errorf("list evaluator requests: %w", err)
	}
	if requests == nil {
		requests = []model.Request{}
	}
	return requests, nil
}
