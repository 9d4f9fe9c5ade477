package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/priority"
	"github.com/aissms/reeval-backend/internal/repository"
	"github.com/rs/zerolog"
)

// InstituteService serves institute staff: login, monitoring and triage.
type InstituteService struct {
	store   repository.Store
	auth    *AuthService
	timeout time.Duration
	log     zerolog.Logger
}

// NewInstituteService creates a new InstituteService.
func NewInstituteService(store repository.Store, auth *AuthService, timeout time.Duration, log zerolog.Logger) *InstituteService {
	return &InstituteService{
		store:   store,
		auth:    auth,
		timeout: timeout,
		log:     log.With().Str("component", "institute_service").Logger(),
	}
}

// Login authenticates a staff account by email and password.
func (s *InstituteService) Login(ctx context.Context, email, password string) (*model.InstituteAdmin, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	admin, err := s.store.GetInstituteAdminByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get institute admin: %w", err)
	}
	if err := s.auth.CheckPassword(admin.PasswordHash, password); err != nil {
		return nil, err
	}
	return admin, nil
}

// CreateAdmin registers a new staff account with a hashed password.
func (s *InstituteService) CreateAdmin(ctx context.Context, email, name, college, password string) (*model.InstituteAdmin, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	admin := &model.InstituteAdmin{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		CollegeName:  college,
		PasswordHash: hash,
	}
	if err := s.store.CreateInstituteAdmin(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateAdmin
		}
		return nil, fmt.Errorf("create institute admin: %w", err)
	}
	s.log.Info().Str("email", admin.Email).Str("college", college).Msg("Institute admin created")
	return admin, nil
}

// ListRequests returns the college's requests, optionally filtered by status.
func (s *InstituteService) ListRequests(ctx context.Context, college string, status model.RequestStatus, limit int) ([]model.Request, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	requests, err := s.store.ListRequests(ctx, model.RequestFilter{College: college, Status: status, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if requests == nil {
		requests = []model.Request{}
	}
	return requests, nil
}

// Tickets returns the triage view: every request with its computed priority,
// restricted to one day bucket when day > 0.
func (s *InstituteService) Tickets(ctx context.Context, college string, day int, now time.Time) ([]model.TriagedRequest, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	requests, err := s.store.ListRequests(ctx, model.RequestFilter{College: college})
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	students, err := s.store.ListStudents(ctx, college)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return priority.Triage(requests, students, now, day), nil
}

// ListStudents returns the college's students.
func (s *InstituteService) ListStudents(ctx context.Context, college string) ([]model.Student, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	students, err := s.store.ListStudents(ctx, college)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

// ListEvaluators returns the college's evaluators with their cached counters.
func (s *InstituteService) ListEvaluators(ctx context.Context, college string) ([]model.Evaluator, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	evaluators, err := s.store.ListEvaluators(ctx, college)
	if err != nil {
		return nil, fmt.Errorf("list evaluators: %w", err)
	}
	if evaluators == nil {
		evaluators = []model.Evaluator{}
	}
	return evaluators, nil
}
