package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Number of requests shown in the dashboard's recent list.
const recentRequestsLimit = 5

// StudentService handles student verification and the student dashboard.
type StudentService struct {
	store   repository.Store
	timeout time.Duration
	log     zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(store repository.Store, timeout time.Duration, log zerolog.Logger) *StudentService {
	return &StudentService{
		store:   store,
		timeout: timeout,
		log:     log.With().Str("component", "student_service").Logger(),
	}
}

// Verify checks a student's registration numbers.
func (s *StudentService) Verify(ctx context.Context, regNo, sppuRegNo string) (*model.Student, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	st, err := s.store.GetStudentByCredentials(ctx, regNo, sppuRegNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify student: %w", err)
	}
	return st, nil
}

// Dashboard returns the student's details, latest requests and subjects.
func (s *StudentService) Dashboard(ctx context.Context, regNo, sppuRegNo string) (*model.StudentDashboard, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	st, err := s.store.GetStudentByCredentials(ctx, regNo, sppuRegNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	recent, err := s.store.ListRequests(ctx, model.RequestFilter{
		StudentRegNo:   st.RegNo,
		StudentCollege: st.CollegeName,
		Limit:          recentRequestsLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list recent requests: %w", err)
	}
	subjects, err := s.store.ListStudentSubjects(ctx, st.RegNo, st.CollegeName)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	if recent == nil {
		recent = []model.Request{}
	}
	if subjects == nil {
		subjects = []model.StudentSubject{}
	}
	return &model.StudentDashboard{
		StudentDetails: *st,
		RecentRequests: recent,
		Subjects:       subjects,
	}, nil
}
