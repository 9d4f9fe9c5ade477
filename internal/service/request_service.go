package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/priority"
	"github.com/aissms/reeval-backend/internal/repository"
	"github.com/rs/zerolog"
)

// NewRequestInput is what a student supplies when filing a request.
type NewRequestInput struct {
	SubjectCode string
	Reason      string
	UrgencyHint model.Urgency
}

// ReviewInput is what an evaluator supplies when reviewing a request.
type ReviewInput struct {
	Status       string
	Urgency      model.Urgency
	UpdatedMarks *float64
	Comments     *string
}

// RequestService owns the re-evaluation request lifecycle.
type RequestService struct {
	store   repository.TxStore
	events  EventPublisher
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(store repository.TxStore, events EventPublisher, timeout time.Duration, log zerolog.Logger) *RequestService {
	return &RequestService{
		store:   store,
		events:  events,
		timeout: timeout,
		now:     time.Now,
		log:     log.With().Str("component", "request_service").Logger(),
	}
}

// Create files a new request for the student. Without an urgency hint the
// request is classified on the spot. The request row and the student counter
// update are committed together or not at all.
func (s *RequestService) Create(ctx context.Context, id Identity, in NewRequestInput) (*model.Request, error) {
	if in.UrgencyHint != "" && !in.UrgencyHint.Valid() {
		return nil, ErrInvalidUrgency
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var created model.Request
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		subject, err := tx.GetStudentSubject(ctx, id.RegNo, id.College, in.SubjectCode)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSubjectNotFound
			}
			return fmt.Errorf("get subject: %w", err)
		}

		req := &model.Request{
			StudentCollege: id.College,
			StudentRegNo:   id.RegNo,
			SubjectCode:    subject.SubjectCode,
			SubjectName:    subject.SubjectName,
			CurrentMarks:   subject.CurrentMarks,
			Status:         model.StatusPending,
			Urgency:        in.UrgencyHint,
			Reason:         in.Reason,
			PDFURL:         subject.AnswerSheetURL,
		}

		student, err := tx.GetStudent(ctx, id.RegNo, id.College)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("get student: %w", err)
		}
		req.SppuRegNo = student.SppuRegNo
		if req.Urgency == "" {
			// Classify against the counters as they will be after this request.
			after := *student
			after.PendingRequests++
			after.TotalRequests++
			req.Urgency = priority.Classify(*req, &after).Urgency
		}

		if err := tx.InsertRequest(ctx, req); err != nil {
			return err
		}

		if err := tx.RecordStudentRequest(ctx, id.RegNo, id.College, req.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrStudentNotFound
			}
			return err
		}

		created = *req
		return nil
	})
	if err != nil {
		if !isDomainErr(err) {
			s.log.Error().Err(err).Str("reg_no", id.RegNo).Str("subject_code", in.SubjectCode).Msg("Failed to create request")
		}
		return nil, err
	}

	s.log.Info().
		Int64("request_id", created.ID).
		Str("reg_no", created.StudentRegNo).
		Str("urgency", string(created.Urgency)).
		Msg("Request created")

	s.publish(ctx, model.RequestEvent{
		Type:      model.EventRequestCreated,
		College:   created.StudentCollege,
		RequestID: created.ID,
		Status:    string(created.Status),
		Urgency:   created.Urgency,
	})
	return &created, nil
}

// List returns requests matching f, newest first.
func (s *RequestService) List(ctx context.Context, f model.RequestFilter) ([]model.Request, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	requests, err := s.store.ListRequests(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if requests == nil {
		requests = []model.Request{}
	}
	return requests, nil
}

// ListSubjects returns the subjects a student may file requests against.
func (s *RequestService) ListSubjects(ctx context.Context, regNo, college string) ([]model.StudentSubject, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	subjects, err := s.store.ListStudentSubjects(ctx, regNo, college)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	if subjects == nil {
		subjects = []model.StudentSubject{}
	}
	return subjects, nil
}

// Review applies an evaluator's decision to a request. An unassigned request
// is claimed by the reviewing evaluator.
func (s *RequestService) Review(ctx context.Context, ev Identity, requestID int64, in ReviewInput) (*model.Request, error) {
	next, err := model.ParseRequestStatus(in.Status)
	if err != nil {
		return nil, ErrInvalidStatus
	}
	if in.Urgency != "" && !in.Urgency.Valid() {
		return nil, ErrInvalidUrgency
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var updated model.Request
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("get request: %w", err)
		}

		// Unassigned requests are only visible to evaluators of the same college.
		if req.EvaluatorRegNo == nil && req.StudentCollege != ev.College {
			return ErrRequestNotFound
		}
		if req.EvaluatorRegNo != nil && *req.EvaluatorRegNo != ev.RegNo {
			return ErrNotAssignedEvaluator
		}
		if !req.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, next)
		}

		if req.EvaluatorRegNo == nil {
			regNo, college := ev.RegNo, ev.College
			req.EvaluatorRegNo = &regNo
			req.EvaluatorCollege = &college
		}
		req.Status = next
		if in.Urgency != "" {
			req.Urgency = in.Urgency
		}
		if in.UpdatedMarks != nil {
			marks := *in.UpdatedMarks
			req.UpdatedMarks = &marks
		}
		if in.Comments != nil {
			comments := *in.Comments
			req.EvaluatorComments = &comments
		}
		if next.IsTerminal() {
			done := s.now()
			req.CompletionDate = &done
		}

		if err := tx.UpdateRequestReview(ctx, req); err != nil {
			return err
		}
		updated = *req
		return nil
	})
	if err != nil {
		if !isDomainErr(err) {
			s.log.Error().Err(err).Int64("request_id", requestID).Msg("Failed to review request")
		}
		return nil, err
	}

	s.log.Info().
		Int64("request_id", updated.ID).
		Str("evaluator", ev.RegNo).
		Str("status", string(updated.Status)).
		Msg("Request reviewed")

	s.publish(ctx, model.RequestEvent{
		Type:      model.EventRequestUpdated,
		College:   updated.StudentCollege,
		RequestID: updated.ID,
		Status:    string(updated.Status),
		Urgency:   updated.Urgency,
	})
	return &updated, nil
}

// UpdateUrgency overrides the urgency of one request. A non-empty college
// restricts the update to that college's requests.
func (s *RequestService) UpdateUrgency(ctx context.Context, college string, requestID int64, urgency model.Urgency) error {
	return s.BulkUpdateUrgencies(ctx, college, []model.UrgencyUpdate{{ID: requestID, Urgency: urgency}})
}

// BulkUpdateUrgencies overrides many urgencies in one transaction; any
// failure leaves every request untouched. Requests outside college are
// reported as not found.
func (s *RequestService) BulkUpdateUrgencies(ctx context.Context, college string, updates []model.UrgencyUpdate) error {
	for _, u := range updates {
		if !u.Urgency.Valid() {
			return fmt.Errorf("%w: request %d: %q", ErrInvalidUrgency, u.ID, u.Urgency)
		}
	}
	if len(updates) == 0 {
		return nil
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		for _, u := range updates {
			if college != "" {
				req, err := tx.GetRequestForUpdate(ctx, u.ID)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return err
				}
				if err != nil || req.StudentCollege != college {
					return fmt.Errorf("%w: %d", ErrRequestNotFound, u.ID)
				}
			}
			if err := tx.UpdateRequestUrgency(ctx, u.ID, u.Urgency); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: %d", ErrRequestNotFound, u.ID)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !isDomainErr(err) {
			s.log.Error().Err(err).Int("count", len(updates)).Msg("Urgency update rolled back")
		}
		return err
	}

	if len(updates) == 1 {
		s.publish(ctx, model.RequestEvent{
			Type:      model.EventRequestUpdated,
			College:   college,
			RequestID: updates[0].ID,
			Urgency:   updates[0].Urgency,
		})
		return nil
	}
	s.log.Info().Int("count", len(updates)).Str("college", college).Msg("Bulk urgency update committed")
	s.publish(ctx, model.RequestEvent{Type: model.EventRequestsReconciled, College: college, Changed: len(updates)})
	return nil
}

func (s *RequestService) publish(ctx context.Context, ev model.RequestEvent) {
	ev.At = s.now()
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn().Err(err).Str("event", ev.Type).Msg("Failed to publish request event")
	}
}

// isDomainErr reports whether err is an expected business outcome rather
// than a persistence failure.
func isDomainErr(err error) bool {
	for _, target := range []error{
		ErrStudentNotFound, ErrSubjectNotFound, ErrEvaluatorNotFound, ErrRequestNotFound,
		ErrInvalidTransition, ErrInvalidStatus, ErrInvalidUrgency, ErrNotAssignedEvaluator,
		ErrInvalidCredentials,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
