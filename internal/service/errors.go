package service

import (
	"context"
	"errors"
	"time"
)

// Domain errors returned by the services. Handlers map them to HTTP codes.
var (
	ErrStudentNotFound      = errors.New("student not found")
	ErrSubjectNotFound      = errors.New("subject not found for student")
	ErrEvaluatorNotFound    = errors.New("evaluator not found")
	ErrRequestNotFound      = errors.New("request not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidStatus        = errors.New("invalid request status")
	ErrInvalidUrgency       = errors.New("invalid urgency")
	ErrNotAssignedEvaluator = errors.New("request is assigned to another evaluator")
	ErrReconcileFailed      = errors.New("urgency reconciliation failed")
	ErrDuplicateAdmin       = errors.New("institute admin with this email already exists")
)

// bounded derives the per-operation store context.
func bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
