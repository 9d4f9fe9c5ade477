package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RequestStatus is the lifecycle state of a re-evaluation request.
type RequestStatus string

const (
	StatusPending     RequestStatus = "Pending"
	StatusUnderReview RequestStatus = "Under Review"
	StatusCompleted   RequestStatus = "Completed"
	StatusRejected    RequestStatus = "Rejected"
)

// ErrUnknownStatus is returned when a status string matches none of the known states.
var ErrUnknownStatus = errors.New("unknown request status")

// ParseRequestStatus accepts both the stored form ("Under Review") and the
// form sent by the review dialog ("under_review").
func ParseRequestStatus(raw string) (RequestStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "pending":
		return StatusPending, nil
	case "under_review":
		return StatusUnderReview, nil
	case "completed":
		return StatusCompleted, nil
	case "rejected":
		return StatusRejected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// IsTerminal reports whether no further transition is defined out of s.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// CanTransitionTo enforces the forward-only review lifecycle:
//
//	Pending -> Under Review -> {Completed, Rejected}
//	Pending -> {Completed, Rejected}
//
// A non-terminal request may be saved again with its current status.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusPending || next == StatusUnderReview || next == StatusCompleted || next == StatusRejected
	case StatusUnderReview:
		return next == StatusUnderReview || next == StatusCompleted || next == StatusRejected
	default:
		return false
	}
}

// Urgency is the persisted priority label of a request.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyModerate Urgency = "moderate"
	UrgencyNormal   Urgency = "normal"
)

var urgencyLevels = map[Urgency]int{
	UrgencyCritical: 1,
	UrgencyHigh:     2,
	UrgencyMedium:   3,
	UrgencyModerate: 4,
	UrgencyNormal:   5,
}

// Valid reports whether u is one of the five known labels.
func (u Urgency) Valid() bool {
	_, ok := urgencyLevels[u]
	return ok
}

// Level returns 1 (most urgent) through 5. Unknown labels sort last.
func (u Urgency) Level() int {
	if lvl, ok := urgencyLevels[u]; ok {
		return lvl
	}
	return len(urgencyLevels) + 1
}

// Request is a re-evaluation request row. Subject name and marks are a
// snapshot taken when the request was filed.
type Request struct {
	ID                int64         `json:"id"`
	StudentCollege    string        `json:"student_college"`
	StudentRegNo      string        `json:"student_reg_no"`
	SppuRegNo         string        `json:"sppu_reg_no"`
	SubjectCode       string        `json:"subject_code"`
	SubjectName       string        `json:"subject_name"`
	CurrentMarks      float64       `json:"current_marks"`
	EvaluatorCollege  *string       `json:"evaluator_college"`
	EvaluatorRegNo    *string       `json:"evaluator_reg_no"`
	Status            RequestStatus `json:"status"`
	Urgency           Urgency       `json:"urgency"`
	RequestDate       time.Time     `json:"request_date"`
	CompletionDate    *time.Time    `json:"completion_date"`
	Reason            string        `json:"reason"`
	PDFURL            string        `json:"pdf_url"`
	UpdatedMarks      *float64      `json:"updated_marks"`
	EvaluatorComments *string       `json:"evaluator_comments"`
}

// RequestFilter scopes a request listing. Zero values mean "no filter".
type RequestFilter struct {
	StudentRegNo   string
	StudentCollege string
	EvaluatorRegNo string
	College        string
	Status         RequestStatus
	Limit          int
}

// UrgencyUpdate is a single entry of a bulk urgency update.
type UrgencyUpdate struct {
	ID      int64   `json:"id" binding:"required,min=1"`
	Urgency Urgency `json:"urgency" binding:"required,urgency"`
}

// Priority is the classifier output for one request.
type Priority struct {
	Level   int     `json:"level"`
	Urgency Urgency `json:"urgency"`
}

// TriagedRequest decorates a request with its computed priority and age in days.
type TriagedRequest struct {
	Request
	Priority   Priority `json:"priority"`
	DaysPassed int      `json:"days_passed"`
}

// MarshalJSON keeps the embedded request fields flat next to priority and days_passed.
func (t TriagedRequest) MarshalJSON() ([]byte, error) {
	type flat Request
	return json.Marshal(struct {
		flat
		Priority   Priority `json:"priority"`
		DaysPassed int      `json:"days_passed"`
	}{flat(t.Request), t.Priority, t.DaysPassed})
}

// ─── Payloads ───────────────────────────────────────────────────────

// CreateRequestRequest is the payload a student submits to file a request.
type CreateRequestRequest struct {
	RegNo       string  `json:"reg_no" binding:"required,max=50"`
	CollegeName string  `json:"college_name" binding:"required,max=200"`
	SppuRegNo   string  `json:"sppu_reg_no" binding:"omitempty,max=50"`
	SubjectCode string  `json:"subject_code" binding:"required,max=50"`
	Reason      string  `json:"reason" binding:"required,min=3,max=2000"`
	Urgency     Urgency `json:"urgency" binding:"omitempty,urgency"`
}

// ReviewRequestRequest is the payload an evaluator submits from the review dialog.
type ReviewRequestRequest struct {
	Status       string   `json:"status" binding:"required"`
	Urgency      Urgency  `json:"urgency" binding:"omitempty,urgency"`
	UpdatedMarks *float64 `json:"updated_marks" binding:"omitempty,min=0,max=1000"`
	Comments     *string  `json:"comments" binding:"omitempty,max=4000"`
}

// UpdateUrgencyRequest overrides the urgency of a single request.
type UpdateUrgencyRequest struct {
	Urgency Urgency `json:"urgency" binding:"required,urgency"`
}

// BulkUpdateUrgencyRequest overrides the urgency of many requests at once.
type BulkUpdateUrgencyRequest struct {
	Updates []UrgencyUpdate `json:"updates" binding:"required,min=1,max=1000,dive"`
}
