package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aissms/reeval-backend/internal/model"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `id, student_college, student_reg_no, sppu_reg_no, subject_code, subject_name, current_marks,
	evaluator_college, evaluator_reg_no, status, urgency, request_date, completion_date, reason, pdf_url,
	updated_marks, evaluator_comments`

// urgencyOrder sorts the most urgent label first.
const urgencyOrder = `CASE urgency
	WHEN 'critical' THEN 1 WHEN 'high' THEN 2 WHEN 'medium' THEN 3
	WHEN 'moderate' THEN 4 WHEN 'normal' THEN 5 ELSE 6 END`

// RequestRepository handles re-evaluation request data access.
type RequestRepository struct {
	db Querier
}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(db Querier) *RequestRepository {
	return &RequestRepository{db: db}
}

func scanRequest(row interface{ Scan(...any) error }, q *model.Request) error {
	return row.Scan(&q.ID, &q.StudentCollege, &q.StudentRegNo, &q.SppuRegNo, &q.SubjectCode, &q.SubjectName, &q.CurrentMarks,
		&q.EvaluatorCollege, &q.EvaluatorRegNo, &q.Status, &q.Urgency, &q.RequestDate, &q.CompletionDate, &q.Reason, &q.PDFURL,
		&q.UpdatedMarks, &q.EvaluatorComments)
}

func (r *RequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]model.Request, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		var q model.Request
		if err := scanRequest(rows, &q); err != nil {
			return nil, err
		}
		requests = append(requests, q)
	}
	return requests, rows.Err()
}

// InsertRequest inserts a new request and fills in its id and request_date.
func (r *RequestRepository) InsertRequest(ctx context.Context, q *model.Request) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO reevaluation_requests
		 (student_college, student_reg_no, sppu_reg_no, subject_code, subject_name, current_marks, status, urgency, reason, pdf_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, request_date`,
		q.StudentCollege, q.StudentRegNo, q.SppuRegNo, q.SubjectCode, q.SubjectName, q.CurrentMarks,
		q.Status, q.Urgency, q.Reason, q.PDFURL,
	).Scan(&q.ID, &q.RequestDate)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// GetRequest retrieves a request by id.
func (r *RequestRepository) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	q := &model.Request{}
	if err := scanRequest(r.db.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM reevaluation_requests WHERE id = $1`, id,
	), q); err != nil {
		return nil, notFound(err)
	}
	return q, nil
}

// GetRequestForUpdate retrieves a request and locks its row until the
// surrounding transaction ends.
func (r *RequestRepository) GetRequestForUpdate(ctx context.Context, id int64) (*model.Request, error) {
	q := &model.Request{}
	if err := scanRequest(r.db.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM reevaluation_requests WHERE id = $1 FOR UPDATE`, id,
	), q); err != nil {
		return nil, notFound(err)
	}
	return q, nil
}

// ListRequests returns requests matching f, newest first.
func (r *RequestRepository) ListRequests(ctx context.Context, f model.RequestFilter) ([]model.Request, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if f.StudentRegNo != "" {
		add("student_reg_no = ?", f.StudentRegNo)
	}
	if f.StudentCollege != "" {
		add("student_college = ?", f.StudentCollege)
	}
	if f.EvaluatorRegNo != "" {
		add("evaluator_reg_no = ?", f.EvaluatorRegNo)
	}
	if f.College != "" {
		add("student_college = ?", f.College)
	}
	if f.Status != "" {
		add("status = ?", f.Status)
	}

	query := `SELECT ` + requestColumns + ` FROM reevaluation_requests`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY request_date DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	return r.queryRequests(ctx, query, args...)
}

// UpdateRequestReview persists the evaluator-controlled fields of a request.
func (r *RequestRepository) UpdateRequestReview(ctx context.Context, q *model.Request) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reevaluation_requests
		 SET status = $1, urgency = $2, evaluator_college = $3, evaluator_reg_no = $4,
		     updated_marks = $5, evaluator_comments = $6, completion_date = $7
		 WHERE id = $8`,
		q.Status, q.Urgency, q.EvaluatorCollege, q.EvaluatorRegNo,
		q.UpdatedMarks, q.EvaluatorComments, q.CompletionDate, q.ID,
	)
	if err != nil {
		return fmt.Errorf("update request %d: %w", q.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRequestUrgency overwrites the urgency label of one request.
func (r *RequestRepository) UpdateRequestUrgency(ctx context.Context, id int64, urgency model.Urgency) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reevaluation_requests SET urgency = $1 WHERE id = $2`,
		urgency, id,
	)
	if err != nil {
		return fmt.Errorf("update urgency of request %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRequestUrgencies overwrites many urgency labels in one round trip.
// A missing id fails the whole call with ErrNotFound; run it inside InTx so
// the rows already sent are rolled back.
func (r *RequestRepository) UpdateRequestUrgencies(ctx context.Context, updates []model.UrgencyUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE reevaluation_requests SET urgency = $1 WHERE id = $2`, u.Urgency, u.ID)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for _, u := range updates {
		tag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("update urgency of request %d: %w", u.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("request %d: %w", u.ID, ErrNotFound)
		}
	}
	return br.Close()
}
