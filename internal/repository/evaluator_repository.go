package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
)

// Requests older than this while still under review count as final stage.
const finalStageAge = 48 * time.Hour

// queueScope matches requests assigned to evaluator $1, plus unassigned
// pending requests of its college $2.
const queueScope = `((evaluator_reg_no = $1 AND status IN ('Pending', 'Under Review'))
	OR (evaluator_reg_no IS NULL AND status = 'Pending' AND student_college = $2))`

const evaluatorColumns = `reg_no, college_name, sppu_reg_no, first_name, last_name,
	pending_review_requests, under_review_requests, completed_today_requests, avg_time_to_complete, counters_updated_at`

// EvaluatorRepository handles evaluator data access.
type EvaluatorRepository struct {
	db Querier
}

// NewEvaluatorRepository creates a new EvaluatorRepository.
func NewEvaluatorRepository(db Querier) *EvaluatorRepository {
	return &EvaluatorRepository{db: db}
}

func scanEvaluator(row interface{ Scan(...any) error }, e *model.Evaluator) error {
	return row.Scan(&e.RegNo, &e.CollegeName, &e.SppuRegNo, &e.FirstName, &e.LastName,
		&e.PendingReviewRequests, &e.UnderReviewRequests, &e.CompletedTodayRequests, &e.AvgTimeToComplete, &e.CountersUpdatedAt)
}

// GetEvaluator retrieves an evaluator by reg_no.
func (r *EvaluatorRepository) GetEvaluator(ctx context.Context, regNo string) (*model.Evaluator, error) {
	e := &model.Evaluator{}
	if err := scanEvaluator(r.db.QueryRow(ctx,
		`SELECT `+evaluatorColumns+` FROM evaluator_details WHERE reg_no = $1`, regNo,
	), e); err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// ListEvaluators returns the evaluators of a college, or all when college is empty.
func (r *EvaluatorRepository) ListEvaluators(ctx context.Context, college string) ([]model.Evaluator, error) {
	query := `SELECT ` + evaluatorColumns + ` FROM evaluator_details`
	var args []any
	if college != "" {
		query += ` WHERE college_name = $1`
		args = append(args, college)
	}
	query += ` ORDER BY reg_no`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evaluators []model.Evaluator
	for rows.Next() {
		var e model.Evaluator
		if err := scanEvaluator(rows, &e); err != nil {
			return nil, err
		}
		evaluators = append(evaluators, e)
	}
	return evaluators, rows.Err()
}

// ListEvaluatorSubjects returns the subjects an evaluator reviews.
func (r *EvaluatorRepository) ListEvaluatorSubjects(ctx context.Context, regNo string) ([]model.EvaluatorSubject, error) {
	rows, err := r.db.Query(ctx,
		`SELECT evaluator_reg_no, evaluator_college, subject_code, subject_name
		 FROM evaluator_subjects WHERE evaluator_reg_no = $1 ORDER BY subject_code`,
		regNo,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.EvaluatorSubject
	for rows.Next() {
		var s model.EvaluatorSubject
		if err := rows.Scan(&s.EvaluatorRegNo, &s.EvaluatorCollege, &s.SubjectCode, &s.SubjectName); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// dayBounds returns the start of yesterday, today and tomorrow in now's location.
func dayBounds(now time.Time) (yesterday, today, tomorrow time.Time) {
	y, m, d := now.Date()
	today = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -1), today, today.AddDate(0, 0, 1)
}

// GetEvaluatorStats aggregates the dashboard counters from request rows.
func (r *EvaluatorRepository) GetEvaluatorStats(ctx context.Context, ev *model.Evaluator, now time.Time) (*model.EvaluatorStats, error) {
	yesterday, today, tomorrow := dayBounds(now)
	st := &model.EvaluatorStats{}
	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(*) FILTER (WHERE status = 'Pending'),
			COUNT(*) FILTER (WHERE status = 'Under Review' AND evaluator_reg_no = $1),
			COUNT(*) FILTER (WHERE status = 'Completed' AND evaluator_reg_no = $1
				AND completion_date >= $4 AND completion_date < $5),
			COUNT(*) FILTER (WHERE status = 'Completed' AND evaluator_reg_no = $1
				AND completion_date >= $3 AND completion_date < $4),
			COALESCE(AVG(EXTRACT(EPOCH FROM (completion_date - request_date)) / 3600.0)
				FILTER (WHERE status = 'Completed' AND evaluator_reg_no = $1 AND completion_date IS NOT NULL), 0)::float8,
			COUNT(*) FILTER (WHERE status = 'Pending' AND evaluator_reg_no = $1 AND urgency IN ('critical', 'high')),
			COUNT(*) FILTER (WHERE status = 'Under Review' AND evaluator_reg_no = $1 AND request_date < $6)
		 FROM reevaluation_requests
		 WHERE evaluator_reg_no = $1 OR (evaluator_reg_no IS NULL AND student_college = $2)`,
		ev.RegNo, ev.CollegeName, yesterday, today, tomorrow, now.Add(-finalStageAge),
	).Scan(&st.PendingReview, &st.UnderReview, &st.CompletedToday, &st.CompletedYesterday,
		&st.AverageHours, &st.HighPriority, &st.FinalStage)
	if err != nil {
		return nil, fmt.Errorf("aggregate evaluator stats: %w", err)
	}
	return st, nil
}

// ListEvaluatorQueue returns the evaluator's work queue, most urgent first.
func (r *EvaluatorRepository) ListEvaluatorQueue(ctx context.Context, ev *model.Evaluator, limit int) ([]model.Request, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+requestColumns+` FROM reevaluation_requests
		 WHERE `+queueScope+`
		 ORDER BY `+urgencyOrder+`, request_date DESC, id DESC
		 LIMIT $3`,
		ev.RegNo, ev.CollegeName, limit,
	)
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

// RefreshEvaluatorCounters recomputes the cached counters of every evaluator
// in a college (or everywhere when college is empty).
func (r *EvaluatorRepository) RefreshEvaluatorCounters(ctx context.Context, college string, now time.Time) error {
	_, today, tomorrow := dayBounds(now)
	_, err := r.db.Exec(ctx,
		`UPDATE evaluator_details e SET
			pending_review_requests = agg.pending,
			under_review_requests = agg.under_review,
			completed_today_requests = agg.completed_today,
			avg_time_to_complete = agg.avg_hours,
			counters_updated_at = $4
		 FROM (
			SELECT d.reg_no,
				COUNT(q.id) FILTER (WHERE q.status = 'Pending') AS pending,
				COUNT(q.id) FILTER (WHERE q.status = 'Under Review') AS under_review,
				COUNT(q.id) FILTER (WHERE q.status = 'Completed'
					AND q.completion_date >= $2 AND q.completion_date < $3) AS completed_today,
				ROUND(COALESCE(AVG(EXTRACT(EPOCH FROM (q.completion_date - q.request_date)) / 3600.0)
					FILTER (WHERE q.status = 'Completed' AND q.completion_date IS NOT NULL), 0)::numeric, 1) AS avg_hours
			FROM evaluator_details d
			LEFT JOIN reevaluation_requests q ON q.evaluator_reg_no = d.reg_no
			WHERE $1 = '' OR d.college_name = $1
			GROUP BY d.reg_no
		 ) agg
		 WHERE e.reg_no = agg.reg_no`,
		college, today, tomorrow, now,
	)
	if err != nil {
		return fmt.Errorf("refresh evaluator counters: %w", err)
	}
	return nil
}
