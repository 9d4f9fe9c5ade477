package repository

import (
	"context"
	"fmt"

	"github.com/aissms/reeval-backend/internal/model"
)

const studentColumns = `reg_no, college_name, sppu_reg_no, first_name, last_name, year_of_study, semester,
	pending_requests, total_requests, recent_request_id`

// StudentRepository handles student data access.
type StudentRepository struct {
	db Querier
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db Querier) *StudentRepository {
	return &StudentRepository{db: db}
}

func scanStudent(row interface{ Scan(...any) error }, s *model.Student) error {
	return row.Scan(&s.RegNo, &s.CollegeName, &s.SppuRegNo, &s.FirstName, &s.LastName, &s.YearOfStudy, &s.Semester,
		&s.PendingRequests, &s.TotalRequests, &s.RecentRequestID)
}

// GetStudent retrieves a student by reg_no within a college.
func (r *StudentRepository) GetStudent(ctx context.Context, regNo, college string) (*model.Student, error) {
	s := &model.Student{}
	err := scanStudent(r.db.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM student_details WHERE reg_no = $1 AND college_name = $2`,
		regNo, college,
	), s)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// GetStudentByCredentials retrieves the student matching both registration numbers.
func (r *StudentRepository) GetStudentByCredentials(ctx context.Context, regNo, sppuRegNo string) (*model.Student, error) {
	s := &model.Student{}
	err := scanStudent(r.db.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM student_details WHERE reg_no = $1 AND sppu_reg_no = $2 LIMIT 1`,
		regNo, sppuRegNo,
	), s)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// ListStudents returns the students of a college, or all students when college is empty.
func (r *StudentRepository) ListStudents(ctx context.Context, college string) ([]model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM student_details`
	var args []any
	if college != "" {
		query += ` WHERE college_name = $1`
		args = append(args, college)
	}
	query += ` ORDER BY college_name, reg_no`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// RecordStudentRequest bumps the request counters and points recent_request_id at requestID.
func (r *StudentRepository) RecordStudentRequest(ctx context.Context, regNo, college string, requestID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE student_details
		 SET recent_request_id = $1, pending_requests = pending_requests + 1, total_requests = total_requests + 1
		 WHERE reg_no = $2 AND college_name = $3`,
		requestID, regNo, college,
	)
	if err != nil {
		return fmt.Errorf("update student counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
