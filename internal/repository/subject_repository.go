package repository

import (
	"context"

	"github.com/aissms/reeval-backend/internal/model"
)

// SubjectRepository handles read access to student subject records.
type SubjectRepository struct {
	db Querier
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(db Querier) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// GetStudentSubject retrieves one subject record of a student.
func (r *SubjectRepository) GetStudentSubject(ctx context.Context, regNo, college, subjectCode string) (*model.StudentSubject, error) {
	s := &model.StudentSubject{}
	err := r.db.QueryRow(ctx,
		`SELECT student_reg_no, student_college, subject_code, subject_name, current_marks, answer_sheet_url
		 FROM student_subjects
		 WHERE student_reg_no = $1 AND student_college = $2 AND subject_code = $3`,
		regNo, college, subjectCode,
	).Scan(&s.StudentRegNo, &s.StudentCollege, &s.SubjectCode, &s.SubjectName, &s.CurrentMarks, &s.AnswerSheetURL)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// ListStudentSubjects returns every subject record of a student ordered by code.
func (r *SubjectRepository) ListStudentSubjects(ctx context.Context, regNo, college string) ([]model.StudentSubject, error) {
	rows, err := r.db.Query(ctx,
		`SELECT student_reg_no, student_college, subject_code, subject_name, current_marks, answer_sheet_url
		 FROM student_subjects
		 WHERE student_reg_no = $1 AND student_college = $2
		 ORDER BY subject_code`,
		regNo, college,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.StudentSubject
	for rows.Next() {
		var s model.StudentSubject
		if err := rows.Scan(&s.StudentRegNo, &s.StudentCollege, &s.SubjectCode, &s.SubjectName, &s.CurrentMarks, &s.AnswerSheetURL); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}
