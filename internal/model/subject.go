package model

// StudentSubject is a subject a student was examined in, with the recorded mark.
type StudentSubject struct {
	StudentRegNo   string  `json:"student_reg_no"`
	StudentCollege string  `json:"student_college"`
	SubjectCode    string  `json:"subject_code"`
	SubjectName    string  `json:"subject_name"`
	CurrentMarks   float64 `json:"current_marks"`
	AnswerSheetURL string  `json:"answer_sheet_url"`
}

// EvaluatorSubject is a subject an evaluator is allowed to review.
type EvaluatorSubject struct {
	EvaluatorRegNo   string `json:"evaluator_reg_no"`
	EvaluatorCollege string `json:"evaluator_college"`
	SubjectCode      string `json:"subject_code"`
	SubjectName      string `json:"subject_name"`
}
