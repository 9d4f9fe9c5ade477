package model

// Student is a student record. Identity is (reg_no, college_name).
type Student struct {
	RegNo           string `json:"reg_no"`
	CollegeName     string `json:"college_name"`
	SppuRegNo       string `json:"-"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	YearOfStudy     int    `json:"year_of_study"`
	Semester        int    `json:"semester"`
	PendingRequests int    `json:"pending_requests"`
	TotalRequests   int    `json:"total_requests"`
	RecentRequestID *int64 `json:"recent_request_id"`
}

// StudentVerifyRequest is the payload for student credential verification.
type StudentVerifyRequest struct {
	RegNo     string `json:"reg_no" binding:"required,max=50"`
	SppuRegNo string `json:"sppu_reg_no" binding:"required,max=50"`
}

// StudentVerifyResponse is returned after a successful verification.
type StudentVerifyResponse struct {
	Success bool    `json:"success"`
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// StudentDashboardRequest is the payload of the student dashboard call.
type StudentDashboardRequest struct {
	RegNo     string `json:"reg_no" binding:"required,max=50"`
	SppuRegNo string `json:"sppu_reg_no" binding:"required,max=50"`
}

// StudentDashboard is the aggregated view shown on the student home page.
type StudentDashboard struct {
	StudentDetails Student          `json:"studentDetails"`
	RecentRequests []Request        `json:"recentRequests"`
	Subjects       []StudentSubject `json:"subjects"`
}
