package model

import "time"

// Evaluator is a reviewer account. The counters are a best-effort cache for
// listing pages; the dashboard aggregates from request rows instead.
type Evaluator struct {
	RegNo                  string     `json:"reg_no"`
	CollegeName            string     `json:"college_name"`
	SppuRegNo              string     `json:"-"`
	FirstName              string     `json:"first_name"`
	LastName               string     `json:"last_name"`
	PendingReviewRequests  int        `json:"pending_review_requests"`
	UnderReviewRequests    int        `json:"under_review_requests"`
	CompletedTodayRequests int        `json:"completed_today_requests"`
	AvgTimeToComplete      float64    `json:"avg_time_to_complete"`
	CountersUpdatedAt      *time.Time `json:"counters_updated_at"`
}

// EvaluatorStats is the set of dashboard counters aggregated on read.
type EvaluatorStats struct {
	PendingReview      int
	UnderReview        int
	CompletedToday     int
	CompletedYesterday int
	AverageHours       float64
	HighPriority       int
	FinalStage         int
}

// EvaluatorLoginRequest is the payload for evaluator login.
type EvaluatorLoginRequest struct {
	RegNo     string `json:"reg_no" binding:"required,max=50"`
	SppuRegNo string `json:"sppu_reg_no" binding:"required,max=50"`
}

// EvaluatorLoginResponse is returned after a successful evaluator login.
type EvaluatorLoginResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
	Token    string `json:"token"`
}

// DashboardMetrics are the headline numbers of the evaluator dashboard.
type DashboardMetrics struct {
	PendingReview     int     `json:"pendingReview"`
	UnderReview       int     `json:"underReview"`
	CompletedToday    int     `json:"completedToday"`
	AverageTime       float64 `json:"averageTime"`
	HighPriorityCount int     `json:"highPriorityCount"`
	FinalStageCount   int     `json:"finalStageCount"`
	CompletedChange   int     `json:"completedChange"`
}

// QueueItem is one row of the evaluator work queue.
type QueueItem struct {
	ID      string        `json:"id"`
	Student string        `json:"student"`
	Subject string        `json:"subject"`
	Status  RequestStatus `json:"status"`
	Urgency Urgency       `json:"urgency"`
	Date    string        `json:"date"`
}

// EvaluatorDashboard is the evaluator landing page payload.
type EvaluatorDashboard struct {
	Metrics         DashboardMetrics `json:"metrics"`
	PendingRequests []QueueItem      `json:"pendingRequests"`
}
