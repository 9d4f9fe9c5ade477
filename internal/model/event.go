package model

import "time"

// Event types published on the request event stream.
const (
	EventRequestCreated     = "request.created"
	EventRequestUpdated     = "request.updated"
	EventRequestsReconciled = "requests.reconciled"
)

// RequestEvent is a notification about a change to one or more requests.
type RequestEvent struct {
	Type      string    `json:"event"`
	College   string    `json:"college,omitempty"`
	RequestID int64     `json:"request_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Urgency   Urgency   `json:"urgency,omitempty"`
	Changed   int       `json:"changed,omitempty"`
	At        time.Time `json:"at"`
}

// ReconcileResult reports the outcome of one reconciliation pass.
type ReconcileResult struct {
	Success bool   `json:"success"`
	Total   int    `json:"total"`
	Changed int    `json:"changed"`
	Error   string `json:"error,omitempty"`
}
