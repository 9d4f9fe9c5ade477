package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden            ErrCode = "FORBIDDEN"
	ErrNotAssignedEvaluator ErrCode = "NOT_ASSIGNED_EVALUATOR"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation    ErrCode = "VALIDATION_ERROR"
	ErrInvalidID     ErrCode = "INVALID_ID"
	ErrMissingParams ErrCode = "MISSING_PARAMS"
	ErrInvalidStatus ErrCode = "INVALID_STATUS"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrStudentNotFound   ErrCode = "STUDENT_NOT_FOUND"
	ErrSubjectNotFound   ErrCode = "SUBJECT_NOT_FOUND"
	ErrEvaluatorNotFound ErrCode = "EVALUATOR_NOT_FOUND"
	ErrRequestNotFound   ErrCode = "REQUEST_NOT_FOUND"

	// ─── Request lifecycle ─────────────────────────────────────────────
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrReconcileFailed   ErrCode = "RECONCILE_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrStoreTimeout       ErrCode = "STORE_TIMEOUT"
	ErrServiceUnavailable ErrCode = "SERVICE_UNAVAILABLE"
	ErrInternal           ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid credentials."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You are not allowed to access this resource."
	case ErrNotAssignedEvaluator:
		return "This request is assigned to another evaluator."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrMissingParams:
		return "Missing required parameters."
	case ErrInvalidStatus:
		return "Unknown request status."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrStudentNotFound:
		return "Student not found."
	case ErrSubjectNotFound:
		return "Subject not found for this student."
	case ErrEvaluatorNotFound:
		return "Evaluator not found."
	case ErrRequestNotFound:
		return "Request not found."

	// ─── Request lifecycle ─────────────────────────────────────────────
	case ErrInvalidTransition:
		return "The request cannot move to that status."
	case ErrReconcileFailed:
		return "Urgency reconciliation failed. No changes were applied."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrStoreTimeout:
		return "The database did not respond in time. Please retry."
	case ErrServiceUnavailable:
		return "A backing service is unavailable."
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
