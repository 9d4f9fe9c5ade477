package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aissms/reeval-backend/internal/response"
	"github.com/aissms/reeval-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// errorStatus maps a service error to its HTTP status and error code.
// Anything unrecognised is an internal error.
func errorStatus(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, response.ErrInvalidCredentials
	case errors.Is(err, service.ErrStudentNotFound):
		return http.StatusNotFound, response.ErrStudentNotFound
	case errors.Is(err, service.ErrSubjectNotFound):
		return http.StatusNotFound, response.ErrSubjectNotFound
	case errors.Is(err, service.ErrEvaluatorNotFound):
		return http.StatusNotFound, response.ErrEvaluatorNotFound
	case errors.Is(err, service.ErrRequestNotFound):
		return http.StatusNotFound, response.ErrRequestNotFound
	case errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest, response.ErrInvalidStatus
	case errors.Is(err, service.ErrInvalidUrgency):
		return http.StatusBadRequest, response.ErrValidation
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, response.ErrInvalidTransition
	case errors.Is(err, service.ErrNotAssignedEvaluator):
		return http.StatusForbidden, response.ErrNotAssignedEvaluator
	case errors.Is(err, service.ErrReconcileFailed):
		return http.StatusInternalServerError, response.ErrReconcileFailed
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, response.ErrStoreTimeout
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// fail writes the envelope for a service error and records it on the context
// so gin's logger shows the cause.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status, code := errorStatus(err)
	response.Fail(c, status, code)
}

// failWithSuccessFlag is fail for endpoints whose callers expect
// {success:false} in the payload.
func failWithSuccessFlag(c *gin.Context, err error) {
	_ = c.Error(err)
	status, code := errorStatus(err)
	response.FailWithData(c, status, code, gin.H{"success": false, "error": response.GetMessage(code)})
}
