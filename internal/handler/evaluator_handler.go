package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aissms/reeval-backend/internal/middleware"
	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/response"
	"github.com/aissms/reeval-backend/internal/service"
	"github.com/aissms/reeval-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// EvaluatorHandler handles the evaluator workspace.
type EvaluatorHandler struct {
	evaluatorService *service.EvaluatorService
	requestService   *service.RequestService
	now              func() time.Time
}

// NewEvaluatorHandler creates a new EvaluatorHandler.
func NewEvaluatorHandler(evaluatorService *service.EvaluatorService, requestService *service.RequestService) *EvaluatorHandler {
	return &EvaluatorHandler{
		evaluatorService: evaluatorService,
		requestService:   requestService,
		now:              time.Now,
	}
}

// Dashboard godoc
// GET /api/v1/evaluator/dashboard?reg_no=
// Returns dashboard metrics and the priority-ordered work queue.
func (h *EvaluatorHandler) Dashboard(c *gin.Context) {
	regNo, ok := h.requireSelf(c)
	if !ok {
		return
	}

	dashboard, err := h.evaluatorService.Dashboard(c.Request.Context(), regNo, h.now())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, dashboard)
}

// ListSubjects godoc
// GET /api/v1/evaluator/subjects?reg_no=
func (h *EvaluatorHandler) ListSubjects(c *gin.Context) {
	regNo, ok := h.requireSelf(c)
	if !ok {
		return
	}

	subjects, err := h.evaluatorService.ListSubjects(c.Request.Context(), regNo)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, subjects)
}

// ListRequests godoc
// GET /api/v1/evaluator/requests?reg_no=
func (h *EvaluatorHandler) ListRequests(c *gin.Context) {
	regNo, ok := h.requireSelf(c)
	if !ok {
		return
	}

	requests, err := h.evaluatorService.ListRequests(c.Request.Context(), regNo)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, requests)
}

// ReviewRequest godoc
// PATCH /api/v1/evaluator/requests/:id
// Applies a status change with optional urgency, marks and comments.
func (h *EvaluatorHandler) ReviewRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewRequestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	updated, err := h.requestService.Review(c.Request.Context(), claims.Identity(), id, service.ReviewInput{
		Status:       req.Status,
		Urgency:      req.Urgency,
		UpdatedMarks: req.UpdatedMarks,
		Comments:     req.Comments,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}

// requireSelf reads ?reg_no and checks it against the token. It writes the
// error response itself when the check fails.
func (h *EvaluatorHandler) requireSelf(c *gin.Context) (string, bool) {
	regNo := c.Query("reg_no")
	if regNo == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingParams)
		return "", false
	}
	claims := middleware.GetClaims(c)
	if claims == nil || claims.RegNo != regNo {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return "", false
	}
	return regNo, true
}
