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

const maxListLimit = 500

// InstituteHandler handles institute staff monitoring and triage.
type InstituteHandler struct {
	instituteService *service.InstituteService
	requestService   *service.RequestService
	reconcileService *service.ReconcileService
	now              func() time.Time
}

// NewInstituteHandler creates a new InstituteHandler.
func NewInstituteHandler(
	instituteService *service.InstituteService,
	requestService *service.RequestService,
	reconcileService *service.ReconcileService,
) *InstituteHandler {
	return &InstituteHandler{
		instituteService: instituteService,
		requestService:   requestService,
		reconcileService: reconcileService,
		now:              time.Now,
	}
}

// ListRequests godoc
// GET /api/v1/institute/requests?status=&limit=
// Returns the college's requests, newest first.
func (h *InstituteHandler) ListRequests(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var status model.RequestStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := model.ParseRequestStatus(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidStatus)
			return
		}
		status = parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				"limit": "limit must be between 1 and " + strconv.Itoa(maxListLimit),
			})
			return
		}
		limit = n
	}

	requests, err := h.instituteService.ListRequests(c.Request.Context(), claims.College, status, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, requests)
}

// Tickets godoc
// GET /api/v1/institute/tickets?day=
// Returns requests with their computed priority, most urgent first.
// day=N keeps only requests filed N-1 whole days ago; 0 or absent keeps all.
func (h *InstituteHandler) Tickets(c *gin.Context) {
	claims := middleware.GetClaims(c)

	day := 0
	if raw := c.Query("day"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				"day": "day must be a non-negative integer",
			})
			return
		}
		day = n
	}

	tickets, err := h.instituteService.Tickets(c.Request.Context(), claims.College, day, h.now())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, tickets)
}

// UpdateUrgency godoc
// PUT /api/v1/institute/requests/:id/urgency
func (h *InstituteHandler) UpdateUrgency(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateUrgencyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.requestService.UpdateUrgency(c.Request.Context(), claims.College, id, req.Urgency); err != nil {
		failWithSuccessFlag(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// BulkUpdateUrgency godoc
// PUT /api/v1/institute/requests/urgency
// Applies every update or none.
func (h *InstituteHandler) BulkUpdateUrgency(c *gin.Context) {
	var req model.BulkUpdateUrgencyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.requestService.BulkUpdateUrgencies(c.Request.Context(), claims.College, req.Updates); err != nil {
		failWithSuccessFlag(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// Reconcile godoc
// POST /api/v1/institute/requests/reconcile
// Recomputes and stores the urgency of every request in the college.
func (h *InstituteHandler) Reconcile(c *gin.Context) {
	claims := middleware.GetClaims(c)

	result, err := h.reconcileService.ReconcileScope(c.Request.Context(), claims.College)
	if err != nil {
		_ = c.Error(err)
		status, code := errorStatus(err)
		if result == nil {
			result = &model.ReconcileResult{}
		}
		result.Success = false
		result.Error = response.GetMessage(code)
		response.FailWithData(c, status, code, result)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListStudents godoc
// GET /api/v1/institute/students
func (h *InstituteHandler) ListStudents(c *gin.Context) {
	claims := middleware.GetClaims(c)

	students, err := h.instituteService.ListStudents(c.Request.Context(), claims.College)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, students)
}

// ListEvaluators godoc
// GET /api/v1/institute/evaluators
func (h *InstituteHandler) ListEvaluators(c *gin.Context) {
	claims := middleware.GetClaims(c)

	evaluators, err := h.instituteService.ListEvaluators(c.Request.Context(), claims.College)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, evaluators)
}
