package handler

import (
	"net/http"

	"github.com/aissms/reeval-backend/internal/middleware"
	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/response"
	"github.com/aissms/reeval-backend/internal/service"
	"github.com/aissms/reeval-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

const (
	listTypeSubjects = "subjects"
	listTypeRequests = "requests"
)

// StudentPortalHandler handles student-facing endpoints.
type StudentPortalHandler struct {
	requestService *service.RequestService
	studentService *service.StudentService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	requestService *service.RequestService,
	studentService *service.StudentService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		requestService: requestService,
		studentService: studentService,
	}
}

// ListRequests godoc
// GET /api/v1/student/requests?reg_no=&college_name=&type=subjects|requests
// Returns the student's subjects or filed requests, newest first.
func (h *StudentPortalHandler) ListRequests(c *gin.Context) {
	regNo := c.Query("reg_no")
	college := c.Query("college_name")
	if regNo == "" || college == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingParams)
		return
	}

	claims := middleware.GetClaims(c)
	if !ownsStudent(claims, regNo, college) {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	switch c.DefaultQuery("type", listTypeRequests) {
	case listTypeSubjects:
		subjects, err := h.requestService.ListSubjects(c.Request.Context(), regNo, college)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, subjects)
	case listTypeRequests:
		requests, err := h.requestService.List(c.Request.Context(), model.RequestFilter{
			StudentRegNo:   regNo,
			StudentCollege: college,
		})
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, requests)
	default:
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"type": "type must be one of subjects, requests",
		})
	}
}

// CreateRequest godoc
// POST /api/v1/student/requests
// Files a re-evaluation request for one of the student's subjects.
func (h *StudentPortalHandler) CreateRequest(c *gin.Context) {
	var req model.CreateRequestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if !ownsStudent(claims, req.RegNo, req.CollegeName) {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	created, err := h.requestService.Create(c.Request.Context(), claims.Identity(), service.NewRequestInput{
		SubjectCode: req.SubjectCode,
		Reason:      req.Reason,
		UrgencyHint: req.Urgency,
	})
	if err != nil {
		failWithSuccessFlag(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"success":   true,
		"requestId": created.ID,
	})
}

// Dashboard godoc
// POST /api/v1/student/dashboard
// Returns student details, the five most recent requests and the subject list.
func (h *StudentPortalHandler) Dashboard(c *gin.Context) {
	var req model.StudentDashboardRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil || claims.RegNo != req.RegNo {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	dashboard, err := h.studentService.Dashboard(c.Request.Context(), req.RegNo, req.SppuRegNo)
	if err != nil {
		fail(c, err)
		return
	}
	if dashboard.StudentDetails.CollegeName != claims.College {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, dashboard)
}

func ownsStudent(claims *service.Claims, regNo, college string) bool {
	return claims != nil && claims.RegNo == regNo && claims.College == college
}
