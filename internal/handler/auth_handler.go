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

const evaluatorRedirect = "/evaluator/dashboard"

// AuthHandler handles authentication endpoints for all three roles.
type AuthHandler struct {
	authService      *service.AuthService
	studentService   *service.StudentService
	evaluatorService *service.EvaluatorService
	instituteService *service.InstituteService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	studentService *service.StudentService,
	evaluatorService *service.EvaluatorService,
	instituteService *service.InstituteService,
) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		studentService:   studentService,
		evaluatorService: evaluatorService,
		instituteService: instituteService,
	}
}

// StudentVerify godoc
// POST /api/v1/auth/student/verify
// Checks reg_no + sppu_reg_no and returns a student token.
func (h *AuthHandler) StudentVerify(c *gin.Context) {
	var req model.StudentVerifyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Verify(c.Request.Context(), req.RegNo, req.SppuRegNo)
	if err != nil {
		failWithSuccessFlag(c, err)
		return
	}

	token, err := h.authService.IssueToken(c.Request.Context(), service.Identity{
		Role:    service.RoleStudent,
		RegNo:   student.RegNo,
		College: student.CollegeName,
	})
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.StudentVerifyResponse{
		Success: true,
		Token:   token,
		Student: *student,
	})
}

// EvaluatorLogin godoc
// POST /api/v1/auth/evaluator/login
// Checks reg_no + sppu_reg_no and returns an evaluator token.
func (h *AuthHandler) EvaluatorLogin(c *gin.Context) {
	var req model.EvaluatorLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	evaluator, err := h.evaluatorService.Login(c.Request.Context(), req.RegNo, req.SppuRegNo)
	if err != nil {
		failWithSuccessFlag(c, err)
		return
	}

	token, err := h.authService.IssueToken(c.Request.Context(), service.Identity{
		Role:    service.RoleEvaluator,
		RegNo:   evaluator.RegNo,
		College: evaluator.CollegeName,
	})
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.EvaluatorLoginResponse{
		Success:  true,
		Redirect: evaluatorRedirect,
		Token:    token,
	})
}

// InstituteLogin godoc
// POST /api/v1/auth/institute/login
// Validates email + password for institute staff.
func (h *AuthHandler) InstituteLogin(c *gin.Context) {
	var req model.InstituteLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.instituteService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failWithSuccessFlag(c, err)
		return
	}

	token, err := h.authService.IssueToken(c.Request.Context(), service.Identity{
		Role:    service.RoleInstitute,
		College: admin.CollegeName,
		UserID:  admin.ID,
	})
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.InstituteLoginResponse{
		Success:  true,
		Redirect: "/institute/dashboard",
		Token:    token,
		Admin:    *admin,
	})
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes the caller's active session.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}
