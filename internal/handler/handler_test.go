package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/handler"
	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/repository/memstore"
	"github.com/aissms/reeval-backend/internal/router"
	"github.com/aissms/reeval-backend/internal/service"
	"github.com/aissms/reeval-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const college = "AISSMS COE"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Metadata struct {
		RequestID string `json:"request_id"`
	} `json:"metadata"`
}

type testServer struct {
	engine *gin.Engine
	store  *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	validator.Setup()

	cfg := &config.Config{
		GinMode:      gin.TestMode,
		JWTSecret:    "handler-test-secret",
		JWTExpiry:    time.Hour,
		BcryptCost:   bcrypt.MinCost,
		StoreTimeout: time.Second,
	}
	log := zerolog.Nop()
	store := memstore.New()

	authService := service.NewAuthService(cfg, service.NewMemorySessionStore())
	requestService := service.NewRequestService(store, service.NopEventPublisher{}, cfg.StoreTimeout, log)
	reconcileService := service.NewReconcileService(store, service.NopEventPublisher{}, cfg.StoreTimeout, log)
	studentService := service.NewStudentService(store, cfg.StoreTimeout, log)
	evaluatorService := service.NewEvaluatorService(store, cfg.StoreTimeout, log)
	instituteService := service.NewInstituteService(store, authService, cfg.StoreTimeout, log)

	_, err := instituteService.CreateAdmin(context.Background(), "staff@aissms.edu", "Staff", college, "s3cret-pass")
	require.NoError(t, err)

	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, studentService, evaluatorService, instituteService),
		StudentPortal: handler.NewStudentPortalHandler(requestService, studentService),
		Evaluator:     handler.NewEvaluatorHandler(evaluatorService, requestService),
		Institute:     handler.NewInstituteHandler(instituteService, requestService, reconcileService),
		WS:            handler.NewWSHandler(nil, log, nil),
		System:        handler.NewSystemHandler(map[string]handler.HealthCheck{}, log),
	}

	seed(store)
	return &testServer{
		engine: router.SetupRouter(authService, handlers, cfg, nil),
		store:  store,
	}
}

func seed(store *memstore.Store) {
	store.AddStudent(model.Student{
		RegNo: "S001", CollegeName: college, SppuRegNo: "SPPU-S001",
		FirstName: "Sara", YearOfStudy: 4, Semester: 1,
		PendingRequests: 2, TotalRequests: 2,
	})
	store.AddSubject(model.StudentSubject{
		StudentRegNo: "S001", StudentCollege: college,
		SubjectCode: "CS101", SubjectName: "Data Structures", CurrentMarks: 40,
	})
	store.AddStudent(model.Student{
		RegNo: "T001", CollegeName: college, SppuRegNo: "SPPU-T001",
		FirstName: "Tara", YearOfStudy: 2, Semester: 1,
		PendingRequests: 1, TotalRequests: 5,
	})
	store.AddEvaluator(model.Evaluator{RegNo: "E001", CollegeName: college, SppuRegNo: "SPPU-E001", FirstName: "Eva"})
	store.AddEvaluator(model.Evaluator{RegNo: "E002", CollegeName: college, SppuRegNo: "SPPU-E002", FirstName: "Eli"})
	store.AddEvaluatorSubject(model.EvaluatorSubject{
		EvaluatorRegNo: "E001", EvaluatorCollege: college,
		SubjectCode: "CS101", SubjectName: "Data Structures",
	})
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) login(t *testing.T, path string, body any) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, code, string(env.Data))
	var out struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.True(t, out.Success)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (s *testServer) studentToken(t *testing.T, regNo string) string {
	return s.login(t, "/api/v1/auth/student/verify", gin.H{"reg_no": regNo, "sppu_reg_no": "SPPU-" + regNo})
}

func (s *testServer) evaluatorToken(t *testing.T, regNo string) string {
	return s.login(t, "/api/v1/auth/evaluator/login", gin.H{"reg_no": regNo, "sppu_reg_no": "SPPU-" + regNo})
}

func (s *testServer) instituteToken(t *testing.T) string {
	return s.login(t, "/api/v1/auth/institute/login", gin.H{"email": "staff@aissms.edu", "password": "s3cret-pass"})
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	code, env := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, env.Error)
	assert.NotEmpty(t, env.Metadata.RequestID)
}

func TestAuth_StudentVerify(t *testing.T) {
	srv := newTestServer(t)

	t.Run("valid credentials", func(t *testing.T) {
		srv.studentToken(t, "S001")
	})

	t.Run("wrong sppu reg no", func(t *testing.T) {
		code, env := srv.do(t, http.MethodPost, "/api/v1/auth/student/verify", "", gin.H{"reg_no": "S001", "sppu_reg_no": "nope"})
		assert.Equal(t, http.StatusUnauthorized, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
		assert.False(t, decode[map[string]any](t, env.Data)["success"].(bool))
	})

	t.Run("missing field", func(t *testing.T) {
		code, env := srv.do(t, http.MethodPost, "/api/v1/auth/student/verify", "", gin.H{"reg_no": "S001"})
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Contains(t, env.Error.Fields, "sppu_reg_no")
	})
}

func TestAuth_EvaluatorLoginRedirects(t *testing.T) {
	srv := newTestServer(t)
	code, env := srv.do(t, http.MethodPost, "/api/v1/auth/evaluator/login", "", gin.H{"reg_no": "E001", "sppu_reg_no": "SPPU-E001"})
	require.Equal(t, http.StatusOK, code)
	out := decode[model.EvaluatorLoginResponse](t, env.Data)
	assert.True(t, out.Success)
	assert.Equal(t, "/evaluator/dashboard", out.Redirect)
}

func TestAuth_GuardsAndLogout(t *testing.T) {
	srv := newTestServer(t)

	code, env := srv.do(t, http.MethodGet, "/api/v1/evaluator/dashboard?reg_no=E001", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "TOKEN_REQUIRED", env.Error.Code)

	code, env = srv.do(t, http.MethodGet, "/api/v1/evaluator/dashboard?reg_no=E001", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "TOKEN_INVALID", env.Error.Code)

	student := srv.studentToken(t, "S001")
	code, env = srv.do(t, http.MethodGet, "/api/v1/evaluator/dashboard?reg_no=E001", student, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = srv.do(t, http.MethodPost, "/api/v1/auth/logout", student, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = srv.do(t, http.MethodGet, "/api/v1/student/requests?reg_no=S001&college_name="+urlCollege+"&type=subjects", student, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "SESSION_INVALIDATED", env.Error.Code)
}

const urlCollege = "AISSMS%20COE"

func TestStudentPortal_SubmitAndList(t *testing.T) {
	srv := newTestServer(t)
	token := srv.studentToken(t, "S001")

	code, env := srv.do(t, http.MethodPost, "/api/v1/student/requests", token, gin.H{
		"reg_no": "S001", "college_name": college, "subject_code": "CS101", "reason": "recheck",
	})
	require.Equal(t, http.StatusCreated, code, string(env.Data))
	created := decode[struct {
		Success   bool  `json:"success"`
		RequestID int64 `json:"requestId"`
	}](t, env.Data)
	assert.True(t, created.Success)

	stored, ok := srv.store.Request(created.RequestID)
	require.True(t, ok)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Equal(t, model.UrgencyCritical, stored.Urgency)

	st, _ := srv.store.Student("S001", college)
	assert.Equal(t, 3, st.PendingRequests)
	assert.Equal(t, 3, st.TotalRequests)

	code, env = srv.do(t, http.MethodGet, "/api/v1/student/requests?reg_no=S001&college_name="+urlCollege+"&type=requests", token, nil)
	require.Equal(t, http.StatusOK, code)
	requests := decode[[]model.Request](t, env.Data)
	require.Len(t, requests, 1)
	assert.Equal(t, created.RequestID, requests[0].ID)

	code, env = srv.do(t, http.MethodGet, "/api/v1/student/requests?reg_no=S001&college_name="+urlCollege+"&type=subjects", token, nil)
	require.Equal(t, http.StatusOK, code)
	subjects := decode[[]model.StudentSubject](t, env.Data)
	require.Len(t, subjects, 1)
	assert.Equal(t, "CS101", subjects[0].SubjectCode)
}

func TestStudentPortal_Errors(t *testing.T) {
	srv := newTestServer(t)
	token := srv.studentToken(t, "S001")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"missing college", http.MethodGet, "/api/v1/student/requests?reg_no=S001", nil, http.StatusBadRequest, "MISSING_PARAMS"},
		{"unknown type", http.MethodGet, "/api/v1/student/requests?reg_no=S001&college_name=" + urlCollege + "&type=marks", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"someone else's list", http.MethodGet, "/api/v1/student/requests?reg_no=T001&college_name=" + urlCollege, nil, http.StatusForbidden, "FORBIDDEN"},
		{"someone else's request", http.MethodPost, "/api/v1/student/requests", gin.H{
			"reg_no": "T001", "college_name": college, "subject_code": "CS101", "reason": "recheck",
		}, http.StatusForbidden, "FORBIDDEN"},
		{"unknown subject", http.MethodPost, "/api/v1/student/requests", gin.H{
			"reg_no": "S001", "college_name": college, "subject_code": "EE404", "reason": "recheck",
		}, http.StatusNotFound, "SUBJECT_NOT_FOUND"},
		{"bad urgency hint", http.MethodPost, "/api/v1/student/requests", gin.H{
			"reg_no": "S001", "college_name": college, "subject_code": "CS101", "reason": "recheck", "urgency": "asap",
		}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := srv.do(t, tt.method, tt.path, token, tt.body)
			assert.Equal(t, tt.status, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
	assert.Equal(t, 0, srv.store.RequestCount())
}

func TestStudentPortal_Dashboard(t *testing.T) {
	srv := newTestServer(t)
	token := srv.studentToken(t, "S001")
	srv.store.AddRequest(model.Request{
		StudentRegNo: "S001", StudentCollege: college, SubjectCode: "CS101",
		Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: time.Now(),
	})

	code, env := srv.do(t, http.MethodPost, "/api/v1/student/dashboard", token, gin.H{"reg_no": "S001", "sppu_reg_no": "SPPU-S001"})
	require.Equal(t, http.StatusOK, code)
	dash := decode[model.StudentDashboard](t, env.Data)
	assert.Equal(t, "S001", dash.StudentDetails.RegNo)
	assert.Len(t, dash.RecentRequests, 1)
	assert.Len(t, dash.Subjects, 1)

	code, _ = srv.do(t, http.MethodPost, "/api/v1/student/dashboard", token, gin.H{"reg_no": "T001", "sppu_reg_no": "SPPU-T001"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestEvaluator_DashboardWithNoWork(t *testing.T) {
	srv := newTestServer(t)
	token := srv.evaluatorToken(t, "E001")

	code, env := srv.do(t, http.MethodGet, "/api/v1/evaluator/dashboard?reg_no=E001", token, nil)
	require.Equal(t, http.StatusOK, code)
	dash := decode[model.EvaluatorDashboard](t, env.Data)
	assert.Equal(t, 0, dash.Metrics.PendingReview)
	assert.NotNil(t, dash.PendingRequests)
	assert.Empty(t, dash.PendingRequests)

	code, env = srv.do(t, http.MethodGet, "/api/v1/evaluator/dashboard", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "MISSING_PARAMS", env.Error.Code)

	code, env = srv.do(t, http.MethodGet, "/api/v1/evaluator/subjects?reg_no=E002", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, env = srv.do(t, http.MethodGet, "/api/v1/evaluator/subjects?reg_no=E001", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.EvaluatorSubject](t, env.Data), 1)
}

func TestEvaluator_ReviewLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := srv.evaluatorToken(t, "E001")
	id := srv.store.AddRequest(model.Request{
		StudentRegNo: "S001", StudentCollege: college, SubjectCode: "CS101",
		Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: time.Now(),
	})
	path := "/api/v1/evaluator/requests/"

	code, env := srv.do(t, http.MethodPatch, path+"abc", token, gin.H{"status": "Completed"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	code, env = srv.do(t, http.MethodPatch, path+"999", token, gin.H{"status": "Completed"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "REQUEST_NOT_FOUND", env.Error.Code)

	code, env = srv.do(t, http.MethodPatch, path+itoa(id), token, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATUS", env.Error.Code)

	code, env = srv.do(t, http.MethodPatch, path+itoa(id), token, gin.H{"status": "Under Review"})
	require.Equal(t, http.StatusOK, code, string(env.Data))

	other := srv.evaluatorToken(t, "E002")
	code, env = srv.do(t, http.MethodPatch, path+itoa(id), other, gin.H{"status": "Completed"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "NOT_ASSIGNED_EVALUATOR", env.Error.Code)

	code, env = srv.do(t, http.MethodPatch, path+itoa(id), token, gin.H{
		"status": "Completed", "updated_marks": 52, "comments": "totalling error",
	})
	require.Equal(t, http.StatusOK, code)
	reviewed := decode[model.Request](t, env.Data)
	assert.Equal(t, model.StatusCompleted, reviewed.Status)
	require.NotNil(t, reviewed.CompletionDate)
	require.NotNil(t, reviewed.UpdatedMarks)
	assert.Equal(t, 52.0, *reviewed.UpdatedMarks)

	code, env = srv.do(t, http.MethodPatch, path+itoa(id), token, gin.H{"status": "Pending"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)

	code, env = srv.do(t, http.MethodGet, "/api/v1/evaluator/requests?reg_no=E001", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Request](t, env.Data), 1)
}

func TestInstitute_TriageAndUrgency(t *testing.T) {
	srv := newTestServer(t)
	token := srv.instituteToken(t)
	now := time.Now()

	older := srv.store.AddRequest(model.Request{
		StudentRegNo: "T001", StudentCollege: college, SubjectCode: "MA201", CurrentMarks: 30,
		Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: now.Add(-50 * time.Hour),
	})
	newer := srv.store.AddRequest(model.Request{
		StudentRegNo: "S001", StudentCollege: college, SubjectCode: "CS101", CurrentMarks: 40,
		Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: now.Add(-time.Hour),
	})

	code, env := srv.do(t, http.MethodGet, "/api/v1/institute/tickets", token, nil)
	require.Equal(t, http.StatusOK, code)
	tickets := decode[[]struct {
		ID         int64          `json:"id"`
		Priority   model.Priority `json:"priority"`
		DaysPassed int            `json:"days_passed"`
	}](t, env.Data)
	require.Len(t, tickets, 2)
	assert.Equal(t, newer, tickets[0].ID)
	assert.Equal(t, model.Priority{Level: 1, Urgency: model.UrgencyCritical}, tickets[0].Priority)
	assert.Equal(t, older, tickets[1].ID)
	assert.Equal(t, model.Priority{Level: 3, Urgency: model.UrgencyMedium}, tickets[1].Priority)
	assert.Equal(t, 2, tickets[1].DaysPassed)

	code, env = srv.do(t, http.MethodGet, "/api/v1/institute/tickets?day=3", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, decode[[]model.TriagedRequest](t, env.Data), 1)

	code, _ = srv.do(t, http.MethodPut, "/api/v1/institute/requests/"+itoa(older)+"/urgency", token, gin.H{"urgency": "high"})
	require.Equal(t, http.StatusOK, code)
	stored, _ := srv.store.Request(older)
	assert.Equal(t, model.UrgencyHigh, stored.Urgency)

	code, env = srv.do(t, http.MethodPut, "/api/v1/institute/requests/urgency", token, gin.H{
		"updates": []gin.H{{"id": older, "urgency": "moderate"}, {"id": 999, "urgency": "moderate"}},
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, decode[map[string]any](t, env.Data)["success"].(bool))
	stored, _ = srv.store.Request(older)
	assert.Equal(t, model.UrgencyHigh, stored.Urgency)

	code, _ = srv.do(t, http.MethodPut, "/api/v1/institute/requests/urgency", token, gin.H{
		"updates": []gin.H{{"id": older, "urgency": "moderate"}, {"id": newer, "urgency": "moderate"}},
	})
	require.Equal(t, http.StatusOK, code)
	stored, _ = srv.store.Request(newer)
	assert.Equal(t, model.UrgencyModerate, stored.Urgency)
}

func TestInstitute_Reconcile(t *testing.T) {
	srv := newTestServer(t)
	token := srv.instituteToken(t)
	id := srv.store.AddRequest(model.Request{
		StudentRegNo: "S001", StudentCollege: college, SubjectCode: "CS101", CurrentMarks: 40,
		Status: model.StatusUnderReview, Urgency: model.UrgencyNormal, RequestDate: time.Now(),
	})

	code, env := srv.do(t, http.MethodPost, "/api/v1/institute/requests/reconcile", token, nil)
	require.Equal(t, http.StatusOK, code)
	result := decode[model.ReconcileResult](t, env.Data)
	assert.Equal(t, model.ReconcileResult{Success: true, Total: 1, Changed: 1}, result)

	stored, _ := srv.store.Request(id)
	assert.Equal(t, model.UrgencyCritical, stored.Urgency)
	assert.Equal(t, model.StatusUnderReview, stored.Status)

	code, env = srv.do(t, http.MethodGet, "/api/v1/institute/requests?status=under_review&limit=10", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Request](t, env.Data), 1)

	code, env = srv.do(t, http.MethodGet, "/api/v1/institute/requests?status=lost", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATUS", env.Error.Code)

	code, env = srv.do(t, http.MethodGet, "/api/v1/institute/students", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Student](t, env.Data), 2)

	code, env = srv.do(t, http.MethodGet, "/api/v1/institute/evaluators", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Evaluator](t, env.Data), 2)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
