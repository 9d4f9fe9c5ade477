package service

import (
	"context"
	"testing"
	"time"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/repository/memstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:    "test-secret",
		JWTExpiry:    time.Hour,
		BcryptCost:   bcrypt.MinCost,
		StoreTimeout: time.Second,
	}
}

func newInstituteService(t *testing.T) (*InstituteService, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	auth := NewAuthService(testConfig(), NewMemorySessionStore())
	return NewInstituteService(store, auth, time.Second, zerolog.Nop()), store
}

func TestInstituteService_CreateAdminAndLogin(t *testing.T) {
	svc, _ := newInstituteService(t)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, " Office@AISSMS.edu ", "Exam Cell", college, "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "office@aissms.edu", admin.Email)
	assert.NotEqual(t, "s3cret-pass", admin.PasswordHash)

	_, err = svc.CreateAdmin(ctx, "office@aissms.edu", "Dup", college, "another-pass")
	assert.ErrorIs(t, err, ErrDuplicateAdmin)

	got, err := svc.Login(ctx, "OFFICE@aissms.edu", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, college, got.CollegeName)

	_, err = svc.Login(ctx, "office@aissms.edu", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@aissms.edu", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestInstituteService_Tickets(t *testing.T) {
	svc, store := newInstituteService(t)
	store.AddStudent(model.Student{RegNo: "A", CollegeName: college, YearOfStudy: 4})
	store.AddStudent(model.Student{RegNo: "B", CollegeName: college, YearOfStudy: 2, Semester: 1})
	store.AddRequest(model.Request{ID: 1, StudentRegNo: "B", StudentCollege: college, CurrentMarks: 20, Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: fixedNow.Add(-2 * time.Hour)})
	store.AddRequest(model.Request{ID: 2, StudentRegNo: "A", StudentCollege: college, CurrentMarks: 80, Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: fixedNow.Add(-30 * time.Hour)})
	store.AddRequest(model.Request{ID: 3, StudentRegNo: "Z", StudentCollege: "Other", CurrentMarks: 5, Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: fixedNow})

	all, err := svc.Tickets(context.Background(), college, 0, fixedNow)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[0].ID)
	assert.Equal(t, 1, all[0].Priority.Level)
	assert.Equal(t, 1, all[0].DaysPassed)
	assert.Equal(t, model.UrgencyMedium, all[1].Priority.Urgency)

	today, err := svc.Tickets(context.Background(), college, 1, fixedNow)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, int64(1), today[0].ID)

	// Triage is a read-only view.
	q, _ := store.Request(2)
	assert.Equal(t, model.UrgencyNormal, q.Urgency)
}

func TestInstituteService_Listings(t *testing.T) {
	svc, store := newInstituteService(t)
	store.AddStudent(model.Student{RegNo: "A", CollegeName: college})
	store.AddStudent(model.Student{RegNo: "B", CollegeName: "Other"})
	store.AddEvaluator(model.Evaluator{RegNo: "E1", CollegeName: college})
	store.AddRequest(model.Request{ID: 1, StudentCollege: college, Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: fixedNow})
	store.AddRequest(model.Request{ID: 2, StudentCollege: college, Status: model.StatusCompleted, Urgency: model.UrgencyNormal, RequestDate: fixedNow})

	students, err := svc.ListStudents(context.Background(), college)
	require.NoError(t, err)
	assert.Len(t, students, 1)

	evaluators, err := svc.ListEvaluators(context.Background(), college)
	require.NoError(t, err)
	assert.Len(t, evaluators, 1)

	pending, err := svc.ListRequests(context.Background(), college, model.StatusPending, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID)
}
