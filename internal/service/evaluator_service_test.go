package service

import (
	"context"
	"testing"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/repository/memstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvaluatorService(t *testing.T) (*EvaluatorService, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	store.AddEvaluator(model.Evaluator{RegNo: "E1", CollegeName: college, SppuRegNo: "SPPU-E1", FirstName: "Eva"})
	return NewEvaluatorService(store, time.Second, zerolog.Nop()), store
}

func TestEvaluatorService_Login(t *testing.T) {
	svc, _ := newEvaluatorService(t)

	ev, err := svc.Login(context.Background(), "E1", "SPPU-E1")
	require.NoError(t, err)
	assert.Equal(t, "Eva", ev.FirstName)

	_, err = svc.Login(context.Background(), "E1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "E9", "SPPU-E1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEvaluatorService_Dashboard_ZeroWork(t *testing.T) {
	svc, _ := newEvaluatorService(t)

	dash, err := svc.Dashboard(context.Background(), "E1", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardMetrics{}, dash.Metrics)
	assert.NotNil(t, dash.PendingRequests)
	assert.Empty(t, dash.PendingRequests)
}

func TestEvaluatorService_Dashboard_UnknownEvaluator(t *testing.T) {
	svc, _ := newEvaluatorService(t)

	_, err := svc.Dashboard(context.Background(), "nobody", fixedNow)
	assert.ErrorIs(t, err, ErrEvaluatorNotFound)
}

func TestEvaluatorService_Dashboard_Metrics(t *testing.T) {
	svc, store := newEvaluatorService(t)
	e1, e2 := "E1", "E2"
	at := func(d time.Duration) *time.Time { v := fixedNow.Add(d); return &v }

	// Queue: unassigned pending in college, assigned pending and under review.
	store.AddRequest(model.Request{ID: 1, StudentRegNo: "S1", StudentCollege: college, SubjectName: "Maths", Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: fixedNow.Add(-1 * time.Hour)})
	store.AddRequest(model.Request{ID: 2, StudentRegNo: "S2", StudentCollege: college, SubjectName: "Physics", Status: model.StatusPending, Urgency: model.UrgencyCritical, EvaluatorRegNo: &e1, RequestDate: fixedNow.Add(-30 * time.Hour)})
	store.AddRequest(model.Request{ID: 3, StudentRegNo: "S3", StudentCollege: college, SubjectName: "Chemistry", Status: model.StatusUnderReview, Urgency: model.UrgencyMedium, EvaluatorRegNo: &e1, RequestDate: fixedNow.Add(-72 * time.Hour)})
	store.AddRequest(model.Request{ID: 4, StudentRegNo: "S4", StudentCollege: college, SubjectName: "Biology", Status: model.StatusUnderReview, Urgency: model.UrgencyNormal, EvaluatorRegNo: &e1, RequestDate: fixedNow.Add(-2 * time.Hour)})

	// Completions: two today, one yesterday.
	store.AddRequest(model.Request{ID: 5, StudentCollege: college, Status: model.StatusCompleted, Urgency: model.UrgencyNormal, EvaluatorRegNo: &e1, RequestDate: fixedNow.Add(-4 * time.Hour), CompletionDate: at(-2 * time.Hour)})
	store.AddRequest(model.Request{ID: 6, StudentCollege: college, Status: model.StatusCompleted, Urgency: model.UrgencyNormal, EvaluatorRegNo: &e1, RequestDate: fixedNow.Add(-5 * time.Hour), CompletionDate: at(-1 * time.Hour)})
	store.AddRequest(model.Request{ID: 7, StudentCollege: college, Status: model.StatusCompleted, Urgency: model.UrgencyNormal, EvaluatorRegNo: &e1, RequestDate: fixedNow.Add(-30 * time.Hour), CompletionDate: at(-24 * time.Hour)})

	// Out of scope: someone else's, another college, terminal.
	store.AddRequest(model.Request{ID: 8, StudentCollege: college, Status: model.StatusPending, Urgency: model.UrgencyCritical, EvaluatorRegNo: &e2, RequestDate: fixedNow})
	store.AddRequest(model.Request{ID: 9, StudentCollege: "Other College", Status: model.StatusPending, Urgency: model.UrgencyCritical, RequestDate: fixedNow})
	store.AddRequest(model.Request{ID: 10, StudentCollege: college, Status: model.StatusRejected, Urgency: model.UrgencyHigh, EvaluatorRegNo: &e1, RequestDate: fixedNow})

	dash, err := svc.Dashboard(context.Background(), "E1", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, model.DashboardMetrics{
		PendingReview:     2,
		UnderReview:       2,
		CompletedToday:    2,
		AverageTime:       4.0,
		HighPriorityCount: 1,
		FinalStageCount:   1,
		CompletedChange:   1,
	}, dash.Metrics)

	require.Len(t, dash.PendingRequests, 4)
	assert.Equal(t, model.QueueItem{
		ID: "REQ002", Student: "S2", Subject: "Physics",
		Status: model.StatusPending, Urgency: model.UrgencyCritical,
		Date: fixedNow.Add(-30 * time.Hour).Format("2006-01-02"),
	}, dash.PendingRequests[0])

	ids := make([]string, len(dash.PendingRequests))
	for i, item := range dash.PendingRequests {
		ids[i] = item.ID
	}
	assert.Equal(t, []string{"REQ002", "REQ003", "REQ001", "REQ004"}, ids)
}

func TestEvaluatorService_Dashboard_QueueLimit(t *testing.T) {
	svc, store := newEvaluatorService(t)
	for i := 0; i < 15; i++ {
		store.AddRequest(model.Request{StudentCollege: college, Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: fixedNow.Add(-time.Duration(i) * time.Minute)})
	}

	dash, err := svc.Dashboard(context.Background(), "E1", fixedNow)
	require.NoError(t, err)
	assert.Len(t, dash.PendingRequests, 10)
	assert.Equal(t, 15, dash.Metrics.PendingReview)
	assert.Equal(t, "REQ001", dash.PendingRequests[0].ID)
}

func TestEvaluatorService_Listings(t *testing.T) {
	svc, store := newEvaluatorService(t)
	e1 := "E1"
	store.AddEvaluatorSubject(model.EvaluatorSubject{EvaluatorRegNo: "E1", EvaluatorCollege: college, SubjectCode: "CS2", SubjectName: "Networks"})
	store.AddEvaluatorSubject(model.EvaluatorSubject{EvaluatorRegNo: "E1", EvaluatorCollege: college, SubjectCode: "CS1", SubjectName: "Compilers"})
	store.AddEvaluatorSubject(model.EvaluatorSubject{EvaluatorRegNo: "E2", EvaluatorCollege: college, SubjectCode: "CS3"})
	store.AddRequest(model.Request{ID: 1, Status: model.StatusPending, Urgency: model.UrgencyNormal, EvaluatorRegNo: &e1, RequestDate: fixedNow.Add(-time.Hour)})
	store.AddRequest(model.Request{ID: 2, Status: model.StatusPending, Urgency: model.UrgencyNormal, EvaluatorRegNo: &e1, RequestDate: fixedNow})
	store.AddRequest(model.Request{ID: 3, Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: fixedNow})

	subjects, err := svc.ListSubjects(context.Background(), "E1")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "CS1", subjects[0].SubjectCode)

	requests, err := svc.ListRequests(context.Background(), "E1")
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, int64(2), requests[0].ID)

	empty, err := svc.ListSubjects(context.Background(), "E9")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
