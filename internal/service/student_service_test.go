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

func TestStudentService_Verify(t *testing.T) {
	store := memstore.New()
	seedStudentS(store)
	svc := NewStudentService(store, time.Second, zerolog.Nop())

	st, err := svc.Verify(context.Background(), "S001", "SPPU-S001")
	require.NoError(t, err)
	assert.Equal(t, college, st.CollegeName)

	_, err = svc.Verify(context.Background(), "S001", "SPPU-OTHER")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStudentService_Dashboard(t *testing.T) {
	store := memstore.New()
	seedStudentS(store)
	store.AddSubject(model.StudentSubject{StudentRegNo: "S001", StudentCollege: college, SubjectCode: "CS102", SubjectName: "Algorithms", CurrentMarks: 55})
	for i := 0; i < 7; i++ {
		store.AddRequest(model.Request{
			StudentRegNo: "S001", StudentCollege: college, SubjectCode: "CS101",
			Status: model.StatusPending, Urgency: model.UrgencyNormal,
			RequestDate: fixedNow.Add(-time.Duration(i) * time.Hour),
		})
	}
	store.AddRequest(model.Request{StudentRegNo: "S001", StudentCollege: "Elsewhere", Status: model.StatusPending, Urgency: model.UrgencyNormal, RequestDate: fixedNow.Add(time.Hour)})
	svc := NewStudentService(store, time.Second, zerolog.Nop())

	dash, err := svc.Dashboard(context.Background(), "S001", "SPPU-S001")
	require.NoError(t, err)
	assert.Equal(t, "S001", dash.StudentDetails.RegNo)
	require.Len(t, dash.RecentRequests, 5)
	assert.Equal(t, int64(1), dash.RecentRequests[0].ID)
	for _, r := range dash.RecentRequests {
		assert.Equal(t, college, r.StudentCollege)
	}
	require.Len(t, dash.Subjects, 2)
	assert.Equal(t, "CS101", dash.Subjects[0].SubjectCode)

	_, err = svc.Dashboard(context.Background(), "S001", "bad")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStudentService_DashboardEmptyLists(t *testing.T) {
	store := memstore.New()
	store.AddStudent(model.Student{RegNo: "NEW", CollegeName: college, SppuRegNo: "P"})
	svc := NewStudentService(store, time.Second, zerolog.Nop())

	dash, err := svc.Dashboard(context.Background(), "NEW", "P")
	require.NoError(t, err)
	assert.NotNil(t, dash.RecentRequests)
	assert.NotNil(t, dash.Subjects)
	assert.Empty(t, dash.RecentRequests)
}
