// Package priority classifies re-evaluation requests into urgency levels and
// builds the triage view used by institute staff.
package priority

import (
	"sort"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
)

// Marks strictly below this threshold raise a request to medium.
const lowMarksThreshold = 35

// Default is returned when a request has no matching student record.
var Default = model.Priority{Level: 5, Urgency: model.UrgencyNormal}

// Classify maps a request and its owning student to a priority.
// Rules are evaluated in order and the first match wins.
func Classify(req model.Request, student *model.Student) model.Priority {
	if student == nil {
		return Default
	}

	switch {
	case student.YearOfStudy == 4:
		return model.Priority{Level: 1, Urgency: model.UrgencyCritical}
	case student.PendingRequests > student.TotalRequests:
		return model.Priority{Level: 2, Urgency: model.UrgencyHigh}
	case req.CurrentMarks < lowMarksThreshold:
		return model.Priority{Level: 3, Urgency: model.UrgencyMedium}
	case student.YearOfStudy == 3 && student.Semester == 2:
		return model.Priority{Level: 4, Urgency: model.UrgencyModerate}
	default:
		return Default
	}
}

type studentKey struct {
	regNo   string
	college string
}

// StudentIndex finds the owning student of a request.
type StudentIndex map[studentKey]*model.Student

// IndexStudents builds an index keyed by (reg_no, college_name).
func IndexStudents(students []model.Student) StudentIndex {
	idx := make(StudentIndex, len(students))
	for i := range students {
		s := &students[i]
		idx[studentKey{s.RegNo, s.CollegeName}] = s
	}
	return idx
}

// Lookup returns the student owning req, or nil.
func (idx StudentIndex) Lookup(req model.Request) *model.Student {
	return idx[studentKey{req.StudentRegNo, req.StudentCollege}]
}

// DaysPassed returns the number of whole days between requestDate and now.
func DaysPassed(requestDate, now time.Time) int {
	d := now.Sub(requestDate)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// Triage classifies every request and, when day > 0, keeps only those filed
// day-1 whole days ago. The result is ordered by level; requests of equal
// level keep their input order.
func Triage(requests []model.Request, students []model.Student, now time.Time, day int) []model.TriagedRequest {
	idx := IndexStudents(students)
	out := make([]model.TriagedRequest, 0, len(requests))
	for _, req := range requests {
		days := DaysPassed(req.RequestDate, now)
		if day > 0 && days != day-1 {
			continue
		}
		out = append(out, model.TriagedRequest{
			Request:    req,
			Priority:   Classify(req, idx.Lookup(req)),
			DaysPassed: days,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Level < out[j].Priority.Level
	})
	return out
}
