// Package memstore is an in-memory repository.TxStore for tests.
//
// Transactions copy the whole dataset on begin and swap it back on success,
// so a failing fn leaves nothing behind. Faults can be injected per
// operation with FailOn.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
	"github.com/aissms/reeval-backend/internal/repository"
)

// ErrConstraint mimics a check constraint violation in the database.
var ErrConstraint = errors.New("memstore: constraint violation")

type studentKey struct{ regNo, college string }

type subjectKey struct{ regNo, college, code string }

type dataset struct {
	students   map[studentKey]model.Student
	subjects   map[subjectKey]model.StudentSubject
	evaluators map[string]model.Evaluator
	evSubjects []model.EvaluatorSubject
	requests   map[int64]model.Request
	admins     map[string]model.InstituteAdmin
	nextID     int64
	nextAdmin  int
}

func newDataset() *dataset {
	return &dataset{
		students:   map[studentKey]model.Student{},
		subjects:   map[subjectKey]model.StudentSubject{},
		evaluators: map[string]model.Evaluator{},
		requests:   map[int64]model.Request{},
		admins:     map[string]model.InstituteAdmin{},
		nextID:     1,
		nextAdmin:  1,
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		students:   make(map[studentKey]model.Student, len(d.students)),
		subjects:   make(map[subjectKey]model.StudentSubject, len(d.subjects)),
		evaluators: make(map[string]model.Evaluator, len(d.evaluators)),
		evSubjects: append([]model.EvaluatorSubject(nil), d.evSubjects...),
		requests:   make(map[int64]model.Request, len(d.requests)),
		admins:     make(map[string]model.InstituteAdmin, len(d.admins)),
		nextID:     d.nextID,
		nextAdmin:  d.nextAdmin,
	}
	for k, v := range d.students {
		c.students[k] = v
	}
	for k, v := range d.subjects {
		c.subjects[k] = v
	}
	for k, v := range d.evaluators {
		c.evaluators[k] = v
	}
	for k, v := range d.requests {
		c.requests[k] = v
	}
	for k, v := range d.admins {
		c.admins[k] = v
	}
	return c
}

type fault struct {
	after int
	calls int
	err   error
}

// Store is an in-memory repository.TxStore. The zero value is not usable;
// call New.
type Store struct {
	mu     sync.Mutex
	data   *dataset
	faults map[string]*fault
	delays map[string]time.Duration
	now    func() time.Time
}

var _ repository.TxStore = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		data:   newDataset(),
		faults: map[string]*fault{},
		delays: map[string]time.Duration{},
		now:    time.Now,
	}
}

// SetClock overrides the time source used for request_date on insert.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailOn makes the (after+1)-th call of op return err. Subsequent calls succeed.
func (s *Store) FailOn(op string, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{after: after, err: err}
}

// Delay makes every call of op take at least d, or until the context ends.
func (s *Store) Delay(op string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[op] = d
}

// InTx runs fn against a private copy of the data and publishes it only when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &view{data: s.data.clone(), s: s}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) auto() *view {
	return &view{data: s.data, s: s}
}

// hit is called with mu held.
func (s *Store) hit(op string) error {
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	f.calls++
	if f.calls == f.after+1 {
		return f.err
	}
	return nil
}

// ─── Seeding and inspection ─────────────────────────────────────────

// AddStudent inserts or replaces a student.
func (s *Store) AddStudent(st model.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.students[studentKey{st.RegNo, st.CollegeName}] = st
}

// AddSubject inserts or replaces a student subject record.
func (s *Store) AddSubject(sub model.StudentSubject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.subjects[subjectKey{sub.StudentRegNo, sub.StudentCollege, sub.SubjectCode}] = sub
}

// AddEvaluator inserts or replaces an evaluator.
func (s *Store) AddEvaluator(ev model.Evaluator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.evaluators[ev.RegNo] = ev
}

// AddEvaluatorSubject appends an evaluator subject assignment.
func (s *Store) AddEvaluatorSubject(sub model.EvaluatorSubject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.evSubjects = append(s.data.evSubjects, sub)
}

// AddRequest stores a request as given. A zero ID is assigned the next sequence value.
func (s *Store) AddRequest(q model.Request) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == 0 {
		q.ID = s.data.nextID
	}
	if q.ID >= s.data.nextID {
		s.data.nextID = q.ID + 1
	}
	s.data.requests[q.ID] = q
	return q.ID
}

// Student returns a committed student row.
func (s *Store) Student(regNo, college string) (model.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data.students[studentKey{regNo, college}]
	return st, ok
}

// Request returns a committed request row.
func (s *Store) Request(id int64) (model.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.data.requests[id]
	return q, ok
}

// Evaluator returns a committed evaluator row.
func (s *Store) Evaluator(regNo string) (model.Evaluator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.data.evaluators[regNo]
	return ev, ok
}

// RequestCount returns the number of committed requests.
func (s *Store) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.requests)
}

// ─── repository.Store outside a transaction ─────────────────────────

func (s *Store) GetStudent(ctx context.Context, regNo, college string) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().GetStudent(ctx, regNo, college)
}

func (s *Store) GetStudentByCredentials(ctx context.Context, regNo, sppuRegNo string) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().GetStudentByCredentials(ctx, regNo, sppuRegNo)
}

func (s *Store) ListStudents(ctx context.Context, college string) ([]model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().ListStudents(ctx, college)
}

func (s *Store) RecordStudentRequest(ctx context.Context, regNo, college string, requestID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().RecordStudentRequest(ctx, regNo, college, requestID)
}

func (s *Store) GetStudentSubject(ctx context.Context, regNo, college, code string) (*model.StudentSubject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().GetStudentSubject(ctx, regNo, college, code)
}

func (s *Store) ListStudentSubjects(ctx context.Context, regNo, college string) ([]model.StudentSubject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().ListStudentSubjects(ctx, regNo, college)
}

func (s *Store) GetEvaluator(ctx context.Context, regNo string) (*model.Evaluator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().GetEvaluator(ctx, regNo)
}

func (s *Store) ListEvaluators(ctx context.Context, college string) ([]model.Evaluator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().ListEvaluators(ctx, college)
}

func (s *Store) ListEvaluatorSubjects(ctx context.Context, regNo string) ([]model.EvaluatorSubject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().ListEvaluatorSubjects(ctx, regNo)
}

func (s *Store) GetEvaluatorStats(ctx context.Context, ev *model.Evaluator, now time.Time) (*model.EvaluatorStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().GetEvaluatorStats(ctx, ev, now)
}

func (s *Store) ListEvaluatorQueue(ctx context.Context, ev *model.Evaluator, limit int) ([]model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().ListEvaluatorQueue(ctx, ev, limit)
}

func (s *Store) RefreshEvaluatorCounters(ctx context.Context, college string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().RefreshEvaluatorCounters(ctx, college, now)
}

func (s *Store) InsertRequest(ctx context.Context, q *model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().InsertRequest(ctx, q)
}

func (s *Store) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().GetRequest(ctx, id)
}

func (s *Store) GetRequestForUpdate(ctx context.Context, id int64) (*model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().GetRequestForUpdate(ctx, id)
}

func (s *Store) ListRequests(ctx context.Context, f model.RequestFilter) ([]model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().ListRequests(ctx, f)
}

func (s *Store) UpdateRequestReview(ctx context.Context, q *model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().UpdateRequestReview(ctx, q)
}

func (s *Store) UpdateRequestUrgency(ctx context.Context, id int64, urgency model.Urgency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().UpdateRequestUrgency(ctx, id, urgency)
}

func (s *Store) UpdateRequestUrgencies(ctx context.Context, updates []model.UrgencyUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().UpdateRequestUrgencies(ctx, updates)
}

func (s *Store) GetInstituteAdminByEmail(ctx context.Context, email string) (*model.InstituteAdmin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().GetInstituteAdminByEmail(ctx, email)
}

func (s *Store) CreateInstituteAdmin(ctx context.Context, a *model.InstituteAdmin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto().CreateInstituteAdmin(ctx, a)
}

// ─── view: Store operations over one dataset, called with mu held ───

type view struct {
	data *dataset
	s    *Store
}

func (v *view) enter(ctx context.Context, op string) error {
	if d := v.s.delays[op]; d > 0 {
		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return v.s.hit(op)
}

func (v *view) GetStudent(ctx context.Context, regNo, college string) (*model.Student, error) {
	if err := v.enter(ctx, "GetStudent"); err != nil {
		return nil, err
	}
	st, ok := v.data.students[studentKey{regNo, college}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (v *view) GetStudentByCredentials(ctx context.Context, regNo, sppuRegNo string) (*model.Student, error) {
	if err := v.enter(ctx, "GetStudentByCredentials"); err != nil {
		return nil, err
	}
	for _, st := range v.sortedStudents("") {
		if st.RegNo == regNo && st.SppuRegNo == sppuRegNo {
			return &st, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *view) sortedStudents(college string) []model.Student {
	var out []model.Student
	for _, st := range v.data.students {
		if college == "" || st.CollegeName == college {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CollegeName != out[j].CollegeName {
			return out[i].CollegeName < out[j].CollegeName
		}
		return out[i].RegNo < out[j].RegNo
	})
	return out
}

func (v *view) ListStudents(ctx context.Context, college string) ([]model.Student, error) {
	if err := v.enter(ctx, "ListStudents"); err != nil {
		return nil, err
	}
	return v.sortedStudents(college), nil
}

func (v *view) RecordStudentRequest(ctx context.Context, regNo, college string, requestID int64) error {
	if err := v.enter(ctx, "RecordStudentRequest"); err != nil {
		return err
	}
	k := studentKey{regNo, college}
	st, ok := v.data.students[k]
	if !ok {
		return repository.ErrNotFound
	}
	st.PendingRequests++
	st.TotalRequests++
	id := requestID
	st.RecentRequestID = &id
	v.data.students[k] = st
	return nil
}

func (v *view) GetStudentSubject(ctx context.Context, regNo, college, code string) (*model.StudentSubject, error) {
	if err := v.enter(ctx, "GetStudentSubject"); err != nil {
		return nil, err
	}
	sub, ok := v.data.subjects[subjectKey{regNo, college, code}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sub, nil
}

func (v *view) ListStudentSubjects(ctx context.Context, regNo, college string) ([]model.StudentSubject, error) {
	if err := v.enter(ctx, "ListStudentSubjects"); err != nil {
		return nil, err
	}
	var out []model.StudentSubject
	for k, sub := range v.data.subjects {
		if k.regNo == regNo && k.college == college {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	return out, nil
}

func (v *view) GetEvaluator(ctx context.Context, regNo string) (*model.Evaluator, error) {
	if err := v.enter(ctx, "GetEvaluator"); err != nil {
		return nil, err
	}
	ev, ok := v.data.evaluators[regNo]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ev, nil
}

func (v *view) ListEvaluators(ctx context.Context, college string) ([]model.Evaluator, error) {
	if err := v.enter(ctx, "ListEvaluators"); err != nil {
		return nil, err
	}
	var out []model.Evaluator
	for _, ev := range v.data.evaluators {
		if college == "" || ev.CollegeName == college {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegNo < out[j].RegNo })
	return out, nil
}

func (v *view) ListEvaluatorSubjects(ctx context.Context, regNo string) ([]model.EvaluatorSubject, error) {
	if err := v.enter(ctx, "ListEvaluatorSubjects"); err != nil {
		return nil, err
	}
	var out []model.EvaluatorSubject
	for _, sub := range v.data.evSubjects {
		if sub.EvaluatorRegNo == regNo {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	return out, nil
}

func assignedTo(q model.Request, regNo string) bool {
	return q.EvaluatorRegNo != nil && *q.EvaluatorRegNo == regNo
}

func inQueue(q model.Request, ev *model.Evaluator) bool {
	if assignedTo(q, ev.RegNo) {
		return q.Status == model.StatusPending || q.Status == model.StatusUnderReview
	}
	return q.EvaluatorRegNo == nil && q.Status == model.StatusPending && q.StudentCollege == ev.CollegeName
}

func dayBounds(now time.Time) (yesterday, today, tomorrow time.Time) {
	y, m, d := now.Date()
	today = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -1), today, today.AddDate(0, 0, 1)
}

func within(t *time.Time, from, to time.Time) bool {
	return t != nil && !t.Before(from) && t.Before(to)
}

func (v *view) GetEvaluatorStats(ctx context.Context, ev *model.Evaluator, now time.Time) (*model.EvaluatorStats, error) {
	if err := v.enter(ctx, "GetEvaluatorStats"); err != nil {
		return nil, err
	}
	yesterday, today, tomorrow := dayBounds(now)
	cutoff := now.Add(-48 * time.Hour)

	st := &model.EvaluatorStats{}
	var hours float64
	var completed int
	for _, q := range v.data.requests {
		mine := assignedTo(q, ev.RegNo)
		if !mine && !(q.EvaluatorRegNo == nil && q.StudentCollege == ev.CollegeName) {
			continue
		}
		switch q.Status {
		case model.StatusPending:
			st.PendingReview++
			if mine && (q.Urgency == model.UrgencyCritical || q.Urgency == model.UrgencyHigh) {
				st.HighPriority++
			}
		case model.StatusUnderReview:
			if mine {
				st.UnderReview++
				if q.RequestDate.Before(cutoff) {
					st.FinalStage++
				}
			}
		case model.StatusCompleted:
			if !mine {
				continue
			}
			if within(q.CompletionDate, today, tomorrow) {
				st.CompletedToday++
			}
			if within(q.CompletionDate, yesterday, today) {
				st.CompletedYesterday++
			}
			if q.CompletionDate != nil {
				hours += q.CompletionDate.Sub(q.RequestDate).Hours()
				completed++
			}
		}
	}
	if completed > 0 {
		st.AverageHours = hours / float64(completed)
	}
	return st, nil
}

func (v *view) ListEvaluatorQueue(ctx context.Context, ev *model.Evaluator, limit int) ([]model.Request, error) {
	if err := v.enter(ctx, "ListEvaluatorQueue"); err != nil {
		return nil, err
	}
	var out []model.Request
	for _, q := range v.data.requests {
		if inQueue(q, ev) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if li, lj := out[i].Urgency.Level(), out[j].Urgency.Level(); li != lj {
			return li < lj
		}
		return newerFirst(out[i], out[j])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *view) RefreshEvaluatorCounters(ctx context.Context, college string, now time.Time) error {
	if err := v.enter(ctx, "RefreshEvaluatorCounters"); err != nil {
		return err
	}
	_, today, tomorrow := dayBounds(now)
	for regNo, ev := range v.data.evaluators {
		if college != "" && ev.CollegeName != college {
			continue
		}
		ev.PendingReviewRequests, ev.UnderReviewRequests, ev.CompletedTodayRequests = 0, 0, 0
		var hours float64
		var completed int
		for _, q := range v.data.requests {
			if !assignedTo(q, regNo) {
				continue
			}
			switch q.Status {
			case model.StatusPending:
				ev.PendingReviewRequests++
			case model.StatusUnderReview:
				ev.UnderReviewRequests++
			case model.StatusCompleted:
				if within(q.CompletionDate, today, tomorrow) {
					ev.CompletedTodayRequests++
				}
				if q.CompletionDate != nil {
					hours += q.CompletionDate.Sub(q.RequestDate).Hours()
					completed++
				}
			}
		}
		ev.AvgTimeToComplete = 0
		if completed > 0 {
			ev.AvgTimeToComplete = math.Round(hours/float64(completed)*10) / 10
		}
		at := now
		ev.CountersUpdatedAt = &at
		v.data.evaluators[regNo] = ev
	}
	return nil
}

func checkRequest(q *model.Request) error {
	switch q.Status {
	case model.StatusPending, model.StatusUnderReview, model.StatusCompleted, model.StatusRejected:
	default:
		return fmt.Errorf("%w: status %q", ErrConstraint, q.Status)
	}
	if !q.Urgency.Valid() {
		return fmt.Errorf("%w: urgency %q", ErrConstraint, q.Urgency)
	}
	return nil
}

func (v *view) InsertRequest(ctx context.Context, q *model.Request) error {
	if err := v.enter(ctx, "InsertRequest"); err != nil {
		return err
	}
	if err := checkRequest(q); err != nil {
		return err
	}
	q.ID = v.data.nextID
	v.data.nextID++
	q.RequestDate = v.s.now()
	v.data.requests[q.ID] = *q
	return nil
}

func (v *view) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	if err := v.enter(ctx, "GetRequest"); err != nil {
		return nil, err
	}
	q, ok := v.data.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (v *view) GetRequestForUpdate(ctx context.Context, id int64) (*model.Request, error) {
	if err := v.enter(ctx, "GetRequestForUpdate"); err != nil {
		return nil, err
	}
	q, ok := v.data.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func newerFirst(a, b model.Request) bool {
	if !a.RequestDate.Equal(b.RequestDate) {
		return a.RequestDate.After(b.RequestDate)
	}
	return a.ID > b.ID
}

func (v *view) ListRequests(ctx context.Context, f model.RequestFilter) ([]model.Request, error) {
	if err := v.enter(ctx, "ListRequests"); err != nil {
		return nil, err
	}
	var out []model.Request
	for _, q := range v.data.requests {
		switch {
		case f.StudentRegNo != "" && q.StudentRegNo != f.StudentRegNo,
			f.StudentCollege != "" && q.StudentCollege != f.StudentCollege,
			f.EvaluatorRegNo != "" && !assignedTo(q, f.EvaluatorRegNo),
			f.College != "" && q.StudentCollege != f.College,
			f.Status != "" && q.Status != f.Status:
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i], out[j]) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (v *view) UpdateRequestReview(ctx context.Context, q *model.Request) error {
	if err := v.enter(ctx, "UpdateRequestReview"); err != nil {
		return err
	}
	cur, ok := v.data.requests[q.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := checkRequest(q); err != nil {
		return err
	}
	cur.Status = q.Status
	cur.Urgency = q.Urgency
	cur.EvaluatorCollege = q.EvaluatorCollege
	cur.EvaluatorRegNo = q.EvaluatorRegNo
	cur.UpdatedMarks = q.UpdatedMarks
	cur.EvaluatorComments = q.EvaluatorComments
	cur.CompletionDate = q.CompletionDate
	v.data.requests[q.ID] = cur
	return nil
}

func (v *view) UpdateRequestUrgency(ctx context.Context, id int64, urgency model.Urgency) error {
	if err := v.enter(ctx, "UpdateRequestUrgency"); err != nil {
		return err
	}
	q, ok := v.data.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !urgency.Valid() {
		return fmt.Errorf("%w: urgency %q", ErrConstraint, urgency)
	}
	q.Urgency = urgency
	v.data.requests[id] = q
	return nil
}

func (v *view) UpdateRequestUrgencies(ctx context.Context, updates []model.UrgencyUpdate) error {
	if err := v.enter(ctx, "UpdateRequestUrgencies"); err != nil {
		return err
	}
	for _, u := range updates {
		q, ok := v.data.requests[u.ID]
		if !ok {
			return fmt.Errorf("request %d: %w", u.ID, repository.ErrNotFound)
		}
		if !u.Urgency.Valid() {
			return fmt.Errorf("%w: urgency %q", ErrConstraint, u.Urgency)
		}
		q.Urgency = u.Urgency
		v.data.requests[u.ID] = q
	}
	return nil
}

func (v *view) GetInstituteAdminByEmail(ctx context.Context, email string) (*model.InstituteAdmin, error) {
	if err := v.enter(ctx, "GetInstituteAdminByEmail"); err != nil {
		return nil, err
	}
	a, ok := v.data.admins[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (v *view) CreateInstituteAdmin(ctx context.Context, a *model.InstituteAdmin) error {
	if err := v.enter(ctx, "CreateInstituteAdmin"); err != nil {
		return err
	}
	if _, ok := v.data.admins[a.Email]; ok {
		return repository.ErrDuplicate
	}
	a.ID = v.data.nextAdmin
	v.data.nextAdmin++
	a.CreatedAt = v.s.now()
	v.data.admins[a.Email] = *a
	return nil
}
