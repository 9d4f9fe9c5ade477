package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aissms/reeval-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a lookup or targeted update matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on a unique constraint violation.
	ErrDuplicate = errors.New("record already exists")
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store is every persistence operation the services need.
type Store interface {
	GetStudent(ctx context.Context, regNo, college string) (*model.Student, error)
	GetStudentByCredentials(ctx context.Context, regNo, sppuRegNo string) (*model.Student, error)
	ListStudents(ctx context.Context, college string) ([]model.Student, error)
	RecordStudentRequest(ctx context.Context, regNo, college string, requestID int64) error

	GetStudentSubject(ctx context.Context, regNo, college, subjectCode string) (*model.StudentSubject, error)
	ListStudentSubjects(ctx context.Context, regNo, college string) ([]model.StudentSubject, error)

	GetEvaluator(ctx context.Context, regNo string) (*model.Evaluator, error)
	ListEvaluators(ctx context.Context, college string) ([]model.Evaluator, error)
	ListEvaluatorSubjects(ctx context.Context, regNo string) ([]model.EvaluatorSubject, error)
	GetEvaluatorStats(ctx context.Context, ev *model.Evaluator, now time.Time) (*model.EvaluatorStats, error)
	ListEvaluatorQueue(ctx context.Context, ev *model.Evaluator, limit int) ([]model.Request, error)
	RefreshEvaluatorCounters(ctx context.Context, college string, now time.Time) error

	InsertRequest(ctx context.Context, req *model.Request) error
	GetRequest(ctx context.Context, id int64) (*model.Request, error)
	GetRequestForUpdate(ctx context.Context, id int64) (*model.Request, error)
	ListRequests(ctx context.Context, f model.RequestFilter) ([]model.Request, error)
	UpdateRequestReview(ctx context.Context, req *model.Request) error
	UpdateRequestUrgency(ctx context.Context, id int64, urgency model.Urgency) error
	UpdateRequestUrgencies(ctx context.Context, updates []model.UrgencyUpdate) error

	GetInstituteAdminByEmail(ctx context.Context, email string) (*model.InstituteAdmin, error)
	CreateInstituteAdmin(ctx context.Context, a *model.InstituteAdmin) error
}

// TxStore is a Store that can run a function inside a transaction.
// fn receives a Store bound to the transaction; returning an error rolls it back.
type TxStore interface {
	Store
	InTx(ctx context.Context, fn func(Store) error) error
}

// Queries groups the repositories over a single Querier, which is either the
// pool or an open transaction.
type Queries struct {
	*StudentRepository
	*SubjectRepository
	*EvaluatorRepository
	*RequestRepository
	*InstituteAdminRepository
}

// NewQueries binds every repository to db.
func NewQueries(db Querier) *Queries {
	return &Queries{
		StudentRepository:        NewStudentRepository(db),
		SubjectRepository:        NewSubjectRepository(db),
		EvaluatorRepository:      NewEvaluatorRepository(db),
		RequestRepository:        NewRequestRepository(db),
		InstituteAdminRepository: NewInstituteAdminRepository(db),
	}
}

// PgStore is the PostgreSQL-backed TxStore.
type PgStore struct {
	*Queries
	pool *pgxpool.Pool
}

// NewPgStore creates a new PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{Queries: NewQueries(pool), pool: pool}
}

// InTx commits when fn returns nil and rolls back otherwise.
func (s *PgStore) InTx(ctx context.Context, fn func(Store) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(NewQueries(tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
