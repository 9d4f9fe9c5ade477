package repository

import (
	"context"

	"github.com/aissms/reeval-backend/internal/model"
)

// InstituteAdminRepository handles institute staff account data access.
type InstituteAdminRepository struct {
	db Querier
}

// NewInstituteAdminRepository creates a new InstituteAdminRepository.
func NewInstituteAdminRepository(db Querier) *InstituteAdminRepository {
	return &InstituteAdminRepository{db: db}
}

// GetInstituteAdminByEmail retrieves a staff account by its email.
func (r *InstituteAdminRepository) GetInstituteAdminByEmail(ctx context.Context, email string) (*model.InstituteAdmin, error) {
	a := &model.InstituteAdmin{}
	err := r.db.QueryRow(ctx,
		`SELECT id, email, name, college_name, password_hash, created_at
		 FROM institute_admins WHERE email = $1`, email,
	).Scan(&a.ID, &a.Email, &a.Name, &a.CollegeName, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// CreateInstituteAdmin inserts a new staff account.
func (r *InstituteAdminRepository) CreateInstituteAdmin(ctx context.Context, a *model.InstituteAdmin) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO institute_admins (email, name, college_name, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		a.Email, a.Name, a.CollegeName, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}
