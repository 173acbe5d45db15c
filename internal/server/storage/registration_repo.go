package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/roviproject/rovi-backend/pkg/models"
	"github.com/google/uuid"
)

type RegistrationRepository struct {
	db *DB
}

func NewRegistrationRepository(db *DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (id, email, confirmation_token, setup_token, confirmed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		reg.ID, reg.Email, reg.ConfirmationToken, reg.SetupToken, reg.Confirmed,
	).Scan(&reg.CreatedAt)
}

func (r *RegistrationRepository) GetByConfirmationToken(ctx context.Context, id uuid.UUID, token string) (*models.Registration, error) {
	var reg models.Registration
	query := `SELECT * FROM registrations WHERE id = $1 AND confirmation_token = $2`
	err := r.db.GetContext(ctx, &reg, query, id, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *RegistrationRepository) GetBySetupToken(ctx context.Context, id uuid.UUID, token string) (*models.Registration, error) {
	var reg models.Registration
	query := `SELECT * FROM registrations WHERE id = $1 AND setup_token = $2`
	err := r.db.GetContext(ctx, &reg, query, id, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

// MarkConfirmed is idempotent: re-presenting a valid confirmation token
// succeeds without observable change.
func (r *RegistrationRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, token string) error {
	query := `UPDATE registrations SET confirmed = TRUE WHERE id = $1 AND confirmation_token = $2`
	_, err := r.db.ExecContext(ctx, query, id, token)
	return err
}

// DeleteExpiredUnconfirmed purges registrations that were never confirmed
// within the retention window. Confirmed rows are kept; the user-email
// uniqueness check prevents their re-use.
func (r *RegistrationRepository) DeleteExpiredUnconfirmed(ctx context.Context, olderThan time.Duration) error {
	query := `DELETE FROM registrations WHERE confirmed = FALSE AND created_at < $1`
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := r.db.ExecContext(ctx, query, cutoff)
	return err
}
