package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/roviproject/rovi-backend/pkg/models"
	"github.com/google/uuid"
)

type OTPRepository struct {
	db *DB
}

func NewOTPRepository(db *DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Create inserts a new OTP row. The unique index on email enforces the
// single-flight rule: one outstanding OTP per email.
func (r *OTPRepository) Create(ctx context.Context, otp *models.OTPLogin) error {
	query := `
		INSERT INTO otp_logins (id, email, confirmation_token)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		otp.ID, otp.Email, otp.ConfirmationToken,
	).Scan(&otp.CreatedAt)
}

func (r *OTPRepository) GetByEmailAndCode(ctx context.Context, email, code string) (*models.OTPLogin, error) {
	var otp models.OTPLogin
	query := `SELECT * FROM otp_logins WHERE email = $1 AND confirmation_token = $2`
	err := r.db.GetContext(ctx, &otp, query, email, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &otp, nil
}

func (r *OTPRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM otp_logins WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *OTPRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) error {
	query := `DELETE FROM otp_logins WHERE created_at < $1`
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := r.db.ExecContext(ctx, query, cutoff)
	return err
}
