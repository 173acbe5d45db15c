package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roviproject/rovi-backend/pkg/models"
)

type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (id, device_name, user_email, device_key, device_pass, status, last_online)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		device.ID, device.DeviceName, device.UserEmail, device.DeviceKey, device.DevicePass,
		device.Status, device.LastOnline,
	).Scan(&device.CreatedAt)
}

func (r *DeviceRepository) GetByKeyAndPass(ctx context.Context, deviceKey, devicePass string) (*models.Device, error) {
	var device models.Device
	query := `SELECT * FROM devices WHERE device_key = $1 AND device_pass = $2`
	err := r.db.GetContext(ctx, &device, query, deviceKey, devicePass)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// ListByUserEmail returns every device provisioned by a user, newest first.
func (r *DeviceRepository) ListByUserEmail(ctx context.Context, email string) ([]models.Device, error) {
	var devices []models.Device
	query := `SELECT * FROM devices WHERE user_email = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &devices, query, email); err != nil {
		return nil, err
	}
	return devices, nil
}

// MarkOnline is the atomic conditional update behind device initialization:
// both credentials must match in the same statement. Returns the number of
// rows updated (0 or 1).
func (r *DeviceRepository) MarkOnline(ctx context.Context, deviceKey, devicePass string) (int64, error) {
	query := `
		UPDATE devices
		SET last_online = NOW(), status = $1
		WHERE device_key = $2 AND device_pass = $3
	`
	result, err := r.db.ExecContext(ctx, query, models.DeviceStatusKnown, deviceKey, devicePass)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
