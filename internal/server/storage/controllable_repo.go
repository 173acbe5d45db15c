package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roviproject/rovi-backend/pkg/models"
)

type ControllableRepository struct {
	db *DB
}

func NewControllableRepository(db *DB) *ControllableRepository {
	return &ControllableRepository{db: db}
}

func (r *ControllableRepository) Create(ctx context.Context, c *models.Controllable) error {
	query := `
		INSERT INTO controllables (id, controllable_name, device_id, user_email, category, topic_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		c.ID, c.ControllableName, c.DeviceID, c.UserEmail, c.Category, c.TopicName,
	).Scan(&c.CreatedAt)
}

func (r *ControllableRepository) GetByName(ctx context.Context, name string) (*models.Controllable, error) {
	var c models.Controllable
	query := `SELECT * FROM controllables WHERE controllable_name = $1`
	err := r.db.GetContext(ctx, &c, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
