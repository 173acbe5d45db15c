package services

import (
	"context"
	"fmt"

	"github.com/roviproject/rovi-backend/internal/server/storage"
	"github.com/roviproject/rovi-backend/pkg/models"
	"github.com/roviproject/rovi-backend/pkg/utils"
	"github.com/google/uuid"
)

// Coordinates is what a device needs to drive a controllable: the MQTT topic
// plus the owning user's broker credentials.
type Coordinates struct {
	TopicName string
	MQTTUser  string
	MQTTPass  string
}

// ControllableService owns the controllable directory and the coordinate
// join used by devices.
type ControllableService struct {
	controllables *storage.ControllableRepository
	devices       *storage.DeviceRepository
	users         *storage.UserRepository
}

func NewControllableService(
	controllables *storage.ControllableRepository,
	devices *storage.DeviceRepository,
	users *storage.UserRepository,
) *ControllableService {
	return &ControllableService{
		controllables: controllables,
		devices:       devices,
		users:         users,
	}
}

// CreateControllable registers a named endpoint under a device. Names are
// globally unique; the device reference is not validated for existence.
func (s *ControllableService) CreateControllable(ctx context.Context, deviceID, name string, category models.ControllableCategory, ownerEmail string) (*models.Controllable, error) {
	existing, err := s.controllables.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing controllable: %w", err)
	}
	if existing != nil {
		return nil, models.ErrDuplicatesFound
	}

	parsedDeviceID, err := uuid.Parse(deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed device id", models.ErrUnknown)
	}

	topicName, err := utils.GenerateLongToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate topic name: %w", err)
	}

	c := &models.Controllable{
		ID:               uuid.New(),
		ControllableName: name,
		DeviceID:         parsedDeviceID,
		UserEmail:        ownerEmail,
		Category:         category,
		TopicName:        topicName,
	}
	if err := s.controllables.Create(ctx, c); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, models.ErrDuplicatesFound
		}
		return nil, fmt.Errorf("failed to create controllable: %w", err)
	}

	return c, nil
}

// GetCoordinates is the only multi-entity join: device credentials resolve a
// controllable name into its topic and the owner's broker credentials. The
// controllable must belong to the authenticated device.
func (s *ControllableService) GetCoordinates(ctx context.Context, controllableName, deviceKey, devicePass string) (*Coordinates, error) {
	device, err := s.devices.GetByKeyAndPass(ctx, deviceKey, devicePass)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if device == nil {
		return nil, models.ErrDeviceNotFound
	}

	controllable, err := s.controllables.GetByName(ctx, controllableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get controllable: %w", err)
	}
	if controllable == nil {
		return nil, models.ErrControllableNotFound
	}
	if controllable.DeviceID != device.ID {
		return nil, models.ErrUnauthorized
	}

	owner, err := s.users.GetByEmail(ctx, device.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	if owner == nil {
		return nil, models.ErrUserNotFound
	}

	return &Coordinates{
		TopicName: controllable.TopicName,
		MQTTUser:  owner.MQTTUser,
		MQTTPass:  owner.MQTTPass,
	}, nil
}
