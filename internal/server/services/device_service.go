package services

import (
	"context"
	"fmt"

	"github.com/roviproject/rovi-backend/internal/server/storage"
	"github.com/roviproject/rovi-backend/pkg/models"
	"github.com/roviproject/rovi-backend/pkg/utils"
	"github.com/google/uuid"
)

// DeviceService owns the device lifecycle: provisioning credentials,
// tracking online state, verifying credential pairs.
type DeviceService struct {
	devices *storage.DeviceRepository
}

func NewDeviceService(devices *storage.DeviceRepository) *DeviceService {
	return &DeviceService{devices: devices}
}

// CreateDevice mints the credential pair and returns the full row so the
// owning user can provision the physical device. This is the only time the
// pass leaves the system alongside the key.
func (s *DeviceService) CreateDevice(ctx context.Context, deviceName, ownerEmail string) (*models.Device, error) {
	deviceKey, err := utils.GenerateLongToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate device key: %w", err)
	}
	devicePass, err := utils.GenerateLongToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate device pass: %w", err)
	}

	device := &models.Device{
		ID:         uuid.New(),
		DeviceName: deviceName,
		UserEmail:  ownerEmail,
		DeviceKey:  deviceKey,
		DevicePass: devicePass,
		Status:     models.DeviceStatusKnown,
		LastOnline: nil,
	}
	if err := s.devices.Create(ctx, device); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, models.ErrDuplicatesFound
		}
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	return device, nil
}

// InitializeDevice conditionally updates the matching row and re-reads it.
// If the re-read misses after the update landed, the caller still sees
// DeviceNotFound.
func (s *DeviceService) InitializeDevice(ctx context.Context, deviceKey, devicePass string) (*models.Device, error) {
	matched, err := s.devices.MarkOnline(ctx, deviceKey, devicePass)
	if err != nil {
		return nil, fmt.Errorf("failed to update device: %w", err)
	}
	if matched == 0 {
		return nil, models.ErrDeviceNotFound
	}

	device, err := s.devices.GetByKeyAndPass(ctx, deviceKey, devicePass)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read device: %w", err)
	}
	if device == nil {
		return nil, models.ErrDeviceNotFound
	}
	return device, nil
}

// VerifyDevice is the read-only credential check.
func (s *DeviceService) VerifyDevice(ctx context.Context, deviceKey, devicePass string) (*models.Device, error) {
	device, err := s.devices.GetByKeyAndPass(ctx, deviceKey, devicePass)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if device == nil {
		return nil, models.ErrDeviceNotFound
	}
	return device, nil
}
