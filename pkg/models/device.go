package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceStatusKnown is the status value written on creation and on every
// successful initialization. Anything else means the device has never been
// initialized under the current credentials.
const DeviceStatusKnown = 0

// Device is a physical IoT unit. The (device_key, device_pass) pair is its
// sole authenticator and is provisioned to the hardware by the owning user.
type Device struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	DeviceName string     `json:"device_name" db:"device_name"`
	UserEmail  string     `json:"user_email" db:"user_email"`
	DeviceKey  string     `json:"device_key" db:"device_key"`
	DevicePass string     `json:"device_pass" db:"device_pass"`
	Status     int        `json:"status" db:"status"`
	LastOnline *time.Time `json:"last_online" db:"last_online"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
