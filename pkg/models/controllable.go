package models

import (
	"time"

	"github.com/google/uuid"
)

// ControllableCategory is the kind of logical endpoint a controllable
// exposes on its device.
type ControllableCategory string

const (
	CategoryButton ControllableCategory = "Button"
	CategorySlider ControllableCategory = "Slider"
	CategorySwitch ControllableCategory = "Switch"
	CategoryLED    ControllableCategory = "LED"
)

// ParseControllableCategory maps a request string onto a known category.
func ParseControllableCategory(s string) (ControllableCategory, bool) {
	switch ControllableCategory(s) {
	case CategoryButton, CategorySlider, CategorySwitch, CategoryLED:
		return ControllableCategory(s), true
	}
	return "", false
}

// Controllable is a named logical endpoint on a device, addressable over
// MQTT via its topic name. Names are unique across the whole directory,
// not per device.
type Controllable struct {
	ID               uuid.UUID            `json:"id" db:"id"`
	ControllableName string               `json:"controllable_name" db:"controllable_name"`
	DeviceID         uuid.UUID            `json:"device_id" db:"device_id"`
	UserEmail        string               `json:"user_email" db:"user_email"`
	Category         ControllableCategory `json:"category" db:"category"`
	TopicName        string               `json:"topic_name" db:"topic_name"`
	CreatedAt        time.Time            `json:"created_at" db:"created_at"`
}
