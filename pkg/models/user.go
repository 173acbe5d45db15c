package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a fully onboarded account. Email is the global identity; the MQTT
// credentials are handed to devices when they resolve controllable
// coordinates.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	MQTTUser  string    `json:"mqtt_user" db:"mqtt_user"`
	MQTTPass  string    `json:"mqtt_pass" db:"mqtt_pass"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
