package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration is an in-flight onboarding record. The confirmation token is
// mailed to the prospective user; the setup token is only revealed once the
// confirmation token has been presented.
type Registration struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	ConfirmationToken string    `json:"-" db:"confirmation_token"`
	SetupToken        string    `json:"-" db:"setup_token"`
	Confirmed         bool      `json:"confirmed" db:"confirmed"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// OTPLogin is a one-shot login code mailed to an existing email. At most one
// row per email may be outstanding at a time.
type OTPLogin struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	ConfirmationToken string    `json:"-" db:"confirmation_token"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
