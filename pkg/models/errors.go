package models

import "errors"

// Sentinel errors shared across services and handlers. Handlers map these
// onto HTTP statuses; services return them wrapped or bare.
var (
	ErrUnknown              = errors.New("unknown error")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicatesFound      = errors.New("duplicates found")
	ErrDeviceNotFound       = errors.New("device not found")
	ErrControllableNotFound = errors.New("controllable not found")
)
