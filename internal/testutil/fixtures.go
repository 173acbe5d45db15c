package testutil

import (
	"context"
	"fmt"

	"github.com/roviproject/rovi-backend/pkg/models"
	"github.com/google/uuid"
)

// GenerateTestEmail returns a unique email so parallel tests never collide
// on the users.email unique index.
func GenerateTestEmail() string {
	return fmt.Sprintf("test-%s@example.com", uuid.New().String()[:8])
}

// GenerateTestUsername returns a unique username.
func GenerateTestUsername() string {
	return fmt.Sprintf("user-%s", uuid.New().String()[:8])
}

// CreateTestUser inserts a user row with synthesized MQTT credentials.
func (tdb *TestDB) CreateTestUser(ctx context.Context, email, username string) *models.User {
	tdb.t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: "test-password",
		MQTTUser: "mqtt-" + uuid.New().String()[:8],
		MQTTPass: "pass-" + uuid.New().String()[:8],
	}
	err := tdb.DB.QueryRowContext(ctx, `
		INSERT INTO users (id, username, email, password, mqtt_user, mqtt_pass)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, user.ID, user.Username, user.Email, user.Password, user.MQTTUser, user.MQTTPass).Scan(&user.CreatedAt)
	if err != nil {
		tdb.t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// DeleteTestUser removes a user and everything hanging off its email.
func (tdb *TestDB) DeleteTestUser(ctx context.Context, email string) {
	tdb.t.Helper()
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM controllables WHERE user_email = $1", email)
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM devices WHERE user_email = $1", email)
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM otp_logins WHERE email = $1", email)
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM registrations WHERE email = $1", email)
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM users WHERE email = $1", email)
}

// DeleteTestRegistrations removes registration rows for an email that never
// became a user.
func (tdb *TestDB) DeleteTestRegistrations(ctx context.Context, email string) {
	tdb.t.Helper()
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM registrations WHERE email = $1", email)
}

// CreateTestDevice inserts a device row with fixed credentials.
func (tdb *TestDB) CreateTestDevice(ctx context.Context, userEmail, name, key, pass string) *models.Device {
	tdb.t.Helper()

	device := &models.Device{
		ID:         uuid.New(),
		DeviceName: name,
		UserEmail:  userEmail,
		DeviceKey:  key,
		DevicePass: pass,
		Status:     models.DeviceStatusKnown,
	}
	err := tdb.DB.QueryRowContext(ctx, `
		INSERT INTO devices (id, device_name, user_email, device_key, device_pass, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, device.ID, device.DeviceName, device.UserEmail, device.DeviceKey, device.DevicePass, device.Status).Scan(&device.CreatedAt)
	if err != nil {
		tdb.t.Fatalf("Failed to create test device: %v", err)
	}
	return device
}
