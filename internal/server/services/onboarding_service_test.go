package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/roviproject/rovi-backend/internal/testutil"
	"github.com/roviproject/rovi-backend/pkg/models"
	"github.com/google/uuid"
)

// recordingMailer captures outgoing mail instead of sending it.
type recordingMailer struct {
	to      []string
	subject []string
	body    []string
	err     error
}

func (m *recordingMailer) Send(to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.subject = append(m.subject, subject)
	m.body = append(m.body, htmlBody)
	return nil
}

func setupOnboardingService(t *testing.T, tdb *testutil.TestDB, mailer Mailer) *OnboardingService {
	t.Helper()

	repos := tdb.Repositories()
	return NewOnboardingService(repos.Users, repos.Registrations, repos.OTPs, mailer)
}

var mailTokenPattern = regexp.MustCompile(`TOKEN:\[([A-Za-z0-9]{5})\]`)

// --- StartRegistration tests ---

func TestOnboardingService_StartRegistration_Success(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	mailer := &recordingMailer{}
	service := setupOnboardingService(t, tdb, mailer)

	email := testutil.GenerateTestEmail()
	defer tdb.DeleteTestRegistrations(ctx, email)

	reg, err := service.StartRegistration(ctx, email)
	if err != nil {
		t.Fatalf("Failed to start registration: %v", err)
	}

	if reg.ID == uuid.Nil {
		t.Error("Registration should have an ID")
	}

	if reg.Confirmed {
		t.Error("Fresh registration should not be confirmed")
	}

	if len(reg.ConfirmationToken) != 5 {
		t.Errorf("Confirmation token length mismatch: expected 5, got %d", len(reg.ConfirmationToken))
	}

	if reg.SetupToken == reg.ConfirmationToken {
		t.Error("Setup token should be independent of confirmation token")
	}

	// The confirmation token must reach the user by mail, nothing else.
	if len(mailer.to) != 1 {
		t.Fatalf("Expected 1 email sent, got %d", len(mailer.to))
	}
	if mailer.to[0] != email {
		t.Errorf("Mail recipient mismatch: expected %s, got %s", email, mailer.to[0])
	}
	if mailer.subject[0] != "Account Confirmation" {
		t.Errorf("Mail subject mismatch: got %s", mailer.subject[0])
	}
	match := mailTokenPattern.FindStringSubmatch(mailer.body[0])
	if match == nil {
		t.Fatalf("Mail body has no token: %s", mailer.body[0])
	}
	if match[1] != reg.ConfirmationToken {
		t.Errorf("Mailed token mismatch: expected %s, got %s", reg.ConfirmationToken, match[1])
	}
	if strings.Contains(mailer.body[0], reg.SetupToken) {
		t.Error("Setup token must not appear in the confirmation mail")
	}
}

func TestOnboardingService_StartRegistration_DuplicateEmail(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	mailer := &recordingMailer{}
	service := setupOnboardingService(t, tdb, mailer)

	email := testutil.GenerateTestEmail()
	tdb.CreateTestUser(ctx, email, testutil.GenerateTestUsername())
	defer tdb.DeleteTestUser(ctx, email)

	_, err := service.StartRegistration(ctx, email)
	if !errors.Is(err, models.ErrDuplicatesFound) {
		t.Errorf("Expected ErrDuplicatesFound, got %v", err)
	}

	if len(mailer.to) != 0 {
		t.Error("No mail should be sent for a duplicate email")
	}
}

func TestOnboardingService_StartRegistration_MailFailureKeepsRow(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	mailer := &recordingMailer{err: fmt.Errorf("%w: smtp refused", ErrMailDelivery)}
	service := setupOnboardingService(t, tdb, mailer)

	email := testutil.GenerateTestEmail()
	defer tdb.DeleteTestRegistrations(ctx, email)

	_, err := service.StartRegistration(ctx, email)
	if !errors.Is(err, ErrMailDelivery) {
		t.Fatalf("Expected ErrMailDelivery, got %v", err)
	}

	// The registration row survives the failed send.
	var count int
	if err := tdb.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM registrations WHERE email = $1", email).Scan(&count); err != nil {
		t.Fatalf("Failed to count registrations: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected registration row to remain, got %d rows", count)
	}
}

// --- ConfirmRegistration tests ---

func TestOnboardingService_ConfirmRegistration_Success(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupOnboardingService(t, tdb, &recordingMailer{})

	email := testutil.GenerateTestEmail()
	defer tdb.DeleteTestRegistrations(ctx, email)

	reg, err := service.StartRegistration(ctx, email)
	if err != nil {
		t.Fatalf("Failed to start registration: %v", err)
	}

	confirmed, err := service.ConfirmRegistration(ctx, reg.ID, reg.ConfirmationToken)
	if err != nil {
		t.Fatalf("Failed to confirm registration: %v", err)
	}

	if !confirmed.Confirmed {
		t.Error("Registration should be confirmed")
	}

	if confirmed.SetupToken != reg.SetupToken {
		t.Errorf("Setup token mismatch: expected %s, got %s", reg.SetupToken, confirmed.SetupToken)
	}

	// Re-presenting the same valid token still succeeds.
	if _, err := service.ConfirmRegistration(ctx, reg.ID, reg.ConfirmationToken); err != nil {
		t.Errorf("Re-confirming with a valid token should succeed, got %v", err)
	}
}

func TestOnboardingService_ConfirmRegistration_WrongToken(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupOnboardingService(t, tdb, &recordingMailer{})

	email := testutil.GenerateTestEmail()
	defer tdb.DeleteTestRegistrations(ctx, email)

	reg, err := service.StartRegistration(ctx, email)
	if err != nil {
		t.Fatalf("Failed to start registration: %v", err)
	}

	_, err = service.ConfirmRegistration(ctx, reg.ID, "wrong")
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for wrong token, got %v", err)
	}

	// Presenting a token against an unknown registration id fails the same way.
	_, err = service.ConfirmRegistration(ctx, uuid.New(), reg.ConfirmationToken)
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for unknown id, got %v", err)
	}
}

// --- SetupAccount tests ---

func TestOnboardingService_SetupAccount_Success(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupOnboardingService(t, tdb, &recordingMailer{})

	email := testutil.GenerateTestEmail()
	username := testutil.GenerateTestUsername()
	defer tdb.DeleteTestUser(ctx, email)

	reg, err := service.StartRegistration(ctx, email)
	if err != nil {
		t.Fatalf("Failed to start registration: %v", err)
	}
	if _, err := service.ConfirmRegistration(ctx, reg.ID, reg.ConfirmationToken); err != nil {
		t.Fatalf("Failed to confirm registration: %v", err)
	}

	user, err := service.SetupAccount(ctx, reg.ID, reg.SetupToken, username, "secret-password")
	if err != nil {
		t.Fatalf("Failed to setup account: %v", err)
	}

	if user.Email != email {
		t.Errorf("Email mismatch: expected %s, got %s", email, user.Email)
	}
	if user.Username != username {
		t.Errorf("Username mismatch: expected %s, got %s", username, user.Username)
	}

	longTokenPattern := regexp.MustCompile(`^[A-Za-z0-9]{4}(-[A-Za-z0-9]{4}){4}$`)
	if !longTokenPattern.MatchString(user.MQTTUser) {
		t.Errorf("MQTT user has unexpected shape: %s", user.MQTTUser)
	}
	if !longTokenPattern.MatchString(user.MQTTPass) {
		t.Errorf("MQTT pass has unexpected shape: %s", user.MQTTPass)
	}
}

func TestOnboardingService_SetupAccount_WrongSetupToken(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupOnboardingService(t, tdb, &recordingMailer{})

	email := testutil.GenerateTestEmail()
	defer tdb.DeleteTestRegistrations(ctx, email)

	reg, err := service.StartRegistration(ctx, email)
	if err != nil {
		t.Fatalf("Failed to start registration: %v", err)
	}

	// The confirmation token does not double as a setup token.
	_, err = service.SetupAccount(ctx, reg.ID, reg.ConfirmationToken, testutil.GenerateTestUsername(), "pw")
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestOnboardingService_SetupAccount_DuplicateUsername(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupOnboardingService(t, tdb, &recordingMailer{})

	takenEmail := testutil.GenerateTestEmail()
	existing := tdb.CreateTestUser(ctx, takenEmail, testutil.GenerateTestUsername())
	defer tdb.DeleteTestUser(ctx, takenEmail)

	email := testutil.GenerateTestEmail()
	defer tdb.DeleteTestRegistrations(ctx, email)

	reg, err := service.StartRegistration(ctx, email)
	if err != nil {
		t.Fatalf("Failed to start registration: %v", err)
	}

	_, err = service.SetupAccount(ctx, reg.ID, reg.SetupToken, existing.Username, "pw")
	if !errors.Is(err, models.ErrDuplicatesFound) {
		t.Errorf("Expected ErrDuplicatesFound for taken username, got %v", err)
	}
}

func TestOnboardingService_SetupAccount_TokenReuse(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupOnboardingService(t, tdb, &recordingMailer{})

	email := testutil.GenerateTestEmail()
	defer tdb.DeleteTestUser(ctx, email)

	reg, err := service.StartRegistration(ctx, email)
	if err != nil {
		t.Fatalf("Failed to start registration: %v", err)
	}

	if _, err := service.SetupAccount(ctx, reg.ID, reg.SetupToken, testutil.GenerateTestUsername(), "pw"); err != nil {
		t.Fatalf("Failed to setup account: %v", err)
	}

	// A second setup with the same token hits the existing user.
	_, err = service.SetupAccount(ctx, reg.ID, reg.SetupToken, testutil.GenerateTestUsername(), "pw")
	if !errors.Is(err, models.ErrDuplicatesFound) {
		t.Errorf("Expected ErrDuplicatesFound on token reuse, got %v", err)
	}
}

// --- PasswordLogin tests ---

func TestOnboardingService_PasswordLogin(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupOnboardingService(t, tdb, &recordingMailer{})

	email := testutil.GenerateTestEmail()
	username := testutil.GenerateTestUsername()
	existing := tdb.CreateTestUser(ctx, email, username)
	defer tdb.DeleteTestUser(ctx, email)

	user, err := service.PasswordLogin(ctx, username, existing.Password)
	if err != nil {
		t.Fatalf("Failed to login: %v", err)
	}
	if user.Email != email {
		t.Errorf("Email mismatch: expected %s, got %s", email, user.Email)
	}

	_, err = service.PasswordLogin(ctx, username, "wrong-password")
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for wrong password, got %v", err)
	}

	_, err = service.PasswordLogin(ctx, "no-such-user", "pw")
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound for unknown username, got %v", err)
	}
}

// --- OTP login tests ---

func TestOnboardingService_OTPLogin_SingleFlight(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	mailer := &recordingMailer{}
	service := setupOnboardingService(t, tdb, mailer)

	email := testutil.GenerateTestEmail()
	defer tdb.DeleteTestUser(ctx, email)

	otp, err := service.OTPLogin(ctx, email)
	if err != nil {
		t.Fatalf("Failed to create otp: %v", err)
	}

	if len(mailer.subject) != 1 || mailer.subject[0] != "OTP Login Confirmation" {
		t.Errorf("OTP mail subject mismatch: %v", mailer.subject)
	}

	// A second outstanding OTP for the same email is rejected.
	_, err = service.OTPLogin(ctx, email)
	if !errors.Is(err, models.ErrDuplicatesFound) {
		t.Errorf("Expected ErrDuplicatesFound for outstanding otp, got %v", err)
	}

	// Consuming the code releases the lock.
	if err := service.OTPVerify(ctx, email, otp.ConfirmationToken); err != nil {
		t.Fatalf("Failed to verify otp: %v", err)
	}
	if _, err := service.OTPLogin(ctx, email); err != nil {
		t.Errorf("OTP login after consume should succeed, got %v", err)
	}
}

func TestOnboardingService_OTPVerify_WrongCode(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupOnboardingService(t, tdb, &recordingMailer{})

	email := testutil.GenerateTestEmail()
	defer tdb.DeleteTestUser(ctx, email)

	otp, err := service.OTPLogin(ctx, email)
	if err != nil {
		t.Fatalf("Failed to create otp: %v", err)
	}

	if err := service.OTPVerify(ctx, email, "wrong"); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for wrong code, got %v", err)
	}

	// A wrong attempt does not consume the code.
	if err := service.OTPVerify(ctx, email, otp.ConfirmationToken); err != nil {
		t.Errorf("Valid code should still verify, got %v", err)
	}

	// The code is gone after a successful verify.
	if err := service.OTPVerify(ctx, email, otp.ConfirmationToken); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for consumed code, got %v", err)
	}
}

// --- GetUserByEmail tests ---

func TestOnboardingService_GetUserByEmail(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupOnboardingService(t, tdb, &recordingMailer{})

	email := testutil.GenerateTestEmail()
	tdb.CreateTestUser(ctx, email, testutil.GenerateTestUsername())
	defer tdb.DeleteTestUser(ctx, email)

	user, err := service.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if user.Email != email {
		t.Errorf("Email mismatch: expected %s, got %s", email, user.Email)
	}

	_, err = service.GetUserByEmail(ctx, testutil.GenerateTestEmail())
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
