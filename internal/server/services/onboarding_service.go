package services

import (
	"context"
	"fmt"
	"time"

	"github.com/roviproject/rovi-backend/internal/server/storage"
	"github.com/roviproject/rovi-backend/pkg/models"
	"github.com/roviproject/rovi-backend/pkg/utils"
	"github.com/google/uuid"
)

const (
	// tokenMailBody carries the confirmation or OTP token to the user.
	tokenMailBody = "Hi there, Thank you for signing up to ROVI Project! Please use token below to proceed:<br /><b>TOKEN:[%s]</b>"

	confirmationMailSubject = "Account Confirmation"
	otpMailSubject          = "OTP Login Confirmation"

	// registrationTTL bounds how long an unconfirmed registration survives.
	registrationTTL = 24 * time.Hour
	// otpTTL bounds how long an OTP stays redeemable; it also releases the
	// one-outstanding-OTP-per-email lock.
	otpTTL = 5 * time.Minute
)

// OnboardingService drives the registration state machine
// (New -> Confirmed -> Consumed) and the two login flows.
type OnboardingService struct {
	users         *storage.UserRepository
	registrations *storage.RegistrationRepository
	otps          *storage.OTPRepository
	mailer        Mailer
}

func NewOnboardingService(
	users *storage.UserRepository,
	registrations *storage.RegistrationRepository,
	otps *storage.OTPRepository,
	mailer Mailer,
) *OnboardingService {
	return &OnboardingService{
		users:         users,
		registrations: registrations,
		otps:          otps,
		mailer:        mailer,
	}
}

// StartRegistration creates a fresh registration for an email with no
// existing user and mails the confirmation token. The duplicate pre-read is
// a courtesy; concurrent duplicates are resolved at setup time by the
// uniqueness constraints on users.
func (s *OnboardingService) StartRegistration(ctx context.Context, email string) (*models.Registration, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, models.ErrDuplicatesFound
	}

	confirmationToken, err := utils.GenerateShortToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate confirmation token: %w", err)
	}
	setupToken, err := utils.GenerateShortToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate setup token: %w", err)
	}

	reg := &models.Registration{
		ID:                uuid.New(),
		Email:             email,
		ConfirmationToken: confirmationToken,
		SetupToken:        setupToken,
		Confirmed:         false,
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("failed to insert registration: %w", err)
	}

	// A failed send leaves the registration row in place; the caller sees an
	// operational error and the user retries.
	body := fmt.Sprintf(tokenMailBody, reg.ConfirmationToken)
	if err := s.mailer.Send(reg.Email, confirmationMailSubject, body); err != nil {
		return nil, err
	}

	return reg, nil
}

// ConfirmRegistration validates the confirmation token and flips the row to
// confirmed. Re-presenting a valid token succeeds; any mismatch is a generic
// wrong-token failure. The returned registration carries the setup token;
// this is the single point where it leaves the system toward the user.
func (s *OnboardingService) ConfirmRegistration(ctx context.Context, id uuid.UUID, token string) (*models.Registration, error) {
	reg, err := s.registrations.GetByConfirmationToken(ctx, id, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	if reg == nil {
		return nil, models.ErrUnauthorized
	}

	if err := s.registrations.MarkConfirmed(ctx, id, token); err != nil {
		return nil, fmt.Errorf("failed to confirm registration: %w", err)
	}
	reg.Confirmed = true

	return reg, nil
}

// SetupAccount consumes the setup token and materializes a user. The MQTT
// broker credentials are synthesized here, at the moment the account comes
// into existence.
func (s *OnboardingService) SetupAccount(ctx context.Context, id uuid.UUID, setupToken, username, password string) (*models.User, error) {
	reg, err := s.registrations.GetBySetupToken(ctx, id, setupToken)
	if err != nil {
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	if reg == nil {
		return nil, models.ErrUnauthorized
	}

	duplicate, err := s.users.GetByUsernameOrEmail(ctx, username, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate user: %w", err)
	}
	if duplicate != nil {
		return nil, models.ErrDuplicatesFound
	}

	mqttUser, err := utils.GenerateLongToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mqtt user: %w", err)
	}
	mqttPass, err := utils.GenerateLongToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mqtt pass: %w", err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    reg.Email,
		Password: password,
		MQTTUser: mqttUser,
		MQTTPass: mqttPass,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, models.ErrDuplicatesFound
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// PasswordLogin authenticates by exact username and password match.
func (s *OnboardingService) PasswordLogin(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	if user.Password != password {
		return nil, models.ErrUnauthorized
	}
	return user, nil
}

// OTPLogin creates an outstanding OTP for the email and mails it. A second
// request while one is outstanding fails as a duplicate until the first code
// is consumed or expires.
func (s *OnboardingService) OTPLogin(ctx context.Context, email string) (*models.OTPLogin, error) {
	code, err := utils.GenerateShortToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp code: %w", err)
	}

	otp := &models.OTPLogin{
		ID:                uuid.New(),
		Email:             email,
		ConfirmationToken: code,
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, models.ErrDuplicatesFound
		}
		return nil, fmt.Errorf("failed to insert otp: %w", err)
	}

	body := fmt.Sprintf(tokenMailBody, otp.ConfirmationToken)
	if err := s.mailer.Send(otp.Email, otpMailSubject, body); err != nil {
		return nil, err
	}

	return otp, nil
}

// OTPVerify accepts only an exact (email, otp) match and consumes the row.
func (s *OnboardingService) OTPVerify(ctx context.Context, email, code string) error {
	otp, err := s.otps.GetByEmailAndCode(ctx, email, code)
	if err != nil {
		return fmt.Errorf("failed to find otp: %w", err)
	}
	if otp == nil {
		return models.ErrUnauthorized
	}

	if err := s.otps.Delete(ctx, otp.ID); err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}
	return nil
}

// GetUserByEmail resolves the session identity into a user row.
func (s *OnboardingService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

// CleanupExpired purges unconfirmed registrations past their retention
// window and stale OTP rows.
func (s *OnboardingService) CleanupExpired(ctx context.Context) error {
	if err := s.registrations.DeleteExpiredUnconfirmed(ctx, registrationTTL); err != nil {
		return fmt.Errorf("failed to cleanup registrations: %w", err)
	}
	if err := s.otps.DeleteExpired(ctx, otpTTL); err != nil {
		return fmt.Errorf("failed to cleanup otps: %w", err)
	}
	return nil
}
