package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/roviproject/rovi-backend/internal/server/services"
	"github.com/roviproject/rovi-backend/pkg/models"
	"github.com/roviproject/rovi-backend/pkg/utils"
	"github.com/google/uuid"
)

// UserHandler serves every /api/user endpoint: the registration state
// machine, both login flows and the authenticated device/controllable
// creation calls.
type UserHandler struct {
	onboarding    *services.OnboardingService
	devices       *services.DeviceService
	controllables *services.ControllableService
}

func NewUserHandler(
	onboarding *services.OnboardingService,
	devices *services.DeviceService,
	controllables *services.ControllableService,
) *UserHandler {
	return &UserHandler{
		onboarding:    onboarding,
		devices:       devices,
		controllables: controllables,
	}
}

func (h *UserHandler) Registration(w http.ResponseWriter, r *http.Request) {
	var body models.UserRegistrationBody
	if err := decodeJSON(r, &body); err != nil {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	if !utils.IsValidEmail(body.Email) {
		respond(w, http.StatusBadRequest, "Email is not valid!", false, nil)
		return
	}

	reg, err := h.onboarding.StartRegistration(r.Context(), body.Email)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDuplicatesFound):
		respond(w, http.StatusConflict, "There's duplicate found!", false, nil)
		return
	case errors.Is(err, services.ErrMailDelivery):
		respond(w, http.StatusInternalServerError, "There's an error when trying to send email", false, nil)
		return
	default:
		respond(w, http.StatusInternalServerError, "Sorry, there's an unexpected error", false, nil)
		return
	}

	message := fmt.Sprintf("Successfully sent email confirmation to %s!", body.Email)
	respond(w, http.StatusOK, message, true, models.RegistrationData{ID: reg.ID.String()})
}

func (h *UserHandler) ConfirmRegistration(w http.ResponseWriter, r *http.Request) {
	var body models.ConfirmRegistrationBody
	if err := decodeJSON(r, &body); err != nil {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	id, err := uuid.Parse(body.ID)
	if err != nil {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	reg, err := h.onboarding.ConfirmRegistration(r.Context(), id, body.Token)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrUnauthorized):
		respond(w, http.StatusUnauthorized, "Wrong token.", false, nil)
		return
	default:
		respond(w, http.StatusInternalServerError, "There's an unexpected error.", false, nil)
		return
	}

	respond(w, http.StatusOK, "Successfully verify the registration token!", true, models.VerifyData{
		Token: reg.SetupToken,
		ID:    reg.ID.String(),
	})
}

func (h *UserHandler) SetupRegistration(w http.ResponseWriter, r *http.Request) {
	var body models.SetupRegistrationBody
	if err := decodeJSON(r, &body); err != nil {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	id, err := uuid.Parse(body.ID)
	if err != nil {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	user, err := h.onboarding.SetupAccount(r.Context(), id, body.Token, body.Username, body.Password)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrUnauthorized):
		respond(w, http.StatusUnauthorized, "Wrong token.", false, nil)
		return
	case errors.Is(err, models.ErrDuplicatesFound):
		respond(w, http.StatusConflict, "Duplicates found.", false, nil)
		return
	default:
		respond(w, http.StatusInternalServerError, "There's an unexpected error.", false, nil)
		return
	}

	token, err := utils.GenerateUserToken(user.Email, os.Getenv("JWT_TOKEN"), utils.SessionTTL)
	if err != nil {
		respond(w, http.StatusInternalServerError, "There's an unexpected error.", false, nil)
		return
	}
	setSessionCookie(w, token)

	respond(w, http.StatusOK, "Successfully register!", true, models.UserData{UserData: user})
}

func (h *UserHandler) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	var body models.PasswordLoginBody
	if err := decodeJSON(r, &body); err != nil {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	user, err := h.onboarding.PasswordLogin(r.Context(), body.Username, body.Password)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrUserNotFound):
		respond(w, http.StatusNotFound, "User not found.", false, nil)
		return
	case errors.Is(err, models.ErrUnauthorized):
		respond(w, http.StatusUnauthorized, "Unauthorized.", false, nil)
		return
	default:
		respond(w, http.StatusInternalServerError, "There's an unexpected error.", false, nil)
		return
	}

	token, err := utils.GenerateUserToken(user.Email, os.Getenv("JWT_TOKEN"), utils.SessionTTL)
	if err != nil {
		respond(w, http.StatusInternalServerError, "There's an unexpected error.", false, nil)
		return
	}
	setSessionCookie(w, token)

	respond(w, http.StatusOK, "Successfully login.", true, models.UserData{UserData: user})
}

func (h *UserHandler) OTPLogin(w http.ResponseWriter, r *http.Request) {
	var body models.OTPLoginBody
	if err := decodeJSON(r, &body); err != nil {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	_, err := h.onboarding.OTPLogin(r.Context(), body.Email)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDuplicatesFound):
		respond(w, http.StatusConflict, "Duplicated data found.", false, nil)
		return
	case errors.Is(err, services.ErrMailDelivery):
		respond(w, http.StatusInternalServerError, "There's an error when trying to send email", false, nil)
		return
	default:
		respond(w, http.StatusInternalServerError, "There's an error when trying to create otp code", false, nil)
		return
	}

	respond(w, http.StatusOK, "Please, check your gmail message", true, nil)
}

func (h *UserHandler) OTPLoginVerify(w http.ResponseWriter, r *http.Request) {
	var body models.OTPLoginVerifyBody
	if err := decodeJSON(r, &body); err != nil {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	err := h.onboarding.OTPVerify(r.Context(), body.Email, body.OTP)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrUnauthorized):
		respond(w, http.StatusUnauthorized, "Unauthorized token", false, nil)
		return
	default:
		respond(w, http.StatusInternalServerError, "There's an error when checking the token", false, nil)
		return
	}

	token, err := utils.GenerateUserToken(body.Email, os.Getenv("JWT_TOKEN"), utils.SessionTTL)
	if err != nil {
		respond(w, http.StatusInternalServerError, "There's an error when checking the token", false, nil)
		return
	}
	setSessionCookie(w, token)

	respond(w, http.StatusOK, "Email verified", true, nil)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.onboarding.GetUserByEmail(r.Context(), GetUserEmail(r))
	switch {
	case err == nil:
	case errors.Is(err, models.ErrUserNotFound):
		respond(w, http.StatusNotFound, "User not found.", false, nil)
		return
	default:
		respond(w, http.StatusInternalServerError, "There's an unexpected error.", false, nil)
		return
	}

	respond(w, http.StatusOK, "Successfully get user data", true, models.UserData{UserData: user})
}

func (h *UserHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var body models.CreateDeviceBody
	if err := decodeJSON(r, &body); err != nil {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	device, err := h.devices.CreateDevice(r.Context(), body.DeviceName, GetUserEmail(r))
	if err != nil {
		respond(w, http.StatusInternalServerError, "There's an unexpected error.", false, nil)
		return
	}

	respond(w, http.StatusOK, "Successfully create device!", true, models.DeviceData{DeviceData: device})
}

func (h *UserHandler) CreateControllable(w http.ResponseWriter, r *http.Request) {
	var body models.CreateControllableBody
	if err := decodeJSON(r, &body); err != nil {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	category, ok := models.ParseControllableCategory(body.ControllableCategory)
	if !ok {
		respond(w, http.StatusBadRequest, "Bad Request Body", false, nil)
		return
	}

	controllable, err := h.controllables.CreateControllable(r.Context(), body.DeviceID, body.ControllableName, category, GetUserEmail(r))
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDuplicatesFound):
		respond(w, http.StatusConflict, "Duplicates found.", false, nil)
		return
	default:
		respond(w, http.StatusInternalServerError, "There's an unexpected error.", false, nil)
		return
	}

	respond(w, http.StatusOK, "Successfully create device!", true, models.ControllableData{ControllableData: controllable})
}
