package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/roviproject/rovi-backend/internal/server/services"
	"github.com/roviproject/rovi-backend/pkg/models"
)

// DeviceHandler serves the two device-facing endpoints. Devices are dumb
// clients, so both respond with plain text instead of the JSON envelope.
type DeviceHandler struct {
	devices       *services.DeviceService
	controllables *services.ControllableService
}

func NewDeviceHandler(devices *services.DeviceService, controllables *services.ControllableService) *DeviceHandler {
	return &DeviceHandler{
		devices:       devices,
		controllables: controllables,
	}
}

func (h *DeviceHandler) Initialization(w http.ResponseWriter, r *http.Request) {
	var body models.DeviceInitializationBody
	if err := decodeJSON(r, &body); err != nil {
		respondText(w, http.StatusBadRequest, "ERROR")
		return
	}

	_, err := h.devices.InitializeDevice(r.Context(), body.DeviceKey, body.DevicePass)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDeviceNotFound):
		respondText(w, http.StatusNotFound, "NOT FOUND")
		return
	default:
		respondText(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondText(w, http.StatusOK, "OK")
}

func (h *DeviceHandler) GetControllable(w http.ResponseWriter, r *http.Request) {
	var body models.DeviceGetControllableBody
	if err := decodeJSON(r, &body); err != nil {
		respondText(w, http.StatusBadRequest, "There's an error.")
		return
	}

	coords, err := h.controllables.GetCoordinates(r.Context(), body.ControllableName, body.DeviceKey, body.DevicePass)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDeviceNotFound):
		respondText(w, http.StatusNotFound, "Device not found.")
		return
	case errors.Is(err, models.ErrControllableNotFound):
		respondText(w, http.StatusNotFound, "Controllable not found.")
		return
	case errors.Is(err, models.ErrUnauthorized):
		respondText(w, http.StatusUnauthorized, "Unauthorized.")
		return
	case errors.Is(err, models.ErrUserNotFound):
		respondText(w, http.StatusNotFound, "User not found.")
		return
	default:
		respondText(w, http.StatusInternalServerError, "There's an error.")
		return
	}

	respondText(w, http.StatusOK, fmt.Sprintf("%s,%s,%s", coords.TopicName, coords.MQTTUser, coords.MQTTPass))
}
