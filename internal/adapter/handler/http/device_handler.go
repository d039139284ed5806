package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/middleware/auth"
	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
)

type DeviceHandler struct {
	devices DeviceUsecase
	logger  *zap.Logger
}

func NewDeviceHandler(devices DeviceUsecase, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, logger: logger}
}

type UpdateDeviceRequest struct {
	DeviceID string `json:"device_id" validate:"required,max=200"`
}

// UpdateDevice binds the caller's account to a device, typically after login
// PUT /api/v1/devices
func (h *DeviceHandler) UpdateDevice(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req UpdateDeviceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.devices.UpdateUserDevice(c.Request().Context(), user.UserID.Hex(), req.DeviceID); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, http.StatusOK, "Device updated", echo.Map{"device_id": req.DeviceID})
}

// ValidateDevice reports whether the request's device holds the caller's session
// GET /api/v1/devices/validate
func (h *DeviceHandler) ValidateDevice(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return unauthenticated(c)
	}

	decision, err := h.devices.ValidateDeviceAccess(c.Request().Context(), user.UserID.Hex(), user.DeviceID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if !decision.Valid {
		return respondFail(c, http.StatusForbidden, apperrors.ErrPolicyDenied, decision.Reason, "Device not authorized")
	}
	return respondOK(c, http.StatusOK, "Device authorized", decision)
}
