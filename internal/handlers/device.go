// internal/handlers/device.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/database"
	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/utils"
	"github.com/javajoker/reelshop/internal/workspace"
)

type DeviceHandler struct {
	devices  *database.DeviceRepository
	registry *workspace.Registry
	tokenTTL int
}

type RegisterDeviceRequest struct {
	Name string `json:"name" validate:"max=100"`
}

func NewDeviceHandler(devices *database.DeviceRepository, registry *workspace.Registry, tokenTTLHours int) *DeviceHandler {
	return &DeviceHandler{
		devices:  devices,
		registry: registry,
		tokenTTL: tokenTTLHours,
	}
}

// POST /devices
func (h *DeviceHandler) Register(c *gin.Context) {
	var req RegisterDeviceRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	device, err := h.devices.Create(req.Name, c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateDeviceToken(device.ID, h.tokenTTL)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(utils.GetLangFromContext(c), i18n.KeyDeviceRegistered),
		"device":     device,
		"token":      token,
		"token_type": "Bearer",
		"expires_in": h.tokenTTL * 3600,
	})
}

// GET /devices/current
func (h *DeviceHandler) Current(c *gin.Context) {
	deviceID, _ := utils.GetDeviceIDFromContext(c)
	device, err := h.devices.Get(deviceID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.devices.Touch(deviceID); err != nil {
		c.Error(err)
	}
	utils.SuccessResponse(c, device)
}

// DELETE /devices/current
func (h *DeviceHandler) Forget(c *gin.Context) {
	deviceID, _ := utils.GetDeviceIDFromContext(c)

	h.registry.Evict(deviceID)
	if err := h.devices.Forget(deviceID); err != nil {
		if errors.Is(err, database.ErrDeviceNotFound) {
			utils.NotFoundResponse(c, "device")
			return
		}
		respondError(c, err)
		return
	}

	utils.SuccessMessageResponse(c, i18n.KeyDeviceForgotten, nil)
}
