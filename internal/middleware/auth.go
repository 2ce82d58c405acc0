// internal/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/database"
	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/utils"
	"github.com/javajoker/reelshop/internal/workspace"
)

const contextKeyWorkspace = "workspace"

// DeviceLookup finds registered devices.
type DeviceLookup interface {
	Get(id string) (*models.Device, error)
}

// DeviceRequired authenticates the device token and attaches the device
// workspace to the request. Browsers cannot set headers on websocket
// upgrades, so the token may also arrive as the token query parameter.
func DeviceRequired(registry *workspace.Registry, devices DeviceLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyDeviceInvalidToken))
				c.Abort()
				return
			}
			token = parts[1]
		}
		if token == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyDeviceRequired))
			c.Abort()
			return
		}

		claims, err := utils.ValidateDeviceToken(token)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyDeviceInvalidToken))
			c.Abort()
			return
		}

		if _, err := devices.Get(claims.DeviceID); err != nil {
			if errors.Is(err, database.ErrDeviceNotFound) {
				utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyDeviceNotFound))
			} else {
				logrus.WithError(err).WithField("device_id", claims.DeviceID).Error("Failed to look up device")
				utils.InternalErrorResponse(c, "")
			}
			c.Abort()
			return
		}

		ws, err := registry.Get(claims.DeviceID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "UNAVAILABLE", i18n.T(lang, i18n.KeyTryAgain), nil)
			c.Abort()
			return
		}

		// Without an explicit header the workspace language wins.
		if c.GetHeader("Accept-Language") == "" {
			c.Set(utils.ContextKeyLang, string(ws.Services.Session.Language()))
		}

		c.Set(utils.ContextKeyDeviceID, claims.DeviceID)
		c.Set(contextKeyWorkspace, ws)
		c.Next()
	}
}

// GetWorkspace returns the workspace attached by DeviceRequired.
func GetWorkspace(c *gin.Context) *workspace.Workspace {
	if v, ok := c.Get(contextKeyWorkspace); ok {
		if ws, ok := v.(*workspace.Workspace); ok {
			return ws
		}
	}
	return nil
}
