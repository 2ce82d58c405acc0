// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/utils"
)

// UserHandler serves profiles, follows and notifications.
type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// GET /users/:id
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := svc(c).Social.Profile(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, profile)
}

// POST /users/:id/follow
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	following, err := svc(c).Social.FollowToggle(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"following": following})
}

// GET /notifications
func (h *UserHandler) GetNotifications(c *gin.Context) {
	notifications, unread, err := svc(c).Social.Notifications()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponseWithMeta(c, notifications, gin.H{"unread": unread})
}

// POST /notifications/:id/open
func (h *UserHandler) OpenNotification(c *gin.Context) {
	state, err := svc(c).Social.OpenNotification(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, state)
}

// POST /notifications/read-all
func (h *UserHandler) MarkAllRead(c *gin.Context) {
	if err := svc(c).Social.MarkAllRead(); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"unread": 0})
}
