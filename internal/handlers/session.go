// internal/handlers/session.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/utils"
)

type SessionHandler struct {
	media *services.MediaService
}

type LanguageRequest struct {
	Language models.Language `json:"language" validate:"required,language"`
}

func NewSessionHandler(media *services.MediaService) *SessionHandler {
	return &SessionHandler{media: media}
}

// POST /session/login
func (h *SessionHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	me, err := svc(c).Session.Login(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Set(utils.ContextKeyLang, string(svc(c).Session.Language()))
	utils.SuccessMessageResponse(c, i18n.KeyAuthLoginSuccess, gin.H{
		"me":         me,
		"navigation": svc(c).Navigation.State(),
	})
}

// POST /session/register
func (h *SessionHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	me, err := svc(c).Session.Register(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthRegisterSuccess),
		"me":         me,
		"navigation": svc(c).Navigation.State(),
	})
}

// POST /session/logout
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := svc(c).Session.Logout(); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyAuthLogoutSuccess, nil)
}

// GET /session/me
func (h *SessionHandler) Me(c *gin.Context) {
	me, err := svc(c).Session.Me()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, me)
}

// PUT /session/password
func (h *SessionHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := svc(c).Session.ChangePassword(&req); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyAuthPasswordChanged, nil)
}

// POST /session/password/reset
func (h *SessionHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := svc(c).Session.ResetPassword(&req); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyAuthPasswordReset, nil)
}

// PUT /session/profile
func (h *SessionHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	for _, field := range []*string{req.AvatarURL, req.OriginalAvatarURL} {
		if field == nil {
			continue
		}
		url, err := h.media.Resolve(c.Request.Context(), *field, "avatars")
		if err != nil {
			respondError(c, err)
			return
		}
		*field = url
	}

	me, err := svc(c).Session.UpdateProfile(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyUserProfileUpdated, me)
}

// PUT /session/language
func (h *SessionHandler) SetLanguage(c *gin.Context) {
	var req LanguageRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := svc(c).Session.SetLanguage(req.Language); err != nil {
		respondError(c, err)
		return
	}

	c.Set(utils.ContextKeyLang, string(req.Language))
	utils.SuccessMessageResponse(c, i18n.KeyLanguageUpdated, gin.H{"language": req.Language})
}

// GET /team
func (h *SessionHandler) Team(c *gin.Context) {
	team, err := svc(c).Session.Team()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, team)
}

// POST /team
func (h *SessionHandler) AddTeamMember(c *gin.Context) {
	var req services.AddTeamMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := svc(c).Session.AddTeamMember(&req); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyTeamMemberAdded, nil)
}

// DELETE /team/:id
func (h *SessionHandler) RemoveTeamMember(c *gin.Context) {
	if err := svc(c).Session.RemoveTeamMember(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyTeamMemberRemoved, nil)
}
