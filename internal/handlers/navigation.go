// internal/handlers/navigation.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/utils"
)

type NavigationHandler struct{}

type PushViewRequest struct {
	View  navigation.View  `json:"view" validate:"required,view"`
	Props navigation.Props `json:"props"`
}

type ResetViewRequest struct {
	View navigation.View `json:"view" validate:"required,view"`
}

func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

// GET /navigation
func (h *NavigationHandler) State(c *gin.Context) {
	utils.SuccessResponse(c, svc(c).Navigation.State())
}

// POST /navigation/push
func (h *NavigationHandler) Push(c *gin.Context) {
	var req PushViewRequest
	if !bindJSON(c, &req) {
		return
	}
	state, err := svc(c).Navigation.Push(req.View, req.Props)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, state)
}

// POST /navigation/back
func (h *NavigationHandler) Back(c *gin.Context) {
	state, err := svc(c).Navigation.Back()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, state)
}

// POST /navigation/reset
func (h *NavigationHandler) Reset(c *gin.Context) {
	var req ResetViewRequest
	if !bindJSON(c, &req) {
		return
	}
	state, err := svc(c).Navigation.Reset(req.View)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, state)
}

// POST /navigation/deep-link?userId=&deckId=&productId=
func (h *NavigationHandler) DeepLink(c *gin.Context) {
	link := navigation.ParseDeepLink(c.Request.URL.Query())
	if link.Empty() {
		_ = c.ShouldBindJSON(&link)
	}

	state, applied, err := svc(c).Navigation.ApplyDeepLink(link)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"applied":    applied,
		"navigation": state,
	})
}

// POST /navigation/exit-public
func (h *NavigationHandler) ExitPublicMode(c *gin.Context) {
	state, err := svc(c).Navigation.ExitPublicMode()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, state)
}
