// internal/handlers/chat.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/utils"
)

type ChatHandler struct {
	media *services.MediaService
}

func NewChatHandler(media *services.MediaService) *ChatHandler {
	return &ChatHandler{media: media}
}

// GET /chats?archived=true
func (h *ChatHandler) GetChats(c *gin.Context) {
	includeArchived, _ := strconv.ParseBool(c.DefaultQuery("archived", "false"))
	chats, err := svc(c).Chat.Chats(includeArchived)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, chats)
}

// POST /chats
func (h *ChatHandler) OpenChat(c *gin.Context) {
	var req services.OpenChatRequest
	if !bindJSON(c, &req) {
		return
	}
	chat, err := svc(c).Chat.OpenChat(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, chat)
}

// GET /chats/:id
func (h *ChatHandler) GetChat(c *gin.Context) {
	chat, err := svc(c).Chat.Chat(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, chat)
}

// POST /chats/:id/messages
func (h *ChatHandler) SendText(c *gin.Context) {
	var req services.SendTextRequest
	if !bindJSON(c, &req) {
		return
	}
	message, err := svc(c).Chat.SendText(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, message)
}

// POST /chats/:id/audio
func (h *ChatHandler) SendAudio(c *gin.Context) {
	var req services.SendAudioRequest
	if !bindJSON(c, &req) {
		return
	}

	url, err := h.media.Resolve(c.Request.Context(), req.AudioURL, "audio")
	if err != nil {
		respondError(c, err)
		return
	}
	req.AudioURL = url

	message, err := svc(c).Chat.SendAudio(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, message)
}

// POST /chats/:id/archive
func (h *ChatHandler) ToggleArchive(c *gin.Context) {
	archived, err := svc(c).Chat.ToggleArchive(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"archived": archived})
}

// POST /chats/:id/messages/:messageId/edit
func (h *ChatHandler) BeginPreOrderEdit(c *gin.Context) {
	state, err := svc(c).Chat.BeginPreOrderEdit(c.Param("id"), c.Param("messageId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, state)
}

// POST /chats/:id/messages/:messageId/translate
func (h *ChatHandler) Translate(c *gin.Context) {
	var req services.TranslateRequest
	if !bindJSON(c, &req) {
		return
	}
	text, err := svc(c).Chat.Translate(c.Request.Context(), c.Param("id"), c.Param("messageId"), req.Language)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"language": req.Language,
		"text":     text,
	})
}

// POST /pre-orders
func (h *ChatHandler) SendPreOrder(c *gin.Context) {
	var req services.SendPreOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := svc(c).Chat.SendPreOrder(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyChatPreOrderSent, result)
}
