// internal/handlers/studio.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/utils"
)

type StudioHandler struct{}

func NewStudioHandler() *StudioHandler {
	return &StudioHandler{}
}

// POST /studio/scenes
func (h *StudioHandler) GenerateScene(c *gin.Context) {
	var req services.SceneRequest
	if !bindJSON(c, &req) {
		return
	}
	scene, err := svc(c).Studio.GenerateScene(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, scene)
}

// POST /studio/scripts
func (h *StudioHandler) GenerateVideoScript(c *gin.Context) {
	var req services.VideoScriptRequest
	if !bindJSON(c, &req) {
		return
	}
	script, err := svc(c).Studio.GenerateVideoScript(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, script)
}

// POST /studio/videos
func (h *StudioHandler) StartVideo(c *gin.Context) {
	var req services.VideoRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := svc(c).Studio.StartVideo(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", c.Request.URL.Path+"/"+job.ID)
	utils.CreatedResponse(c, job)
}

// GET /studio/videos
func (h *StudioHandler) GetVideos(c *gin.Context) {
	utils.SuccessResponse(c, svc(c).Studio.Videos())
}

// GET /studio/videos/:id
func (h *StudioHandler) GetVideo(c *gin.Context) {
	job, err := svc(c).Studio.Video(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, job)
}

// DELETE /studio/videos/:id
func (h *StudioHandler) CancelVideo(c *gin.Context) {
	job, err := svc(c).Studio.CancelVideo(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, job)
}
