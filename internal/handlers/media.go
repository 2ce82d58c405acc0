// internal/handlers/media.go
package handlers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/utils"
)

// maxUploadBytes caps what is read from a multipart file; the per-category
// limit is enforced by MediaService.
const maxUploadBytes = 64 << 20

type MediaHandler struct {
	media *services.MediaService
}

type DataURIUploadRequest struct {
	DataURI  string `json:"dataUri" validate:"required"`
	Category string `json:"category" validate:"omitempty,oneof=avatars products decks audio generated"`
}

func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// POST /media
// Accepts a multipart "file" with an optional "category" field, or a JSON
// body carrying a data URI.
func (h *MediaHandler) Upload(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var (
		result *services.UploadResult
		err    error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, ferr := c.FormFile("file")
		if ferr != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyMediaInvalid), ferr.Error())
			return
		}
		file, ferr := fileHeader.Open()
		if ferr != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyMediaInvalid), ferr.Error())
			return
		}
		data, ferr := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
		file.Close()
		if ferr != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyMediaInvalid), ferr.Error())
			return
		}
		result, err = h.media.Upload(c.Request.Context(), data, h.media.GetDefaultUploadOptions(c.PostForm("category")))
	} else {
		var req DataURIUploadRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err = h.media.UploadDataURI(c.Request.Context(), req.DataURI, req.Category)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyMediaUploaded),
		"file":    result,
	})
}
