// internal/handlers/handler.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/middleware"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/utils"
)

// bindJSON decodes and validates the request body. It writes the error
// response and returns false when the body is unusable.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return false
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// svc returns the services of the device workspace on the request.
func svc(c *gin.Context) *services.Services {
	return middleware.GetWorkspace(c).Services
}

// resolveVariantMedia stores inline variant media and fills in the media
// type from the sniffed content.
func resolveVariantMedia(c *gin.Context, media *services.MediaService, variants []models.Variant) error {
	for i := range variants {
		if !strings.HasPrefix(variants[i].MediaURL, "data:") {
			continue
		}
		uploaded, err := media.UploadDataURI(c.Request.Context(), variants[i].MediaURL, "products")
		if err != nil {
			return err
		}
		variants[i].MediaURL = uploaded.URL
		variants[i].MediaType = models.MediaTypeImage
		if strings.HasPrefix(uploaded.MimeType, "video/") {
			variants[i].MediaType = models.MediaTypeVideo
		}
	}
	return nil
}

// resolveMediaURLs replaces inline data URIs with stored media URLs.
func resolveMediaURLs(c *gin.Context, media *services.MediaService, urls []string, category string) error {
	for i, value := range urls {
		url, err := media.Resolve(c.Request.Context(), value, category)
		if err != nil {
			return err
		}
		urls[i] = url
	}
	return nil
}
