// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/utils"
)

type errorMapping struct {
	err    error
	status int
	code   string
	key    string
}

var errorTable = []errorMapping{
	{services.ErrNotLoggedIn, http.StatusUnauthorized, "NOT_LOGGED_IN", i18n.KeyAuthRequired},
	{services.ErrForbidden, http.StatusForbidden, "FORBIDDEN", i18n.KeyAuthForbidden},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", i18n.KeyAuthInvalidCredentials},
	{services.ErrEmailExists, http.StatusConflict, "EMAIL_EXISTS", i18n.KeyAuthEmailExists},
	{services.ErrPhoneExists, http.StatusConflict, "PHONE_EXISTS", i18n.KeyAuthPhoneExists},
	{services.ErrIncorrectPassword, http.StatusBadRequest, "INCORRECT_PASSWORD", i18n.KeyAuthIncorrectPassword},
	{services.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", i18n.KeyUserNotFound},
	{services.ErrSelfFollow, http.StatusBadRequest, "SELF_FOLLOW", i18n.KeyUserSelfFollow},
	{services.ErrInvalidTeamMember, http.StatusBadRequest, "INVALID_TEAM_MEMBER", i18n.KeyTeamInvalidMember},

	{services.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND", i18n.KeyProductNotFound},
	{services.ErrVariantNotFound, http.StatusBadRequest, "VARIANT_NOT_FOUND", i18n.KeyProductVariantNotFound},
	{services.ErrInvalidProduct, http.StatusBadRequest, "INVALID_PRODUCT", i18n.KeyProductInvalid},
	{services.ErrDeckNotFound, http.StatusNotFound, "DECK_NOT_FOUND", i18n.KeyDeckNotFound},
	{services.ErrInvalidOption, http.StatusBadRequest, "INVALID_OPTION", i18n.KeyCartInvalidOption},
	{services.ErrCartLineNotFound, http.StatusNotFound, "CART_LINE_NOT_FOUND", i18n.KeyCartLineNotFound},
	{services.ErrCartEmpty, http.StatusBadRequest, "CART_EMPTY", i18n.KeyCartEmpty},

	{services.ErrChatNotFound, http.StatusNotFound, "CHAT_NOT_FOUND", i18n.KeyChatNotFound},
	{services.ErrMessageNotFound, http.StatusNotFound, "MESSAGE_NOT_FOUND", i18n.KeyChatMessageNotFound},
	{services.ErrNotPreOrder, http.StatusBadRequest, "NOT_PRE_ORDER", i18n.KeyChatNotPreOrder},
	{services.ErrNotTranslatable, http.StatusBadRequest, "NOT_TRANSLATABLE", i18n.KeyChatNotTranslatable},
	{services.ErrNotificationNotFound, http.StatusNotFound, "NOTIFICATION_NOT_FOUND", i18n.KeyNotificationNotFound},

	{services.ErrStreamNotFound, http.StatusNotFound, "STREAM_NOT_FOUND", i18n.KeyLiveNotFound},
	{services.ErrNotHost, http.StatusForbidden, "NOT_HOST", i18n.KeyLiveNotHost},
	{services.ErrStreamNotLive, http.StatusConflict, "STREAM_NOT_LIVE", i18n.KeyLiveNotLive},
	{services.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION", i18n.KeyLiveInvalidTransition},
	{services.ErrInvalidDiscount, http.StatusBadRequest, "INVALID_DISCOUNT", i18n.KeyLiveInvalidDiscount},
	{services.ErrNotInShowcase, http.StatusBadRequest, "NOT_IN_SHOWCASE", i18n.KeyLiveNotInShowcase},
	{services.ErrPinLocked, http.StatusConflict, "PIN_LOCKED", i18n.KeyLivePinLocked},

	{services.ErrGenerationFailed, http.StatusBadGateway, "GENERATION_FAILED", i18n.KeyAIGenerationFailed},
	{services.ErrVideoJobNotFound, http.StatusNotFound, "JOB_NOT_FOUND", i18n.KeyStudioJobNotFound},
	{services.ErrInvalidMedia, http.StatusBadRequest, "INVALID_MEDIA", i18n.KeyMediaInvalid},
	{services.ErrMediaTooLarge, http.StatusRequestEntityTooLarge, "MEDIA_TOO_LARGE", i18n.KeyMediaTooLarge},
}

// respondError writes the localized envelope for a service error. Unknown
// errors are logged and reported as internal errors.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			utils.ErrorResponse(c, m.status, m.code, i18n.T(lang, m.key), nil)
			return
		}
	}

	if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	c.Error(err)
	logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled service error")
	utils.InternalErrorResponse(c, "")
}
