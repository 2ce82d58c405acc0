// internal/services/errors.go
package services

import "errors"

// Session and identity
var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrForbidden          = errors.New("not allowed for this account")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrPhoneExists        = errors.New("phone already registered")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
	ErrSelfFollow         = errors.New("cannot follow yourself")
	ErrInvalidTeamMember  = errors.New("invalid team member")
)

// Catalog and cart
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrVariantNotFound  = errors.New("variant not found")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrDeckNotFound     = errors.New("deck not found")
	ErrInvalidOption    = errors.New("invalid size or pack")
	ErrCartLineNotFound = errors.New("cart line not found")
	ErrCartEmpty        = errors.New("no cart lines for this creator")
)

// Chats and notifications
var (
	ErrChatNotFound         = errors.New("chat not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotPreOrder          = errors.New("message is not a pre-order")
	ErrNotTranslatable      = errors.New("only text messages can be translated")
	ErrNotificationNotFound = errors.New("notification not found")
)

// Live streams
var (
	ErrStreamNotFound    = errors.New("live stream not found")
	ErrNotHost           = errors.New("only the host can do this")
	ErrStreamNotLive     = errors.New("live stream is not live")
	ErrInvalidTransition = errors.New("invalid live stream transition")
	ErrInvalidDiscount   = errors.New("invalid discount")
	ErrNotInShowcase     = errors.New("product is not in the showcase")
	ErrPinLocked         = errors.New("pinned product is controlled by the host")
)

// Studio and media
var (
	ErrGenerationFailed = errors.New("generation failed")
	ErrVideoJobNotFound = errors.New("video job not found")
	ErrInvalidMedia     = errors.New("unsupported media")
	ErrMediaTooLarge    = errors.New("media too large")
)

// errNoChange aborts an Update without committing anything.
var errNoChange = errors.New("no change")
