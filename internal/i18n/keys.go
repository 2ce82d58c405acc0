// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess          = "success"
	KeyError            = "error"
	KeyValidationFailed = "validation.failed"
	KeyNotFound         = "not_found"
	KeyInternalError    = "internal_error"
	KeyRateLimited      = "rate_limited"
	KeyTryAgain         = "try_again"

	// Device
	KeyDeviceRequired     = "device.required"
	KeyDeviceInvalidToken = "device.invalid_token"
	KeyDeviceRegistered   = "device.registered"
	KeyDeviceForgotten    = "device.forgotten"
	KeyDeviceNotFound     = "device.not_found"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthForbidden          = "auth.forbidden"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthEmailExists        = "auth.email_exists"
	KeyAuthPhoneExists        = "auth.phone_exists"
	KeyAuthIncorrectPassword  = "auth.incorrect_password"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthPasswordChanged    = "auth.password_changed"
	KeyAuthPasswordReset      = "auth.password_reset"

	// User Management
	KeyUserProfileUpdated   = "user.profile_updated"
	KeyUserNotFound         = "user.not_found"
	KeyUserSelfFollow       = "user.self_follow"
	KeyTeamInvalidMember    = "team.invalid_member"
	KeyTeamMemberAdded      = "team.member_added"
	KeyTeamMemberRemoved    = "team.member_removed"
	KeyLanguageUpdated      = "user.language_updated"
	KeyNotificationNotFound = "notification.not_found"

	// Products
	KeyProductCreated         = "product.created"
	KeyProductUpdated         = "product.updated"
	KeyProductNotFound        = "product.not_found"
	KeyProductVariantNotFound = "product.variant_not_found"
	KeyProductInvalid         = "product.invalid"
	KeyDeckCreated            = "deck.created"
	KeyDeckUpdated            = "deck.updated"
	KeyDeckDeleted            = "deck.deleted"
	KeyDeckNotFound           = "deck.not_found"

	// Cart
	KeyCartInvalidOption = "cart.invalid_option"
	KeyCartLineNotFound  = "cart.line_not_found"
	KeyCartEmpty         = "cart.empty"
	KeyCartCheckedOut    = "cart.checked_out"

	// Chats
	KeyChatNotFound        = "chat.not_found"
	KeyChatMessageNotFound = "chat.message_not_found"
	KeyChatNotPreOrder     = "chat.not_pre_order"
	KeyChatPreOrderSent    = "chat.pre_order_sent"
	KeyChatNotTranslatable = "chat.not_translatable"

	// Live
	KeyLiveNotFound          = "live.not_found"
	KeyLiveNotHost           = "live.not_host"
	KeyLiveNotLive           = "live.not_live"
	KeyLiveInvalidTransition = "live.invalid_transition"
	KeyLiveInvalidDiscount   = "live.invalid_discount"
	KeyLiveNotInShowcase     = "live.not_in_showcase"
	KeyLivePinLocked         = "live.pin_locked"

	// Studio / media
	KeyAIGenerationFailed = "ai.generation_failed"
	KeyStudioJobNotFound  = "studio.job_not_found"
	KeyMediaInvalid       = "media.invalid"
	KeyMediaTooLarge      = "media.too_large"
	KeyMediaUploaded      = "media.uploaded"

	// Notifications sent to followers
	KeyNotifyNewProduct = "notify.new_product"
	KeyNotifyNewDeck    = "notify.new_deck"
)
