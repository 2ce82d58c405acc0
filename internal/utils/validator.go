// internal/utils/validator.go
package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
)

var (
	validate        *validator.Validate
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("phone", validatePhone)
	validate.RegisterValidation("role", validateRole)
	validate.RegisterValidation("language", validateLanguage)
	validate.RegisterValidation("view", validateView)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	// Username should be letters, digits, dots and underscores, 3-50 characters
	if len(username) < 3 || len(username) > 50 {
		return false
	}
	return usernamePattern.MatchString(username)
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

func validateLanguage(fl validator.FieldLevel) bool {
	return models.Language(fl.Field().String()).Valid()
}

func validateView(fl validator.FieldLevel) bool {
	return navigation.View(fl.Field().String()).Valid()
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_without":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt", "gte", "lt", "lte":
		return e.Field() + " is out of range"
	case "username":
		return "Username must be 3-50 characters and contain only letters, numbers, dots and underscores"
	case "phone":
		return "Phone must be 7-15 digits"
	case "role":
		return "Role must be customer, sales_rep or brand_owner"
	case "language":
		return "Language must be one of tr, ru, en, de"
	case "view":
		return e.Field() + " is not a known view"
	default:
		return e.Field() + " is invalid"
	}
}
