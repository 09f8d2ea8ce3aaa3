package validator

import (
	"regexp"

	"clinic-backend/pkg/response"

	"github.com/go-playground/validator/v10"
)

var (
	timeRegex  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	phoneRegex = regexp.MustCompile(`^\+?\d{8,16}$`)

	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex     = regexp.MustCompile(`\d`)
	specialRegex   = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return timeRegex.MatchString(fl.Field().String())
	})
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})

	return &CustomValidator{validator: v}
}

// IsStrongPassword reports whether the password is at least 8 characters and
// contains an upper-case letter, a lower-case letter, a digit and a special
// character.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	return lowercaseRegex.MatchString(password) &&
		uppercaseRegex.MatchString(password) &&
		digitRegex.MatchString(password) &&
		specialRegex.MatchString(password)
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// FormatValidationErrors flattens validator violations into the per-field
// detail array carried by a VALIDATION_FAILED response.
func (cv *CustomValidator) FormatValidationErrors(err error) []response.FieldError {
	var out []response.FieldError

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []response.FieldError{{Field: "", Message: err.Error()}}
	}

	for _, e := range validationErrors {
		field := e.Field()
		fe := response.FieldError{Field: field}

		switch e.Tag() {
		case "required":
			fe.Message = field + " is required"
		case "email":
			fe.Message = field + " must be a valid email address"
		case "min":
			fe.Message = field + " must be at least " + e.Param() + " characters"
		case "max":
			fe.Message = field + " must be at most " + e.Param() + " characters"
		case "gte":
			fe.Message = field + " must be greater than or equal to " + e.Param()
		case "lte":
			fe.Message = field + " must be less than or equal to " + e.Param()
		case "oneof":
			fe.Message = field + " must be one of: " + e.Param()
		case "hhmm":
			fe.Message = field + " must be a valid time in HH:MM format"
		case "phone":
			fe.Message = field + " must be a valid phone number"
		case "strongpassword":
			fe.Message = field + " must be at least 8 characters and contain upper, lower, digit and special characters"
		default:
			fe.Message = field + " is invalid"
		}

		// Never echo credential material back to the client.
		if e.Tag() != "strongpassword" && field != "Password" && field != "NewPassword" && field != "CurrentPassword" && field != "ConfirmPassword" {
			fe.Value = e.Value()
		}

		out = append(out, fe)
	}

	return out
}
