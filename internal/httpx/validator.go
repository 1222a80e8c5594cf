package httpx

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("username", validateUsername)
	_ = validate.RegisterValidation("bcrypt_len", validateBcryptLength)
}

// validateUsername rejects any whitespace; length is checked by min/max.
func validateUsername(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
}

// bcrypt only looks at the first 72 bytes of its input.
func validateBcryptLength(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= 72
}

func ValidateStruct(s any) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Field: "", Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "username":
			message = fmt.Sprintf("%s must not contain whitespace", field)
		case "bcrypt_len":
			message = fmt.Sprintf("%s must be at most 72 bytes", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		details = append(details, ErrorDetail{
			Field:   strings.ToLower(field[:1]) + field[1:],
			Message: message,
		})
	}
	return details
}

// FirstMessage flattens validation details into one line for HTML flashes.
func FirstMessage(details []ErrorDetail) string {
	if len(details) == 0 {
		return ""
	}
	return details[0].Message
}
