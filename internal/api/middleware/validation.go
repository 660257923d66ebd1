package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"voicenotes/internal/api/errors"
)

// Validator is implemented by requests with rules beyond struct tags.
type Validator interface {
	Validate() error
}

// ValidateRequest binds the JSON body into req and checks both struct
// tags and domain rules.
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		validationErrors := make(map[string]string)

		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrs {
				validationErrors[fieldName(fieldError)] = describe(fieldError)
			}
		} else {
			validationErrors["request"] = "invalid JSON format"
		}

		return errors.NewValidationError("Validation failed", validationErrors)
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError("Invalid " + name)
	}
	return id, nil
}

func fieldName(fe validator.FieldError) string {
	var b strings.Builder
	prevLower := false
	for _, r := range fe.Field() {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		prevLower = !upper
		b.WriteRune(r)
	}
	return b.String()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "is too small"
	case "max", "lte":
		return "is too long"
	case "oneof":
		return "must be one of the allowed values"
	default:
		return "is invalid"
	}
}
