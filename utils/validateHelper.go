package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// ValidateStruct runs the `validate` struct tags and converts the first failure to a ValidationError.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return NewValidationError(ve.Field(), "failed on the '%s' rule", ve.Tag())
	}
	return &ValidationError{Message: err.Error()}
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		var ve *ValidationError
		if errors.As(err, &ve) {
			errorResponse[ve.Field] = ve.Message
		}
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

// amounts must be strictly positive
func ValidatePositiveAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewValidationError(field, "must be greater than zero")
	}
	return nil
}

func ValidatePositiveQuantity(field string, qty int) error {
	if qty <= 0 {
		return NewValidationError(field, "must be a positive whole number")
	}
	return nil
}

func ValidateRequiredName(field string, name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}
