// Package validator converts ozzo-validation results into layered errors
package validator

import (
	"errors"

	"github.com/KOMKZ/go-yogan-binding/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ModuleCode validator module code
const ModuleCode = 10

// ErrCodeValidationFailed business code of a failed validation
const ErrCodeValidationFailed = 1

// ErrValidationFailed one or more configuration fields are invalid.
// The "fields" data entry maps field name to message.
var ErrValidationFailed = errcode.Register(errcode.New(
	ModuleCode, ErrCodeValidationFailed,
	"validator", "error.validator.validation_failed", "validation failed",
))

// Validatable anything with a Validate method
type Validatable interface {
	Validate() error
}

// Validate runs v.Validate and converts ozzo field errors into ErrValidationFailed.
// Other errors are returned unchanged.
func Validate(v Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		return ConvertValidationError(validationErrs)
	}
	return err
}

// ConvertValidationError converts ozzo field errors into a LayeredError
func ConvertValidationError(validationErrs validation.Errors) error {
	fields := make(map[string]string, len(validationErrs))
	for field, fieldErr := range validationErrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}
	if len(fields) == 0 {
		return nil
	}

	return ErrValidationFailed.Wrap(validationErrs).WithData("fields", fields)
}

// Fields returns the per-field messages carried by a validation error
func Fields(err error) map[string]string {
	var layered *errcode.LayeredError
	if !errors.As(err, &layered) || !errors.Is(layered, ErrValidationFailed) {
		return nil
	}
	fields, _ := layered.Data()["fields"].(map[string]string)
	return fields
}
