package config

import (
	"github.com/KOMKZ/go-yogan-binding/validator"
)

// Validator configuration sections implement this
type Validator interface {
	Validate() error
}

// ValidateAll validates in order and returns the first failure.
// ozzo field errors come back as validator.ErrValidationFailed.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if v == nil {
			continue
		}
		if err := validator.Validate(v); err != nil {
			return err
		}
	}
	return nil
}
