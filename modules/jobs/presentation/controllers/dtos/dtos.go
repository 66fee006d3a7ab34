// Package dtos holds the JSON request bodies of the jobs API.
package dtos

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/fieldops/pkg/constants"
)

// validate returns field -> failed rule for every invalid field of dto.
func validate(dto any) (map[string]string, bool) {
	errorMessages := map[string]string{}
	err := constants.Validate.Struct(dto)
	if err == nil {
		return errorMessages, true
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		errorMessages["_"] = err.Error()
		return errorMessages, false
	}
	for _, fe := range validationErrs {
		errorMessages[fe.Field()] = fe.Tag()
	}
	return errorMessages, len(errorMessages) == 0
}
