package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validationMessages flattens validator errors into field -> message.
func validationMessages(err error) map[string]string {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorMessages["body"] = err.Error()
		return errorMessages
	}
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return errorMessages
}
