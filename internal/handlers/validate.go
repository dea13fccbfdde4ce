package handlers

import (
	"github.com/go-playground/validator/v10"
)

var fieldValidator = validator.New()

// validEmail applies the same rule as the `email` binding tag to values
// that arrive through Optional fields.
func validEmail(s string) bool {
	return fieldValidator.Var(s, "required,email") == nil
}
