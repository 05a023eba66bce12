package server

import (
	"github.com/go-playground/validator/v10"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
)

func registerValidators(validate *validator.Validate) {
	// Letters, digits, dots, hyphens and underscores
	validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) < minUsernameLen || len(value) > maxUsernameLen {
			return false
		}
		for _, char := range value {
			if !((char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9') ||
				char == '-' ||
				char == '_' ||
				char == '.') {
				return false
			}
		}
		return true
	})
}
