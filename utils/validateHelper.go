package utils

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateStruct runs `validate` struct tags on an input DTO. Handlers that
// accept JSON through gin already get binding validation; this covers inputs
// arriving through non-gin paths (pubsub payloads, internal ops).
func ValidateStruct(input interface{}) error {
	return validate.Struct(input)
}
