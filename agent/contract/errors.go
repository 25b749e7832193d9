package contract

import "errors"

var (
	ErrModelInvoke       = errors.New("model invoke failed")
	ErrSchemaViolation   = errors.New("model response violates schema")
	ErrValidation        = errors.New("validation failed")
	ErrLocationNotFound  = errors.New("location not found")
	ErrMissingStageInput = errors.New("stage input is missing")
	ErrMalformedPayload  = errors.New("malformed external payload")
)
