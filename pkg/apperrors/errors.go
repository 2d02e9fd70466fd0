package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrNoEligibleProvider = errors.New("no eligible provider")
	ErrProviderFailure    = errors.New("provider invocation failed")
)
