package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidValue indicates a monetary value that cannot be represented exactly
// (too many fractional digits, not numeric, or outside the supported range).
var ErrInvalidValue = errors.New("invalid value")
