package services

import "errors"

// Error taxonomy shared by the whole service layer. Services wrap these
// sentinels with context; handlers classify them with errors.Is to pick
// a flash message or HTTP status code.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("already exists")
	ErrBadCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidFile     = errors.New("invalid file")
	ErrNotFound        = errors.New("not found")
)
