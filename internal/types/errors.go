package types

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("requested item not found")
	ErrForbidden       = errors.New("action forbidden")
	ErrUpload          = errors.New("media upload failed")
	ErrStore           = errors.New("storage failure")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrTooManyAttempts = errors.New("too many failed attempts")
)
