package domain

import "errors"

// Validation errors
var (
	ErrInvalidUsername = errors.New("username must be 3-20 letters, digits or underscores")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidStatus   = errors.New("invalid post status")
)

// Permission errors
var (
	ErrForbidden = errors.New("forbidden")
)
