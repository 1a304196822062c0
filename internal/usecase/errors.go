package usecase

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrMovieNotFound   = errors.New("movie not found")
	ErrInvalidID       = errors.New("invalid movie id")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidLogin    = errors.New("invalid credentials")
	ErrAccountDisabled = errors.New("account is deactivated")
	ErrInvalidToken    = errors.New("invalid token format")
)
