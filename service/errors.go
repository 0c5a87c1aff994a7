package service

import "errors"

// Handlers map these to HTTP statuses; wrap them with %w to add detail.
var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrSetupClosed        = errors.New("admin setup is closed")

	ErrConflict          = errors.New("username already registered")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("reservation not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrStoreUnavailable  = errors.New("store unavailable")
)
