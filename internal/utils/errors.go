package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive    = errors.New("ACCOUNT_INACTIVE")
	ErrUnauthorized       = errors.New("UNAUTHORIZED")
	ErrForbidden          = errors.New("FORBIDDEN")
	ErrNotFound           = errors.New("NOT_FOUND")
	ErrValidation         = errors.New("VALIDATION_ERROR")
	ErrConflict           = errors.New("CONFLICT")
	ErrChatExists         = errors.New("CHAT_ALREADY_EXISTS")
	ErrAlreadyReviewed    = errors.New("ALREADY_REVIEWED")
	ErrPhotoRejected      = errors.New("PHOTO_REJECTED")
	ErrPhotoTooLarge      = errors.New("PHOTO_TOO_LARGE")
)
