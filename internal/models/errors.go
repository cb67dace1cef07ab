package models

import (
	"errors"
)

var (
	ErrSessionNotFound = errors.New("models: session not found")

	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrInvalidRole        = errors.New("models: invalid role")
	ErrInvalidResetCode   = errors.New("models: invalid or expired reset code")

	// ErrForbidden covers both non-owner access and insufficient role.
	ErrForbidden = errors.New("models: operation not allowed for this user")

	ErrEmptyAdminNote   = errors.New("models: admin note is required")
	ErrNotRejected      = errors.New("models: listing is not rejected")
	ErrListingNotLive   = errors.New("models: listing is not open for inquiries")
	ErrInvalidPaymentOp = errors.New("models: unknown payment operation")
	ErrInvalidSignature = errors.New("models: webhook signature verification failed")
	ErrValidation       = errors.New("models: validation failed")
)
