// Package common defines the sentinel errors shared by the auth manager,
// the emergency flow and the storage layer. Callers should use errors.Is to
// match these values; most of them arrive wrapped with extra context.
package common

import (
	"errors"
	"fmt"
)

var (
	// Input errors.
	ErrValidation = errors.New("validation error")
	ErrEmailTaken = fmt.Errorf("%w: an account with this email already exists", ErrValidation)

	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Credential and account errors.
	ErrInvalidCredential = errors.New("invalid credential")
	ErrAccountDisabled   = errors.New("account is deactivated")

	// Access gate errors.
	ErrUnauthenticated = errors.New("not signed in")
	ErrForbidden       = errors.New("unauthorized")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Device and persistence errors.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
	ErrStorage                = errors.New("storage error")

	// Emergency flow errors.
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrCancelled    = errors.New("emergency request cancelled")
)
