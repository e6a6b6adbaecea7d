// Package common defines shared constants and sentinel errors used across
// the keyshare server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential errors. The same value is used for an unknown user and
	// for a wrong password or PIN.
	ErrInvalidCredential = errors.New("invalid credential")

	// Account gates.
	ErrLocked             = errors.New("pin blocked")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAccountNotEnrolled = errors.New("account not enrolled")

	// Proof session errors.
	ErrNoActiveSession  = errors.New("no active proof session")
	ErrCryptoSetup      = errors.New("crypto setup error")
	ErrInvalidPublicKey = errors.New("invalid public key")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired   = errors.New("token expired")
	ErrSessionExpired = errors.New("session expired")
)

// LockedError is returned when a PIN check is attempted while the account
// is blocked. Remaining is the cool-down left, in seconds.
type LockedError struct {
	Remaining int64
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s: %d seconds remaining", ErrLocked, e.Remaining)
}

// Is makes errors.Is(err, ErrLocked) hold for any LockedError.
func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}
