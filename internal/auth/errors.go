package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot reveal which one failed.
	ErrInvalidCredentials = errors.New("auth: incorrect email or password")

	// ErrInactiveAccount rejects disabled identities at login and on every
	// protected operation.
	ErrInactiveAccount = errors.New("auth: inactive account")

	// ErrInvalidToken indicates a token that failed signature, structure or
	// expiry checks.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrTokenRevoked indicates a structurally valid token that has been
	// revoked before its natural expiry.
	ErrTokenRevoked = errors.New("auth: token revoked")

	ErrForbidden     = errors.New("auth: forbidden")
	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
)
