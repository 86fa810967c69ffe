package identity

import "errors"

var (
	// ErrInvalidCredentials marks a rejected email/password combination at login.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")

	// ErrTokenInvalid marks an access or refresh token the identity service
	// reports as expired, revoked or unknown.
	ErrTokenInvalid = errors.New("identity: token invalid or expired")

	// ErrUserNotFound marks a token that refers to a user the identity service
	// no longer knows about.
	ErrUserNotFound = errors.New("identity: user not found")
)
