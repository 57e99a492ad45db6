// Package auth provides user registration, login, profile management
// and JWT token issuance/verification. Passwords are stored as bcrypt
// hashes; tokens are HS256-signed with the user ID as subject.
package auth

import "errors"

// Sentinel errors for authentication operations.
var (
	// ErrEmailTaken indicates that a user with this email already exists.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials indicates a failed login. An unknown email
	// and a wrong password produce the same error so that login attempts
	// cannot probe which addresses are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidToken indicates a missing, malformed, expired or
	// wrongly-signed JWT.
	ErrInvalidToken = errors.New("invalid token")
)
