package token

import "errors"

var (
	ErrTokenExpired      = errors.New("token: token is expired")
	ErrTokenMalformed    = errors.New("token: malformed token")
	ErrPurposeMismatch   = errors.New("token: purpose mismatch")
	ErrInvalidPurpose    = errors.New("token: unknown purpose")
	ErrMissingSigningKey = errors.New("token: missing signing key")
)
