package account

import "errors"

var (
	// ErrEmailAlreadyExists is returned when registration hits the unique
	// email constraint. The store's index is the source of truth; there is
	// no check-then-insert race.
	ErrEmailAlreadyExists = errors.New("account: email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so callers cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("account: invalid credentials")

	ErrEmailNotVerified = errors.New("account: email not verified")
	ErrUserNotFound     = errors.New("account: user not found")
	ErrUnauthenticated  = errors.New("account: unauthenticated")
	ErrForbidden        = errors.New("account: forbidden")
	ErrInvalidRole      = errors.New("account: invalid role")
)
