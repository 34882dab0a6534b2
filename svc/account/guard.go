package account

import (
	"context"
	"errors"

	"github.com/quitplan/quitplan/pkg/token"
)

// Guard resolves bearer tokens into user records and enforces role
// requirements. Every failure mode of token verification collapses into
// ErrUnauthenticated so transport layers map it to a single 401 response;
// the original cause stays in the error chain for logging.
type Guard struct {
	tokens  *token.Service
	storage Storage
}

// NewGuard creates an authorization guard.
func NewGuard(tokens *token.Service, storage Storage) *Guard {
	return &Guard{tokens: tokens, storage: storage}
}

// Authenticate verifies an auth-purpose token and loads the user it names.
// Tokens of any other purpose are rejected; a valid token for a deleted
// user is rejected too.
func (g *Guard) Authenticate(ctx context.Context, tokenString string) (*User, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := g.tokens.Verify(tokenString, token.PurposeAuth)
	if err != nil {
		return nil, errors.Join(ErrUnauthenticated, err)
	}

	user, err := g.storage.GetUserByEmail(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return nil, errors.Join(ErrUnauthenticated, err)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RequireRole authenticates the token and additionally requires the user to
// hold the given role, returning ErrForbidden otherwise.
func (g *Guard) RequireRole(ctx context.Context, tokenString string, role Role) (*User, error) {
	user, err := g.Authenticate(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, ErrForbidden
	}
	return user, nil
}
