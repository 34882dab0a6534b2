package account

import (
	"context"

	"github.com/google/uuid"
)

// Storage persists credential records and login analytics. Implementations
// must enforce email uniqueness at the store level and translate their
// native errors into the package sentinels (ErrEmailAlreadyExists,
// ErrUserNotFound).
type Storage interface {
	// EnsureIndexes creates the unique email index and analytics indexes.
	// Call once at startup; safe to call repeatedly.
	EnsureIndexes(ctx context.Context) error

	// CreateUser inserts a new user. Returns ErrEmailAlreadyExists when the
	// email is taken, decided atomically by the store's unique index.
	CreateUser(ctx context.Context, user *User) error

	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)

	// UpdatePasswordHash replaces only the password hash. The escrowed
	// master key and every other field are left untouched.
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error

	// SetVerified marks the user's email as verified. Idempotent.
	SetVerified(ctx context.Context, email string) error

	SetRole(ctx context.Context, id uuid.UUID, role Role) error

	// RecordLogin bumps the login counter, stamps the request metadata on
	// the user record, and appends an event to the login history.
	RecordLogin(ctx context.Context, email string, meta LoginMeta) error

	// RecordPageVisit updates the user's navigation analytics: last page,
	// total page count, and the deepest page reached in the funnel.
	RecordPageVisit(ctx context.Context, email, page string) error

	// DeleteUser removes the user and their login history.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CountUsers(ctx context.Context) (int64, error)
	CountLogins(ctx context.Context) (int64, error)
}
