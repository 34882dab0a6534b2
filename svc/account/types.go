package account

import (
	"time"

	"github.com/google/uuid"
)

// Role controls access to administrative operations. There are exactly two
// roles; anything more granular belongs in a dedicated authorization layer.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the credential record. PasswordHash and EncryptedMasterKey never
// leave the service layer; callers receive summaries or login results.
type User struct {
	ID                 uuid.UUID
	Email              string
	PasswordHash       string
	Role               Role
	IsVerified         bool
	EncryptedMasterKey string
	CreatedAt          time.Time

	// Engagement analytics, updated on login and page visits.
	LastLogin        *time.Time
	LoginCount       int64
	LastIP           string
	LastDeviceType   string
	LastLocation     string
	LastPageVisited  string
	DeepestPage      string
	TotalPagesViewed int64
}

// UserSummary is the admin-facing projection of a user. Secrets are omitted.
type UserSummary struct {
	ID               uuid.UUID  `json:"user_id"`
	Email            string     `json:"email"`
	Role             Role       `json:"role"`
	IsVerified       bool       `json:"is_verified"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	LoginCount       int64      `json:"login_count"`
	LastPageVisited  string     `json:"last_page_visited,omitempty"`
	DeepestPage      string     `json:"deepest_page,omitempty"`
	TotalPagesViewed int64      `json:"total_pages_viewed"`
}

// Summary strips secret material from a user record.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:               u.ID,
		Email:            u.Email,
		Role:             u.Role,
		IsVerified:       u.IsVerified,
		CreatedAt:        u.CreatedAt,
		LastLogin:        u.LastLogin,
		LoginCount:       u.LoginCount,
		LastPageVisited:  u.LastPageVisited,
		DeepestPage:      u.DeepestPage,
		TotalPagesViewed: u.TotalPagesViewed,
	}
}

// LoginMeta carries request context recorded alongside a successful login.
// All fields are optional; empty values are stored as-is.
type LoginMeta struct {
	IP         string
	DeviceType string
	Location   string
}

// RegisterResult is returned from a successful registration. MasterKey is
// the plaintext encryption key handed to the client exactly once; the server
// keeps only the escrowed copy.
type RegisterResult struct {
	UserID    uuid.UUID
	Email     string
	MasterKey string
}

// LoginResult is returned from a successful login. MasterKey is empty when
// the escrowed copy cannot be recovered; the session proceeds without it.
type LoginResult struct {
	Token     string
	Email     string
	Role      Role
	MasterKey string
}

// AdminStats aggregates headline numbers for the admin dashboard.
type AdminStats struct {
	TotalUsers  int64  `json:"total_users"`
	TotalLogins int64  `json:"total_logins"`
	Database    string `json:"database,omitempty"`
}
