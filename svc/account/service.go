package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quitplan/quitplan/pkg/escrow"
	"github.com/quitplan/quitplan/pkg/logger"
	"github.com/quitplan/quitplan/pkg/password"
	"github.com/quitplan/quitplan/pkg/queue"
	"github.com/quitplan/quitplan/pkg/sanitizer"
	"github.com/quitplan/quitplan/pkg/token"
	"github.com/quitplan/quitplan/pkg/validator"
)

// TaskEnqueuer dispatches background tasks. *queue.Enqueuer satisfies it;
// tests substitute a recorder.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) error
}

// Service orchestrates the account lifecycle: registration with master key
// escrow, email verification, login, password reset, and the admin surface.
// It owns no transport concerns; callers bring their own HTTP or RPC layer.
type Service struct {
	storage  Storage
	tokens   *token.Service
	escrow   *escrow.Service
	enqueuer TaskEnqueuer
	guard    *Guard
	hasher   *password.Hasher
	policy   validator.PasswordStrengthConfig
	database string
	log      *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the service logger. Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHasher overrides the password hasher, mainly to lower the bcrypt cost
// in tests.
func WithHasher(h *password.Hasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithPasswordPolicy overrides the password strength requirements.
func WithPasswordPolicy(p validator.PasswordStrengthConfig) Option {
	return func(s *Service) { s.policy = p }
}

// WithDatabaseName labels admin statistics with the backing database name.
func WithDatabaseName(name string) Option {
	return func(s *Service) { s.database = name }
}

// NewService wires the account service. The enqueuer may be nil, in which
// case verification and reset emails are silently skipped; useful in tests
// that only exercise storage behavior.
func NewService(
	storage Storage,
	tokens *token.Service,
	escrowSvc *escrow.Service,
	enqueuer TaskEnqueuer,
	opts ...Option,
) *Service {
	s := &Service{
		storage:  storage,
		tokens:   tokens,
		escrow:   escrowSvc,
		enqueuer: enqueuer,
		guard:    NewGuard(tokens, storage),
		hasher:   password.New(),
		policy:   validator.DefaultPasswordStrength(),
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Guard exposes the authorization guard for transport middleware.
func (s *Service) Guard() *Guard {
	return s.guard
}

// Register creates an unverified account and hands back the plaintext master
// key exactly once. The key is escrowed under the server secret before the
// user record exists, so a stored account always has a recoverable key; when
// escrow is not configured registration fails outright. A verification email
// is dispatched through the task queue without retries.
func (s *Service) Register(ctx context.Context, emailAddr, plainPassword string) (*RegisterResult, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)
	if err := validator.Apply(
		validator.ValidEmail("email", emailAddr),
		validator.StrongPassword("password", plainPassword, s.policy),
	); err != nil {
		return nil, err
	}

	masterKey, err := escrow.GenerateKey()
	if err != nil {
		return nil, err
	}
	encryptedKey, err := s.escrow.Encrypt(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to escrow master key: %w", err)
	}

	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:                 uuid.New(),
		Email:              emailAddr,
		PasswordHash:       hash,
		Role:               RoleUser,
		IsVerified:         false,
		EncryptedMasterKey: encryptedKey,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	verifyToken, err := s.tokens.Issue(emailAddr, token.PurposeVerifyEmail)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to issue verification token",
			logger.Error(err), slog.String("email", sanitizer.MaskEmail(emailAddr)))
	} else {
		s.dispatch(ctx, SendVerificationEmail{Email: emailAddr, Token: verifyToken})
	}

	s.log.InfoContext(ctx, "user registered",
		logger.UserID(user.ID), slog.String("email", sanitizer.MaskEmail(emailAddr)))

	return &RegisterResult{UserID: user.ID, Email: emailAddr, MasterKey: masterKey}, nil
}

// EnsureAdmin creates a verified admin account when no account exists for
// the address. Existing accounts are left untouched whatever their role, so
// a demoted admin cannot be silently re-promoted by a restart. The plaintext
// master key is discarded here; the admin recovers it at login like any user.
func (s *Service) EnsureAdmin(ctx context.Context, emailAddr, plainPassword string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)
	if err := validator.Apply(
		validator.ValidEmail("email", emailAddr),
		validator.StrongPassword("password", plainPassword, s.policy),
	); err != nil {
		return err
	}

	_, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	masterKey, err := escrow.GenerateKey()
	if err != nil {
		return err
	}
	encryptedKey, err := s.escrow.Encrypt(masterKey)
	if err != nil {
		return fmt.Errorf("failed to escrow master key: %w", err)
	}

	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return err
	}

	user := &User{
		ID:                 uuid.New(),
		Email:              emailAddr,
		PasswordHash:       hash,
		Role:               RoleAdmin,
		IsVerified:         true,
		EncryptedMasterKey: encryptedKey,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil
		}
		return err
	}

	s.log.InfoContext(ctx, "admin account created",
		logger.UserID(user.ID), slog.String("email", sanitizer.MaskEmail(emailAddr)))
	return nil
}

// VerifyEmail consumes a verification token and marks the account verified.
// Verifying an already verified account succeeds.
func (s *Service) VerifyEmail(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Verify(tokenString, token.PurposeVerifyEmail)
	if err != nil {
		return err
	}
	if err := s.storage.SetVerified(ctx, claims.Subject); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "email verified",
		slog.String("email", sanitizer.MaskEmail(claims.Subject)))
	return nil
}

// Login checks credentials and returns a week-long auth token together with
// the decrypted master key. Unknown email and wrong password are
// indistinguishable to the caller. A key that cannot be recovered degrades
// the login instead of failing it; analytics recording is best-effort.
func (s *Service) Login(ctx context.Context, emailAddr, plainPassword string, meta LoginMeta) (*LoginResult, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(plainPassword, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	masterKey := ""
	if user.EncryptedMasterKey != "" {
		masterKey, err = s.escrow.Decrypt(user.EncryptedMasterKey)
		if err != nil {
			s.log.WarnContext(ctx, "master key unrecoverable, proceeding without it",
				logger.Error(err), logger.UserID(user.ID))
			masterKey = ""
		}
	}

	if err := s.storage.RecordLogin(ctx, emailAddr, meta); err != nil {
		s.log.ErrorContext(ctx, "failed to record login analytics",
			logger.Error(err), logger.UserID(user.ID))
	}

	authToken, err := s.tokens.Issue(emailAddr, token.PurposeAuth)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user logged in",
		logger.UserID(user.ID), slog.String("email", sanitizer.MaskEmail(emailAddr)))

	return &LoginResult{
		Token:     authToken,
		Email:     emailAddr,
		Role:      user.Role,
		MasterKey: masterKey,
	}, nil
}

// RequestPasswordReset dispatches a reset email when the address is
// registered. It reports success either way so the endpoint cannot be used
// to enumerate accounts; internal failures are logged, not returned.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if _, err := s.storage.GetUserByEmail(ctx, emailAddr); err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.ErrorContext(ctx, "failed to look up reset candidate", logger.Error(err))
		}
		return nil
	}

	resetToken, err := s.tokens.Issue(emailAddr, token.PurposePasswordReset)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to issue reset token", logger.Error(err))
		return nil
	}

	s.dispatch(ctx, SendPasswordResetEmail{Email: emailAddr, Token: resetToken})
	return nil
}

// ConfirmPasswordReset consumes a reset token and replaces the password
// hash. The escrowed master key is untouched, so the user's encrypted data
// survives the reset.
func (s *Service) ConfirmPasswordReset(ctx context.Context, tokenString, newPassword string) error {
	claims, err := s.tokens.Verify(tokenString, token.PurposePasswordReset)
	if err != nil {
		return err
	}

	if err := validator.Apply(
		validator.StrongPassword("password", newPassword, s.policy),
	); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.storage.UpdatePasswordHash(ctx, claims.Subject, hash); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "password reset",
		slog.String("email", sanitizer.MaskEmail(claims.Subject)))
	return nil
}

// TrackPageVisit records a page view for the authenticated user. The
// deepest funnel page only ever advances.
func (s *Service) TrackPageVisit(ctx context.Context, actorToken, page string) error {
	user, err := s.guard.Authenticate(ctx, actorToken)
	if err != nil {
		return err
	}
	return s.storage.RecordPageVisit(ctx, user.Email, page)
}

// ListUsers returns summaries of every account. Admin only.
func (s *Service) ListUsers(ctx context.Context, actorToken string) ([]UserSummary, error) {
	if _, err := s.guard.RequireRole(ctx, actorToken, RoleAdmin); err != nil {
		return nil, err
	}

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries, nil
}

// SetRole changes a user's role. Admin only. An admin may demote themselves;
// the change is logged because it can leave the system without admins.
func (s *Service) SetRole(ctx context.Context, actorToken string, userID uuid.UUID, role Role) error {
	actor, err := s.guard.RequireRole(ctx, actorToken, RoleAdmin)
	if err != nil {
		return err
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	if actor.ID == userID && role != RoleAdmin {
		s.log.WarnContext(ctx, "admin demoting own account",
			logger.UserID(actor.ID), logger.Role(role))
	}

	if err := s.storage.SetRole(ctx, userID, role); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "role changed",
		logger.UserID(userID), logger.Role(role), slog.String("actor", actor.ID.String()))
	return nil
}

// DeleteUser removes an account and its login history. Admin only.
func (s *Service) DeleteUser(ctx context.Context, actorToken string, userID uuid.UUID) error {
	actor, err := s.guard.RequireRole(ctx, actorToken, RoleAdmin)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteUser(ctx, userID); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "user deleted",
		logger.UserID(userID), slog.String("actor", actor.ID.String()))
	return nil
}

// Stats returns headline numbers for the admin dashboard. Admin only.
func (s *Service) Stats(ctx context.Context, actorToken string) (*AdminStats, error) {
	if _, err := s.guard.RequireRole(ctx, actorToken, RoleAdmin); err != nil {
		return nil, err
	}

	totalUsers, err := s.storage.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	totalLogins, err := s.storage.CountLogins(ctx)
	if err != nil {
		return nil, err
	}

	return &AdminStats{
		TotalUsers:  totalUsers,
		TotalLogins: totalLogins,
		Database:    s.database,
	}, nil
}

// dispatch enqueues an email task without retries; transactional email is
// best-effort and a failed enqueue never fails the calling operation.
func (s *Service) dispatch(ctx context.Context, payload any) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.Enqueue(ctx, payload, queue.WithMaxRetries(0)); err != nil {
		s.log.ErrorContext(ctx, "failed to enqueue email task", logger.Error(err))
	}
}
