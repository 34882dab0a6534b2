package account_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/quitplan/quitplan/pkg/queue"
	"github.com/quitplan/quitplan/svc/account"
)

// mockStorage is a testify mock for interaction-level tests.
type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStorage) CreateUser(ctx context.Context, user *account.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockStorage) GetUserByEmail(ctx context.Context, email string) (*account.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*account.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*account.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorage) ListUsers(ctx context.Context) ([]account.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]account.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorage) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	return m.Called(ctx, email, passwordHash).Error(0)
}

func (m *mockStorage) SetVerified(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockStorage) SetRole(ctx context.Context, id uuid.UUID, role account.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockStorage) RecordLogin(ctx context.Context, email string, meta account.LoginMeta) error {
	return m.Called(ctx, email, meta).Error(0)
}

func (m *mockStorage) RecordPageVisit(ctx context.Context, email, page string) error {
	return m.Called(ctx, email, page).Error(0)
}

func (m *mockStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStorage) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStorage) CountLogins(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// recordingEnqueuer captures dispatched payloads instead of queueing them.
type recordingEnqueuer struct {
	mu       sync.Mutex
	payloads []any
}

func (r *recordingEnqueuer) Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingEnqueuer) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.payloads...)
}

func (r *recordingEnqueuer) lastVerification() (account.SendVerificationEmail, bool) {
	payloads := r.all()
	for i := len(payloads) - 1; i >= 0; i-- {
		if v, ok := payloads[i].(account.SendVerificationEmail); ok {
			return v, true
		}
	}
	return account.SendVerificationEmail{}, false
}

func (r *recordingEnqueuer) lastReset() (account.SendPasswordResetEmail, bool) {
	payloads := r.all()
	for i := len(payloads) - 1; i >= 0; i-- {
		if v, ok := payloads[i].(account.SendPasswordResetEmail); ok {
			return v, true
		}
	}
	return account.SendPasswordResetEmail{}, false
}

// memStorage is an in-memory Storage for end-to-end service tests.
type memStorage struct {
	mu     sync.Mutex
	users  map[string]*account.User
	logins int64
}

func newMemStorage() *memStorage {
	return &memStorage{users: make(map[string]*account.User)}
}

func (s *memStorage) EnsureIndexes(ctx context.Context) error { return nil }

func (s *memStorage) CreateUser(ctx context.Context, user *account.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return account.ErrEmailAlreadyExists
	}
	clone := *user
	s.users[user.Email] = &clone
	return nil
}

func (s *memStorage) GetUserByEmail(ctx context.Context, email string) (*account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return nil, account.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, account.ErrUserNotFound
}

func (s *memStorage) ListUsers(ctx context.Context) ([]account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]account.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	return users, nil
}

func (s *memStorage) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return account.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (s *memStorage) SetVerified(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return account.ErrUserNotFound
	}
	user.IsVerified = true
	return nil
}

func (s *memStorage) SetRole(ctx context.Context, id uuid.UUID, role account.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			user.Role = role
			return nil
		}
	}
	return account.ErrUserNotFound
}

func (s *memStorage) RecordLogin(ctx context.Context, email string, meta account.LoginMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return account.ErrUserNotFound
	}
	user.LoginCount++
	user.LastIP = meta.IP
	user.LastDeviceType = meta.DeviceType
	user.LastLocation = meta.Location
	s.logins++
	return nil
}

func (s *memStorage) RecordPageVisit(ctx context.Context, email, page string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return account.ErrUserNotFound
	}
	user.LastPageVisited = page
	user.TotalPagesViewed++
	if account.PageDepth(page) > account.PageDepth(user.DeepestPage) {
		user.DeepestPage = page
	}
	return nil
}

func (s *memStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, user := range s.users {
		if user.ID == id {
			delete(s.users, email)
			return nil
		}
	}
	return account.ErrUserNotFound
}

func (s *memStorage) CountUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *memStorage) CountLogins(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins, nil
}
