package session

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// mockTokenPrefix lets a persisted token survive a restart: the account id
// is recovered from the token itself, not from per-process state.
const mockTokenPrefix = "mock-token-"

type mockAccount struct {
	User
	Password string
}

// MockBackend serves every operation from an in-process account table with
// an optional artificial delay. It stands in for the real API when no base
// URL is configured.
type MockBackend struct {
	mu       sync.Mutex
	accounts []mockAccount
	delay    time.Duration
}

func NewMockBackend(delay time.Duration) *MockBackend {
	return &MockBackend{
		accounts: []mockAccount{
			{User: User{ID: "1", Email: "admin@example.com", Name: "Admin", Role: RoleAdmin}, Password: "admin123"},
			{User: User{ID: "2", Email: "user@example.com", Name: "Demo User", Role: RoleUser}, Password: "user12345"},
		},
		delay: delay,
	}
}

func (m *MockBackend) sleep(ctx context.Context) error {
	if m.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(m.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockBackend) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	if err := m.sleep(ctx); err != nil {
		return AuthResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Email == creds.Email && a.Password == creds.Password {
			return AuthResult{Token: mockTokenPrefix + a.ID, User: a.User}, nil
		}
	}

	return AuthResult{}, &AuthError{Message: "Invalid email or password", Status: http.StatusUnauthorized}
}

func (m *MockBackend) Register(ctx context.Context, payload RegisterPayload) (AuthResult, error) {
	if err := m.sleep(ctx); err != nil {
		return AuthResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Email == payload.Email {
			return AuthResult{}, &AuthError{Message: "Email already in use", Status: http.StatusConflict}
		}
	}

	name := payload.Name
	if name == "" {
		name = strings.SplitN(payload.Email, "@", 2)[0]
	}

	a := mockAccount{
		User:     User{ID: uuid.NewString(), Email: payload.Email, Name: name, Role: RoleUser},
		Password: payload.Password,
	}
	m.accounts = append(m.accounts, a)

	return AuthResult{Token: mockTokenPrefix + a.ID, User: a.User}, nil
}

func (m *MockBackend) find(token string) (int, bool) {
	if !strings.HasPrefix(token, mockTokenPrefix) {
		return 0, false
	}
	id := strings.TrimPrefix(token, mockTokenPrefix)

	for i, a := range m.accounts {
		if a.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (m *MockBackend) FetchProfile(ctx context.Context, token string) (User, error) {
	if err := m.sleep(ctx); err != nil {
		return User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.find(token)
	if !ok {
		return User{}, &AuthError{Message: "Unauthorized", Status: http.StatusUnauthorized}
	}

	return m.accounts[i].User, nil
}

func (m *MockBackend) UpdateProfile(ctx context.Context, token string, patch ProfilePatch) (User, error) {
	if err := m.sleep(ctx); err != nil {
		return User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.find(token)
	if !ok {
		return User{}, &AuthError{Message: "Unauthorized", Status: http.StatusUnauthorized}
	}

	a := m.accounts[i]
	if patch.Email != nil {
		a.Email = *patch.Email
	}
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.AvatarURL != nil {
		a.AvatarURL = *patch.AvatarURL
	}
	if patch.Role != nil {
		a.Role = *patch.Role
	}
	m.accounts[i] = a

	return a.User, nil
}

func (m *MockBackend) ChangePassword(ctx context.Context, token, current, next string) error {
	if err := m.sleep(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.find(token)
	if !ok {
		return &AuthError{Message: "Unauthorized", Status: http.StatusUnauthorized}
	}

	if m.accounts[i].Password != current {
		return &AuthError{Message: "Current password is incorrect", Status: http.StatusBadRequest}
	}

	m.accounts[i].Password = next
	return nil
}
