package auth

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

type MemStore struct {
	mu      sync.RWMutex
	byID    map[string]Account
	byEmail map[string]string
}

func NewMemStore() *MemStore {
	s := &MemStore{
		byID:    make(map[string]Account),
		byEmail: make(map[string]string),
	}

	s.seed("1", "admin@example.com", "admin123", "Admin", RoleAdmin)
	s.seed("2", "user@example.com", "user12345", "Demo User", RoleUser)
	return s
}

func (s *MemStore) seed(id, email, password, name, role string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}

	a := Account{ID: id, Email: email, Name: name, Role: role, Active: true, Hash: hash}
	s.byID[id] = a
	s.byEmail[email] = id
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Create(ctx context.Context, email, password, name, role, id string) (Account, error) {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)
	role = NormalizeRole(role)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return Account{}, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	a := Account{ID: id, Email: email, Name: name, Role: role, Active: true, Hash: hash}
	s.byID[id] = a
	s.byEmail[email] = id
	return a, nil
}

func (s *MemStore) Verify(ctx context.Context, email, password string) (Account, error) {
	email = normalizeEmail(email)

	s.mu.RLock()
	id, ok := s.byEmail[email]
	a := s.byID[id]
	s.mu.RUnlock()

	if !ok {
		return Account{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(a.Hash, []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}

	return a, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	return a, ok, nil
}

func (s *MemStore) List(ctx context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Update(ctx context.Context, id string, patch AccountPatch) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return Account{}, ErrNotFound
	}

	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if other, taken := s.byEmail[email]; taken && other != id {
			return Account{}, ErrEmailExists
		}
		delete(s.byEmail, a.Email)
		a.Email = email
		s.byEmail[email] = id
	}
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.AvatarURL != nil {
		a.AvatarURL = *patch.AvatarURL
	}
	if patch.Role != nil {
		a.Role = NormalizeRole(*patch.Role)
	}

	s.byID[id] = a
	return a, nil
}

func (s *MemStore) ChangePassword(ctx context.Context, id, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword(a.Hash, []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	a.Hash = hash
	s.byID[id] = a
	return nil
}

func (s *MemStore) SetRole(ctx context.Context, id, role string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return Account{}, ErrNotFound
	}

	a.Role = NormalizeRole(role)
	s.byID[id] = a
	return a, nil
}

func (s *MemStore) ToggleActive(ctx context.Context, id string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return Account{}, ErrNotFound
	}

	a.Active = !a.Active
	s.byID[id] = a
	return a, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}

	delete(s.byEmail, a.Email)
	delete(s.byID, id)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
