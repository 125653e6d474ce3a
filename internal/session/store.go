package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store holds the current user's authentication state. There is one per
// process; all mutation goes through its operations. Concurrent operations
// race last-write-wins, which is acceptable for a single-user session.
type Store struct {
	backend  Backend
	log      *zap.Logger
	path     string
	devLogin bool

	mu      sync.Mutex
	user    *User
	token   string
	loading bool
	lastErr string
}

type Options struct {
	// APIBase switches the store to real HTTP calls. Empty means mock mode.
	APIBase string
	// SnapshotPath is where session state persists. Empty disables
	// persistence.
	SnapshotPath string
	// DevLogin enables LoginAs. Leave off outside development.
	DevLogin bool
	// MockDelay adds artificial latency to mock-mode calls.
	MockDelay time.Duration

	Log *zap.Logger
}

// New builds the store, selecting the backend exactly once, and restores any
// persisted session. A broken snapshot is logged and ignored.
func New(opts Options) *Store {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	var backend Backend
	if opts.APIBase != "" {
		backend = NewClient(opts.APIBase)
	} else {
		backend = NewMockBackend(opts.MockDelay)
	}

	s := &Store{
		backend:  backend,
		log:      log,
		path:     opts.SnapshotPath,
		devLogin: opts.DevLogin,
	}

	if s.path != "" {
		snap, err := loadSnapshot(s.path)
		if err != nil {
			log.Warn("session snapshot unreadable, starting fresh", zap.Error(err))
		} else {
			s.user = snap.User
			s.token = snap.Token
		}
	}

	return s
}

// State is a point-in-time copy of the store's fields.
type State struct {
	User    *User
	Token   string
	Loading bool
	Err     string
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{Token: s.token, Loading: s.loading, Err: s.lastErr}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// IsAdmin is derived from the role on every read; there is no stored flag to
// fall out of sync.
func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.Role == RoleAdmin
}

func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

// fail records the failure and resets loading; the caller still gets the
// error back so it can surface it immediately.
func (s *Store) fail(err error) {
	s.mu.Lock()
	s.loading = false
	s.lastErr = err.Error()
	s.mu.Unlock()
}

func (s *Store) Login(ctx context.Context, creds Credentials) error {
	s.begin()

	res, err := s.backend.Login(ctx, creds)
	if err != nil {
		s.fail(err)
		return err
	}

	s.ingest(res.User, res.Token)
	s.persist()
	return nil
}

func (s *Store) Register(ctx context.Context, payload RegisterPayload) error {
	s.begin()

	res, err := s.backend.Register(ctx, payload)
	if err != nil {
		s.fail(err)
		return err
	}

	// Registration logs the new account in immediately.
	s.ingest(res.User, res.Token)
	s.persist()
	return nil
}

// Logout clears the session unconditionally; it cannot fail.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()

	s.persist()
}

// LoginAs injects an identity without credentials. Development convenience
// only; it refuses to run unless the store was built with DevLogin set.
func (s *Store) LoginAs(user User, token string) error {
	if !s.devLogin {
		return ErrDevLoginDisabled
	}

	s.ingest(user, token)
	s.persist()
	return nil
}

// SetRole changes the current user's role in one atomic update. No-op when
// nobody is logged in.
func (s *Store) SetRole(role string) {
	s.mu.Lock()
	if s.user != nil {
		u := *s.user
		u.Role = role
		u = normalizeUser(u)
		s.user = &u
	}
	s.mu.Unlock()

	s.persist()
}

// FetchProfile refreshes the user from the token. An unauthorized result
// forces a logout.
func (s *Store) FetchProfile(ctx context.Context) error {
	s.begin()

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	u, err := s.backend.FetchProfile(ctx, token)
	if err != nil {
		s.fail(err)
		if IsUnauthorized(err) {
			s.Logout()
		}
		return err
	}

	s.ingestUser(u)
	s.persist()
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	s.begin()

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	u, err := s.backend.UpdateProfile(ctx, token, patch)
	if err != nil {
		s.fail(err)
		return err
	}

	s.ingestUser(u)
	s.persist()
	return nil
}

func (s *Store) ChangePassword(ctx context.Context, current, next string) error {
	s.begin()

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if err := s.backend.ChangePassword(ctx, token, current, next); err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	return nil
}

// ingest normalizes and installs a user+token pair, clearing loading and
// error in the same update.
func (s *Store) ingest(user User, token string) {
	u := normalizeUser(user)

	s.mu.Lock()
	s.user = &u
	s.token = token
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()
}

// ingestUser replaces the user but keeps the current token.
func (s *Store) ingestUser(user User) {
	u := normalizeUser(user)

	s.mu.Lock()
	s.user = &u
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) persist() {
	if s.path == "" {
		return
	}

	s.mu.Lock()
	snap := snapshot{Version: SnapshotVersion, Token: s.token}
	if s.user != nil {
		u := *s.user
		snap.User = &u
		snap.IsAdmin = u.Role == RoleAdmin
	}
	s.mu.Unlock()

	if err := saveSnapshot(s.path, snap); err != nil {
		s.log.Warn("session snapshot write failed", zap.Error(err))
	}
}
