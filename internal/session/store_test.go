package session_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ShopFront/internal/session"
)

func newMockStore(t *testing.T, opts session.Options) *session.Store {
	t.Helper()

	if opts.SnapshotPath == "" {
		opts.SnapshotPath = filepath.Join(t.TempDir(), "session.json")
	}
	return session.New(opts)
}

func TestStore_LoginInvalidCredentials(t *testing.T) {
	s := newMockStore(t, session.Options{})

	err := s.Login(context.Background(), session.Credentials{Email: "admin@example.com", Password: "wrong"})
	require.Error(t, err)

	var ae *session.AuthError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusUnauthorized, ae.Status)

	st := s.State()
	assert.Nil(t, st.User)
	assert.Equal(t, "Invalid email or password", st.Err)
	assert.False(t, st.Loading)

	s.ClearError()
	assert.Empty(t, s.State().Err)
}

func TestStore_LoginAdmin(t *testing.T) {
	s := newMockStore(t, session.Options{})

	require.NoError(t, s.Login(context.Background(), session.Credentials{
		Email: "admin@example.com", Password: "admin123",
	}))

	st := s.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "mock-token-1", st.Token)
	assert.True(t, s.IsAdmin())
	assert.Empty(t, st.Err)
}

func TestStore_RegisterThenLogin(t *testing.T) {
	s := newMockStore(t, session.Options{})
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, session.RegisterPayload{Email: "new@x.com", Password: "p"}))

	registered := s.State()
	require.NotNil(t, registered.User, "registration logs the account in")
	assert.Equal(t, session.RoleUser, registered.User.Role)
	assert.Equal(t, "new", registered.User.Name)

	s.Logout()

	require.NoError(t, s.Login(ctx, session.Credentials{Email: "new@x.com", Password: "p"}))
	assert.Equal(t, registered.User.ID, s.State().User.ID)

	err := s.Register(ctx, session.RegisterPayload{Email: "new@x.com", Password: "p"})
	var ae *session.AuthError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusConflict, ae.Status)
}

func TestStore_SetRoleAndLogout(t *testing.T) {
	s := newMockStore(t, session.Options{})

	require.NoError(t, s.Login(context.Background(), session.Credentials{
		Email: "user@example.com", Password: "user12345",
	}))
	require.False(t, s.IsAdmin())

	s.SetRole(session.RoleAdmin)
	assert.True(t, s.IsAdmin())

	s.Logout()
	assert.Nil(t, s.State().User)
	assert.False(t, s.IsAdmin())
	assert.Empty(t, s.State().Token)
}

func TestStore_SetRoleWithoutUserIsNoop(t *testing.T) {
	s := newMockStore(t, session.Options{})

	s.SetRole(session.RoleAdmin)
	assert.Nil(t, s.State().User)
	assert.False(t, s.IsAdmin())
}

func TestStore_LoginAsGate(t *testing.T) {
	s := newMockStore(t, session.Options{})
	err := s.LoginAs(session.User{Email: "ghost@x.com"}, "tok")
	assert.ErrorIs(t, err, session.ErrDevLoginDisabled)
	assert.Nil(t, s.State().User)

	dev := newMockStore(t, session.Options{DevLogin: true})
	require.NoError(t, dev.LoginAs(session.User{Email: "ghost@x.com"}, "tok"))

	st := dev.State()
	require.NotNil(t, st.User)
	assert.Equal(t, session.RoleUser, st.User.Role, "missing role normalizes to user")
	assert.Equal(t, "tok", st.Token)
}

func TestStore_FetchProfileUnauthorizedForcesLogout(t *testing.T) {
	s := newMockStore(t, session.Options{DevLogin: true})

	require.NoError(t, s.LoginAs(session.User{ID: "999", Email: "gone@x.com"}, "mock-token-999"))

	err := s.FetchProfile(context.Background())
	require.True(t, session.IsUnauthorized(err))

	st := s.State()
	assert.Nil(t, st.User)
	assert.Empty(t, st.Token)
}

func TestStore_UpdateProfile(t *testing.T) {
	s := newMockStore(t, session.Options{})
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, session.Credentials{Email: "user@example.com", Password: "user12345"}))

	name := "Renamed"
	require.NoError(t, s.UpdateProfile(ctx, session.ProfilePatch{Name: &name}))
	assert.Equal(t, "Renamed", s.State().User.Name)
}

func TestStore_ChangePassword(t *testing.T) {
	s := newMockStore(t, session.Options{})
	ctx := context.Background()

	require.NoError(t, s.Login(ctx, session.Credentials{Email: "user@example.com", Password: "user12345"}))

	err := s.ChangePassword(ctx, "wrong", "next12345")
	var ae *session.AuthError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "Current password is incorrect", s.State().Err)

	require.NoError(t, s.ChangePassword(ctx, "user12345", "next12345"))

	s.Logout()
	assert.NoError(t, s.Login(ctx, session.Credentials{Email: "user@example.com", Password: "next12345"}))
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	first := session.New(session.Options{SnapshotPath: path})
	require.NoError(t, first.Login(context.Background(), session.Credentials{
		Email: "admin@example.com", Password: "admin123",
	}))

	second := session.New(session.Options{SnapshotPath: path})

	st := second.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "admin@example.com", st.User.Email)
	assert.Equal(t, "mock-token-1", st.Token)
	assert.True(t, second.IsAdmin())
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)

	// The mock token encodes the account id, so a restored session can still
	// refresh its profile.
	require.NoError(t, second.FetchProfile(context.Background()))
}

func TestStore_ConcurrentLoginsLastWriteWins(t *testing.T) {
	s := newMockStore(t, session.Options{})

	var wg sync.WaitGroup
	for _, creds := range []session.Credentials{
		{Email: "admin@example.com", Password: "admin123"},
		{Email: "user@example.com", Password: "user12345"},
	} {
		wg.Add(1)
		go func(c session.Credentials) {
			defer wg.Done()
			_ = s.Login(context.Background(), c)
		}(creds)
	}
	wg.Wait()

	// Whichever login finished last wins, but the state must be internally
	// consistent: the token matches the user and IsAdmin matches the role.
	st := s.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "mock-token-"+st.User.ID, st.Token)
	assert.Equal(t, st.User.Role == session.RoleAdmin, s.IsAdmin())
	assert.False(t, st.Loading)
}
