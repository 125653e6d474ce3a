package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_EmailNormalization(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	_, err := s.Create(ctx, "  Mixed@Case.COM ", "password1", "Mixed", "", "u1")
	require.NoError(t, err)

	a, err := s.Verify(ctx, "mixed@case.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "mixed@case.com", a.Email)
	assert.Equal(t, RoleUser, a.Role, "empty role normalizes to user")

	_, err = s.Create(ctx, "MIXED@CASE.com", "password1", "Dup", RoleUser, "u2")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestMemStore_UpdateEmailConflict(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	email := "admin@example.com"
	_, err := s.Update(ctx, "2", AccountPatch{Email: &email})
	assert.ErrorIs(t, err, ErrEmailExists)

	// Re-asserting your own email is not a conflict.
	own := "user@example.com"
	a, err := s.Update(ctx, "2", AccountPatch{Email: &own})
	require.NoError(t, err)
	assert.Equal(t, own, a.Email)
}

func TestMemStore_DeleteFreesEmail(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "2"))
	assert.ErrorIs(t, s.Delete(ctx, "2"), ErrNotFound)

	_, err := s.Create(ctx, "user@example.com", "password1", "Again", RoleUser, "u3")
	assert.NoError(t, err)
}
