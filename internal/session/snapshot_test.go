package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBlob(t *testing.T, raw string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	return path
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	snap, err := loadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)
	assert.Equal(t, SnapshotVersion, snap.Version)
}

func TestLoadSnapshot_EmptyAndNull(t *testing.T) {
	for _, raw := range []string{"", "   \n", "null"} {
		snap, err := loadSnapshot(writeBlob(t, raw))
		require.NoError(t, err, "blob %q", raw)
		assert.Nil(t, snap.User)
		assert.Empty(t, snap.Token)
	}
}

func TestLoadSnapshot_Corrupt(t *testing.T) {
	snap, err := loadSnapshot(writeBlob(t, `{"version": 2, "user": {`))
	require.Error(t, err)
	assert.Nil(t, snap.User, "a corrupt blob yields defaults, not partial state")
	assert.Empty(t, snap.Token)
}

func TestLoadSnapshot_MigratesV1(t *testing.T) {
	// A version-1 blob: no role on the user, and an is_admin flag that was
	// written independently and may lie.
	raw := `{"version":1,"user":{"id":"9","email":"old@example.com","name":"Old"},"token":"mock-token-9","is_admin":true}`

	snap, err := loadSnapshot(writeBlob(t, raw))
	require.NoError(t, err)

	require.NotNil(t, snap.User)
	assert.Equal(t, RoleUser, snap.User.Role)
	assert.False(t, snap.IsAdmin, "is_admin is re-derived from the role, not trusted")
	assert.Equal(t, "mock-token-9", snap.Token)
	assert.Equal(t, SnapshotVersion, snap.Version)
}

func TestLoadSnapshot_UnknownRoleCollapses(t *testing.T) {
	raw := `{"version":2,"user":{"id":"3","email":"x@example.com","role":"owner"},"token":"mock-token-3","is_admin":true}`

	snap, err := loadSnapshot(writeBlob(t, raw))
	require.NoError(t, err)

	require.NotNil(t, snap.User)
	assert.Equal(t, RoleUser, snap.User.Role)
	assert.False(t, snap.IsAdmin)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")

	in := snapshot{
		Version: SnapshotVersion,
		User:    &User{ID: "1", Email: "admin@example.com", Role: RoleAdmin},
		Token:   "mock-token-1",
		IsAdmin: true,
	}
	require.NoError(t, saveSnapshot(path, in))

	out, err := loadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
