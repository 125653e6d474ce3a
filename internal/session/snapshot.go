package session

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// SnapshotVersion gates migration: blobs written before version 2 may carry
// a user without a role and an is_admin flag that was never re-derived.
const SnapshotVersion = 2

// snapshot is the persisted subset of the store. Transient fields (loading,
// error) are deliberately absent. is_admin is redundant with user.role and
// is recomputed on every load so the two can never disagree.
type snapshot struct {
	Version int    `json:"version"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
	IsAdmin bool   `json:"is_admin"`
}

// loadSnapshot reads and migrates the persisted blob. A missing, empty, or
// null file short-circuits to defaults without error.
func loadSnapshot(path string) (snapshot, error) {
	def := snapshot{Version: SnapshotVersion}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return def, nil
	}
	if err != nil {
		return def, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return def, nil
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return def, err
	}

	return migrate(snap), nil
}

func migrate(snap snapshot) snapshot {
	if snap.Version < SnapshotVersion && snap.User != nil {
		u := normalizeUser(*snap.User)
		snap.User = &u
	}
	snap.Version = SnapshotVersion

	// Validate against the current schema: unknown roles collapse to "user",
	// is_admin is always re-derived from the role.
	if snap.User != nil && snap.User.Role != RoleUser && snap.User.Role != RoleAdmin {
		snap.User.Role = RoleUser
	}
	snap.IsAdmin = snap.User != nil && snap.User.Role == RoleAdmin

	return snap
}

func saveSnapshot(path string, snap snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, raw, 0o600)
}
