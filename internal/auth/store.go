package auth

import (
	"context"
	"errors"
)

var (
	ErrEmailExists        = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// NormalizeRole maps a missing role to "user". Every path that lets an
// account into the system goes through this.
func NormalizeRole(role string) string {
	if role == "" {
		return RoleUser
	}
	return role
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type Account struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	Hash      []byte `json:"-"`
}

// AccountPatch is a partial profile update; nil fields are untouched.
type AccountPatch struct {
	Email     *string `json:"email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Role      *string `json:"role"`
}

type UserStore interface {
	Create(ctx context.Context, email, password, name, role, id string) (Account, error)
	Verify(ctx context.Context, email, password string) (Account, error)
	Get(ctx context.Context, id string) (Account, bool, error)
	List(ctx context.Context) ([]Account, error)
	Update(ctx context.Context, id string, patch AccountPatch) (Account, error)
	ChangePassword(ctx context.Context, id, current, next string) error
	SetRole(ctx context.Context, id, role string) (Account, error)
	ToggleActive(ctx context.Context, id string) (Account, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
