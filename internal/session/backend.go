package session

import "context"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the session identity. Role defaults to "user" when absent; every
// path that puts a User into the store runs it through normalizeUser first.
type User struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
}

func normalizeUser(u User) User {
	if u.Role == "" {
		u.Role = RoleUser
	}
	return u
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// ProfilePatch is a partial profile update; nil fields are untouched.
type ProfilePatch struct {
	Email     *string `json:"email,omitempty"`
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Role      *string `json:"role,omitempty"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Backend is the store's upstream: either the in-process mock or a real
// HTTP API. Selected once when the store is built.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (AuthResult, error)
	Register(ctx context.Context, payload RegisterPayload) (AuthResult, error)
	FetchProfile(ctx context.Context, token string) (User, error)
	UpdateProfile(ctx context.Context, token string, patch ProfilePatch) (User, error)
	ChangePassword(ctx context.Context, token, current, next string) error
}
