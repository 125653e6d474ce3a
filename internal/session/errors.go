package session

import (
	"errors"
	"net/http"
)

// AuthError covers every authentication/authorization failure: invalid
// credentials, duplicate registration, unauthorized token, wrong current
// password. Status mirrors HTTP semantics even in mock mode.
type AuthError struct {
	Message string
	Status  int
}

func (e *AuthError) Error() string { return e.Message }

// ErrDevLoginDisabled is returned by LoginAs when the store was not built
// with dev login enabled.
var ErrDevLoginDisabled = errors.New("dev login is disabled")

// IsUnauthorized reports whether err is an AuthError with a 401 status.
func IsUnauthorized(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}
