package courtside

import (
	"errors"
	"net/http"
	"strings"
)

// ErrAuthTokenMissing is returned before any request is made when an
// authenticated endpoint is called without a token.
var ErrAuthTokenMissing = errors.New("Authentication token missing")

// OptionalAuthHeader returns an Authorization header when a token is
// available and an empty header otherwise.
func OptionalAuthHeader(token string) http.Header {
	h := http.Header{}
	if token = strings.TrimSpace(token); token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// RequireAuthHeader is like OptionalAuthHeader but fails without a token.
func RequireAuthHeader(token string) (http.Header, error) {
	h := OptionalAuthHeader(token)
	if h.Get("Authorization") == "" {
		return nil, ErrAuthTokenMissing
	}
	return h, nil
}

// StaticToken is a TokenStore holding a fixed token.
type StaticToken string

func (t StaticToken) AccessToken() (string, error) {
	return string(t), nil
}
