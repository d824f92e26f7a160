// Package auth reads the identity carried by a Courtside access token and
// issues tokens for the sandbox backend.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mauv0809/courtside/internal/players"
)

var (
	ErrMissingSubject = errors.New("token has no subject")
	ErrInvalidToken   = errors.New("invalid token")
)

// Claims are the claims Courtside access tokens carry.
type Claims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identify returns the user a token belongs to. The signature is not
// checked: the backend is the only party holding the key, and the client
// only needs to know which player it is.
func Identify(token string) (players.Player, error) {
	cl := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, cl); err != nil {
		return players.Player{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return identity(cl)
}

// Verify checks an HS256 token against secret and returns its user.
func Verify(secret, token string) (players.Player, error) {
	cl := &Claims{}
	tok, err := jwt.ParseWithClaims(token, cl, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return players.Player{}, ErrInvalidToken
	}
	return identity(cl)
}

// Issue signs an HS256 token for a user.
func Issue(secret string, user players.Player, ttl time.Duration) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.AuthID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "courtside-sandbox",
		},
	})
	return tok.SignedString([]byte(secret))
}

func identity(cl *Claims) (players.Player, error) {
	sub, err := cl.GetSubject()
	if err != nil {
		return players.Player{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if sub == "" {
		return players.Player{}, ErrMissingSubject
	}
	name := cl.Username
	if name == "" {
		name = cl.Email
	}
	if name == "" {
		name = players.DefaultDisplayName
	}
	return players.Player{AuthID: sub, Username: name}, nil
}
