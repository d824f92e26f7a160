package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mauv0809/courtside/internal/players"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tok, err := Issue("secret", players.Player{AuthID: "u1", Username: "ana"}, time.Hour)
	require.NoError(t, err)

	user, err := Verify("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, players.Player{AuthID: "u1", Username: "ana"}, user)

	_, err = Verify("other", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := Issue("secret", players.Player{AuthID: "u1"}, -time.Minute)
	require.NoError(t, err)
	_, err = Verify("secret", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentify(t *testing.T) {
	t.Run("signed by someone else", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   "a0c3",
			"email": "ana@example.com",
		}).SignedString([]byte("backend-only"))
		require.NoError(t, err)

		user, err := Identify(tok)
		require.NoError(t, err)
		assert.Equal(t, "a0c3", user.AuthID)
		assert.Equal(t, "ana@example.com", user.Username)
	})

	t.Run("no subject", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "authenticated"}).SignedString([]byte("k"))
		require.NoError(t, err)
		_, err = Identify(tok)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Identify("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
