package session

import (
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return New(db)
}

func TestAccessToken(t *testing.T) {
	s := setupTestStore(t)

	tok, err := s.AccessToken()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.SetAccessToken(" abc "))
	tok, err = s.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.SetAccessToken("def"))
	tok, _ = s.AccessToken()
	assert.Equal(t, "def", tok)

	assert.ErrorIs(t, s.SetAccessToken("  "), courtside.ErrAuthTokenMissing)

	require.NoError(t, s.ClearAccessToken())
	tok, err = s.AccessToken()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestThemeMode(t *testing.T) {
	s := setupTestStore(t)

	mode, err := s.ThemeMode()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, mode)

	require.NoError(t, s.SetThemeMode(ThemeDark))
	mode, _ = s.ThemeMode()
	assert.Equal(t, ThemeDark, mode)

	assert.ErrorIs(t, s.SetThemeMode("sepia"), ErrInvalidTheme)
	mode, _ = s.ThemeMode()
	assert.Equal(t, ThemeDark, mode)
}

func TestRecoveryLifecycle(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Recovery()
	assert.ErrorIs(t, err, ErrNoRecovery)

	want := Recovery{AccessToken: "rec", RefreshToken: "ref", TokenType: "bearer", ExpiresIn: 3600, ExpiresAt: 99, Type: "recovery"}
	require.NoError(t, s.SaveRecovery(want))
	got, err := s.Recovery()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.SetAccessToken("main"))
	require.NoError(t, s.ClearSession())
	_, err = s.Recovery()
	assert.ErrorIs(t, err, ErrNoRecovery)

	tok, _ := s.AccessToken()
	assert.Equal(t, "main", tok, "clearing the session keeps local state")
}

func TestParseRecoveryFragment(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("full url", func(t *testing.T) {
		r, err := ParseRecoveryFragment("https://courtside.app/reset#access_token=tok&refresh_token=r&expires_in=3600&token_type=bearer&type=recovery", now)
		require.NoError(t, err)
		assert.Equal(t, "tok", r.AccessToken)
		assert.Equal(t, "r", r.RefreshToken)
		assert.Equal(t, 3600, r.ExpiresIn)
		assert.Equal(t, now.Unix()+3600, r.ExpiresAt)
	})

	t.Run("bare fragment keeps expires_at", func(t *testing.T) {
		r, err := ParseRecoveryFragment("#access_token=tok&expires_at=42&type=recovery", now)
		require.NoError(t, err)
		assert.Equal(t, int64(42), r.ExpiresAt)
	})

	tests := []struct {
		name string
		link string
	}{
		{"signup link", "#access_token=tok&type=signup"},
		{"no type", "#access_token=tok"},
		{"no token", "#type=recovery"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecoveryFragment(tt.link, now)
			assert.ErrorIs(t, err, ErrNotRecoveryLink)
		})
	}
}
