package session

import "errors"

// Keys of the persisted client state.
const (
	KeyAccessToken     = "courtside_access_token"
	KeyThemeMode       = "themeMode"
	KeyRecoveryToken   = "password-recovery-access-token"
	KeyRecoverySession = "supabase-password-recovery-session"
)

// ThemeMode is the colour scheme preference.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

var (
	ErrInvalidTheme    = errors.New("theme must be light or dark")
	ErrNotRecoveryLink = errors.New("link is not a password recovery link")
	ErrNoRecovery      = errors.New("no password recovery in progress")
)

// Recovery is the session carried by a password recovery link.
type Recovery struct {
	AccessToken  string `msgpack:"access_token"`
	RefreshToken string `msgpack:"refresh_token"`
	TokenType    string `msgpack:"token_type"`
	ExpiresIn    int    `msgpack:"expires_in"`
	ExpiresAt    int64  `msgpack:"expires_at"`
	Type         string `msgpack:"type"`
}
