// Package session persists the client state that outlives a single command:
// the access token, the theme preference and an in-progress password
// recovery.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/courtside"
	"github.com/vmihailenco/msgpack/v5"
)

type table string

const (
	local   table = "local_storage"
	session table = "session_storage"
)

// Store reads and writes client state in the state database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ courtside.TokenStore = (*Store)(nil)

// New creates a Store on an initialized state database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// AccessToken returns the stored access token, or "" when logged out.
func (s *Store) AccessToken() (string, error) {
	v, err := s.get(local, KeyAccessToken)
	return string(v), err
}

// SetAccessToken stores the access token.
func (s *Store) SetAccessToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return courtside.ErrAuthTokenMissing
	}
	return s.set(local, KeyAccessToken, []byte(token))
}

// ClearAccessToken removes the access token.
func (s *Store) ClearAccessToken() error {
	return s.del(local, KeyAccessToken)
}

// ThemeMode returns the theme preference, light when unset or unknown.
func (s *Store) ThemeMode() (ThemeMode, error) {
	v, err := s.get(local, KeyThemeMode)
	if err != nil {
		return ThemeLight, err
	}
	if ThemeMode(v) == ThemeDark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

// SetThemeMode stores the theme preference.
func (s *Store) SetThemeMode(mode ThemeMode) error {
	if mode != ThemeLight && mode != ThemeDark {
		return ErrInvalidTheme
	}
	return s.set(local, KeyThemeMode, []byte(mode))
}

// SaveRecovery keeps a recovery session for the rest of the session.
func (s *Store) SaveRecovery(r Recovery) error {
	blob, err := msgpack.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode recovery session: %w", err)
	}
	if err := s.set(session, KeyRecoverySession, blob); err != nil {
		return err
	}
	return s.set(session, KeyRecoveryToken, []byte(r.AccessToken))
}

// Recovery returns the saved recovery session.
func (s *Store) Recovery() (Recovery, error) {
	blob, err := s.get(session, KeyRecoverySession)
	if err != nil {
		return Recovery{}, err
	}
	if len(blob) == 0 {
		return Recovery{}, ErrNoRecovery
	}
	var r Recovery
	if err := msgpack.Unmarshal(blob, &r); err != nil {
		return Recovery{}, fmt.Errorf("failed to decode recovery session: %w", err)
	}
	return r, nil
}

// ClearSession drops everything scoped to the current session.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM " + string(session)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	log.Debug("Session storage cleared")
	return nil
}

// ParseRecoveryFragment reads the session from a recovery link. It accepts a
// full URL or just its fragment, and rejects anything that is not of type
// recovery.
func ParseRecoveryFragment(link string, now time.Time) (Recovery, error) {
	fragment := strings.TrimSpace(link)
	if i := strings.Index(fragment, "#"); i >= 0 {
		fragment = fragment[i+1:]
	}
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return Recovery{}, fmt.Errorf("%w: %w", ErrNotRecoveryLink, err)
	}
	if values.Get("type") != "recovery" || values.Get("access_token") == "" {
		return Recovery{}, ErrNotRecoveryLink
	}
	r := Recovery{
		AccessToken:  values.Get("access_token"),
		RefreshToken: values.Get("refresh_token"),
		TokenType:    values.Get("token_type"),
		Type:         "recovery",
	}
	if v := values.Get("expires_in"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.ExpiresIn = n
		}
	}
	if v := values.Get("expires_at"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			r.ExpiresAt = n
		}
	}
	if r.ExpiresAt == 0 && r.ExpiresIn > 0 {
		r.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second).Unix()
	}
	return r, nil
}

func (s *Store) get(t table, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var v []byte
	err := s.db.QueryRow("SELECT value FROM "+string(t)+" WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) set(t table, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO `+string(t)+` (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	log.Debug("Stored client state", "key", key)
	return nil
}

func (s *Store) del(t table, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM "+string(t)+" WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
