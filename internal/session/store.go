// Package session persists the login session (username and JWT pair) in
// the state directory, behind one small interface so nothing else in the
// codebase touches credential storage directly.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const fileName = "session.json"

// state is the persisted shape. The file holds credentials, so it is
// written 0600.
type state struct {
	Username     string    `json:"username,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ObtainedAt   time.Time `json:"obtained_at,omitempty"`
}

// Store is the file-backed auth session. It implements the API client's
// TokenSource. Safe for concurrent use.
type Store struct {
	path string

	mu sync.Mutex
	st state
}

// NewStore loads the session file from dir, tolerating its absence.
func NewStore(dir string) (*Store, error) {
	s := &Store{path: filepath.Join(dir, fileName)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &s.st); err != nil {
		return fmt.Errorf("parse session file %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// SaveLogin replaces the session with a fresh login.
func (s *Store) SaveLogin(username, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = state{
		Username:     username,
		AccessToken:  access,
		RefreshToken: refresh,
		ObtainedAt:   time.Now().UTC(),
	}
	return s.persistLocked()
}

// SetTokens stores a renewed pair. An empty refresh keeps the current
// refresh token.
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.AccessToken = access
	if refresh != "" {
		s.st.RefreshToken = refresh
	}
	s.st.ObtainedAt = time.Now().UTC()
	return s.persistLocked()
}

// Clear removes the session file and forgets all state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = state{}
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// AccessToken returns the stored access token, or "".
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.AccessToken
}

// RefreshToken returns the stored refresh token, or "".
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.RefreshToken
}

// Username returns the logged-in username, or "".
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Username
}

// LoggedIn reports whether an access token is stored.
func (s *Store) LoggedIn() bool {
	return s.AccessToken() != ""
}

// ExpiresAt extracts the access token's exp claim without verifying the
// signature; display and pre-emptive refresh only, never authorization.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// ExpiresWithin reports whether the access token expires within d. An
// unparseable or claim-less token reports false.
func (s *Store) ExpiresWithin(d time.Duration) bool {
	exp, ok := s.ExpiresAt()
	if !ok {
		return false
	}
	return time.Until(exp) < d
}
