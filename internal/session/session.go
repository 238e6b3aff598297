// Package session holds the client's session token. A Session is created once
// at startup and handed to the components that need the token.
package session

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// TokenKey is the fixed storage key for the session token.
const TokenKey = "token"

// ErrNoToken is returned by a Backend when nothing is stored.
var ErrNoToken = errors.New("no session token stored")

// Backend persists the raw token.
type Backend interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

// Option configures a Session.
type Option func(*Session)

// WithExpiryCheck makes Get report tokens whose exp claim has passed as absent.
func WithExpiryCheck(enabled bool) Option {
	return func(s *Session) { s.checkExpiry = enabled }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is the explicit session context shared by the api client and the forms.
type Session struct {
	backend     Backend
	checkExpiry bool
	now         func() time.Time
	mu          sync.RWMutex
}

func New(backend Backend, opts ...Option) *Session {
	s := &Session{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set persists token, replacing any previous one.
func (s *Session) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Save(token)
}

// Get returns the stored token, or false when none is usable.
func (s *Session) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, err := s.backend.Load()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			slog.Warn("session token load failed", "error", err)
		}
		return "", false
	}
	if strings.TrimSpace(token) == "" {
		return "", false
	}
	if s.checkExpiry && isExpired(token, s.now()) {
		slog.Debug("session token expired")
		return "", false
	}
	return token, true
}

// Clear removes the stored token. Clearing an empty session is not an error.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(); err != nil && !errors.Is(err, ErrNoToken) {
		return err
	}
	return nil
}

// Expired reports whether the stored token carries an exp claim in the past.
// It does not depend on WithExpiryCheck.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, err := s.backend.Load()
	if err != nil {
		return false
	}
	return isExpired(token, s.now())
}

// Status summarizes the session for display.
type Status struct {
	Present   bool       `json:"present"`
	Expired   bool       `json:"expired"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Describe reports presence and expiry without exposing the token.
func (s *Session) Describe() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, err := s.backend.Load()
	if err != nil || strings.TrimSpace(token) == "" {
		return Status{}
	}
	st := Status{Present: true}
	if exp, ok := ExpiresAt(token); ok {
		st.ExpiresAt = &exp
		st.Expired = !s.now().Before(exp)
	}
	return st
}
