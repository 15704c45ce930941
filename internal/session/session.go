// Package session manages the TMDB login session.
//
// The session is kept in the OS keyring. When no keyring is available it is
// written to the config file instead.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/domain"
)

const (
	keyringService = "reel"
	keyringUser    = "tmdb-session"
)

// Fallback persists the session when the keyring cannot (implemented by config.Manager)
type Fallback interface {
	SaveSession(s config.SessionConfig) error
	ClearSession() error
}

// Manager holds the current session and implements domain.SessionProvider
type Manager struct {
	fallback Fallback
	logger   *slog.Logger

	mu    sync.RWMutex
	state config.SessionConfig
}

// NewManager creates a session manager. fallback may be nil.
func NewManager(fallback Fallback, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{fallback: fallback, logger: logger}
}

var _ domain.SessionProvider = (*Manager)(nil)

// Load restores the session from the keyring, or from cfg when the keyring holds none
func (m *Manager) Load(cfg config.SessionConfig) error {
	secret, err := keyring.Get(keyringService, keyringUser)
	switch {
	case err == nil:
		var s config.SessionConfig
		if err := json.Unmarshal([]byte(secret), &s); err != nil {
			return fmt.Errorf("failed to decode stored session: %w", err)
		}
		m.set(s)
		return nil
	case errors.Is(err, keyring.ErrNotFound):
	default:
		m.logger.Warn("keyring unavailable, using config session", "error", err)
	}

	m.set(cfg)
	return nil
}

// Save stores a new session after a successful login
func (m *Manager) Save(result *domain.AuthResult) error {
	s := config.SessionConfig{
		SessionID: result.SessionID,
		AccountID: result.AccountID,
		Username:  result.Username,
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	if err := keyring.Set(keyringService, keyringUser, string(data)); err != nil {
		if m.fallback == nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		m.logger.Warn("keyring unavailable, storing session in config", "error", err)
		if err := m.fallback.SaveSession(s); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
	}

	m.set(s)
	m.logger.Info("session saved", "username", s.Username, "accountID", s.AccountID)
	return nil
}

// Clear forgets the session everywhere it may be stored
func (m *Manager) Clear() error {
	var errs []error
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		errs = append(errs, err)
	}
	if m.fallback != nil {
		if err := m.fallback.ClearSession(); err != nil {
			errs = append(errs, err)
		}
	}

	m.set(config.SessionConfig{})
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (m *Manager) set(s config.SessionConfig) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) SessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.SessionID
}

func (m *Manager) AccountID() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.AccountID
}

// Username returns the logged-in user's display name
func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Username
}

// Authorized returns true if account endpoints can be called
func (m *Manager) Authorized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.SessionID != "" && m.state.AccountID != 0
}
