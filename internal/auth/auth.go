// Package auth stores and retrieves the API session token.
package auth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/dayplan/dayplan-cli/internal/output"
)

const (
	keyringService = "dayplan-cli"
	keyringUser    = "session-token"
)

// Manager resolves the session token. Precedence: DAYPLAN_TOKEN env var,
// then the OS keyring, then the token file fallback for headless hosts.
type Manager struct {
	mu sync.Mutex

	// tokenFile overrides the default fallback path in tests.
	tokenFile string
	// disableKeyring skips the OS keyring in tests and on headless hosts.
	disableKeyring bool
}

// NewManager creates a token manager.
func NewManager() *Manager {
	return &Manager{}
}

// Token returns the session token, or an auth error when none is stored.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tok := os.Getenv("DAYPLAN_TOKEN"); tok != "" {
		return tok, nil
	}

	if !m.disableKeyring {
		if tok, err := keyring.Get(keyringService, keyringUser); err == nil && tok != "" {
			return tok, nil
		}
	}

	if tok, err := m.readTokenFile(); err == nil && tok != "" {
		return tok, nil
	}

	return "", output.ErrAuth("not logged in")
}

// SetToken stores the token in the keyring, falling back to a mode 0600
// file when no keyring backend is available.
func (m *Manager) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token == "" {
		return output.ErrUsage("token must not be empty")
	}

	if !m.disableKeyring {
		if err := keyring.Set(keyringService, keyringUser, token); err == nil {
			return nil
		}
	}

	return m.writeTokenFile(token)
}

// Clear removes the stored token from all backends.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.disableKeyring {
		// Best effort: a missing entry or absent backend is not a failure.
		_ = keyring.Delete(keyringService, keyringUser)
	}

	path := m.tokenFilePath()
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// LoggedIn reports whether a token is available from any source.
func (m *Manager) LoggedIn() bool {
	_, err := m.Token()
	return err == nil
}

func (m *Manager) tokenFilePath() string {
	if m.tokenFile != "" {
		return m.tokenFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dayplan", "token")
}

func (m *Manager) readTokenFile() (string, error) {
	path := m.tokenFilePath()
	if path == "" {
		return "", os.ErrNotExist
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: Well-known token path
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (m *Manager) writeTokenFile(token string) error {
	path := m.tokenFilePath()
	if path == "" {
		return output.ErrAuth("cannot resolve home directory for token storage")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}
