// Package auth holds the locally-stored session record for the external
// authentication collaborator.
//
// daylist never issues credentials itself: the session file carries the
// externally-asserted identity (a clerk-style stable user id plus email),
// and the core only reads it to scope queries and writes.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const sessionFile = "session.json"

// Session is the authentication state visible to the client.
type Session struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	SignedIn   bool   `json:"signed_in"`

	// Loaded reports whether the session state has been read at all; views
	// treat an unloaded session like a pending auth provider.
	Loaded bool `json:"-"`
}

// Manager reads and writes the session file under the config directory.
type Manager struct {
	path string
}

// NewManager creates a Manager storing the session in dir.
func NewManager(dir string) *Manager {
	return &Manager{path: filepath.Join(dir, sessionFile)}
}

// Load reads the current session. A missing file is a signed-out session,
// not an error.
func (m *Manager) Load() (Session, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return Session{Loaded: true}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("failed to parse session: %w", err)
	}
	s.Loaded = true
	return s, nil
}

// SignIn records an externally-asserted identity and returns the new session.
func (m *Manager) SignIn(externalID, email string) (Session, error) {
	if externalID == "" {
		return Session{}, fmt.Errorf("external user id is required")
	}

	s := Session{ExternalID: externalID, Email: email, SignedIn: true, Loaded: true}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return Session{}, fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return Session{}, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return Session{}, fmt.Errorf("failed to write session: %w", err)
	}
	return s, nil
}

// SignOut removes the stored session. Signing out twice is a no-op.
func (m *Manager) SignOut() error {
	err := os.Remove(m.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
