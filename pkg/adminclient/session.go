package adminclient

import (
	"errors"
	"os"
	"path/filepath"
)

// SessionStore persists the admin flag for the life of a login session
type SessionStore interface {
	Load() (bool, error)
	Save(active bool) error
	Clear() error
}

// FileSessionStore keeps the flag as a marker file in the OS temp dir, so it
// survives between invocations within a session but not across a reboot.
type FileSessionStore struct {
	path string
}

// NewFileSessionStore creates a store at the given path.
// An empty path selects the default location in the temp dir.
func NewFileSessionStore(path string) *FileSessionStore {
	if path == "" {
		path = filepath.Join(os.TempDir(), "cakeshop-admin.session")
	}
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Load() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *FileSessionStore) Save(active bool) error {
	if !active {
		return s.Clear()
	}
	return os.WriteFile(s.path, []byte("active\n"), 0o600)
}

func (s *FileSessionStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Session is the admin session controller. The flag is advisory UI state set
// only by a successful PIN validation; no privileged call re-verifies it.
// A hardened design would carry a signed token instead, which would only have
// to replace this one type.
type Session struct {
	store   SessionStore
	isAdmin bool
}

// NewSession creates a session controller, initializing the flag from
// persisted state if present.
func NewSession(store SessionStore) (*Session, error) {
	active, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{store: store, isAdmin: active}, nil
}

// IsAdmin reports whether the admin flag is set
func (s *Session) IsAdmin() bool {
	return s.isAdmin
}

// Activate sets the flag and persists it for the remainder of the session
func (s *Session) Activate() error {
	if err := s.store.Save(true); err != nil {
		return err
	}
	s.isAdmin = true
	return nil
}

// Logout clears the flag and the persisted state
func (s *Session) Logout() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.isAdmin = false
	return nil
}
