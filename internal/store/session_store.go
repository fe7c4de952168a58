package store

import (
	"errors"
	"path/filepath"
	"sync"

	"blindrelay/internal/domain"
)

const (
	sessionFilename = "session.json.enc"
	sessionPurpose  = "blindrelay/session"
)

// ErrNoSession is returned when no relay session has been configured yet.
var ErrNoSession = errors.New("no relay session configured")

// SessionFileStore persists the client's relay session, sealed under a passphrase.
type SessionFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewSessionFileStore returns a SessionFileStore rooted at dir.
func NewSessionFileStore(dir string) *SessionFileStore {
	return &SessionFileStore{dir: dir}
}

// SaveSession replaces the stored session.
func (s *SessionFileStore) SaveSession(passphrase string, session domain.ClientSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeSealedJSON(filepath.Join(s.dir, sessionFilename), passphrase, sessionPurpose, session)
}

// LoadSession reads and opens the stored session.
func (s *SessionFileStore) LoadSession(passphrase string) (domain.ClientSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session domain.ClientSession
	found, err := readSealedJSON(filepath.Join(s.dir, sessionFilename), passphrase, sessionPurpose, &session)
	if err != nil {
		return domain.ClientSession{}, err
	}
	if !found {
		return domain.ClientSession{}, ErrNoSession
	}
	return session, nil
}

// Compile-time assertion that SessionFileStore implements domain.SessionStore.
var _ domain.SessionStore = (*SessionFileStore)(nil)
