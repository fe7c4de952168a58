package store

import (
	"path/filepath"
	"sort"
	"sync"

	"blindrelay/internal/domain"
)

const (
	invitationsFilename = "invitations.json.enc"
	invitationsPurpose  = "blindrelay/invitations"
)

// InvitationFileStore keeps the inviter's pending invitations on disk. The
// unlock keys inside are sealed under the passphrase.
type InvitationFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewInvitationFileStore returns an InvitationFileStore rooted at dir.
func NewInvitationFileStore(dir string) *InvitationFileStore {
	return &InvitationFileStore{dir: dir}
}

// SaveInvitation merges inv into the stored set.
func (s *InvitationFileStore) SaveInvitation(passphrase string, inv domain.PendingInvitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(passphrase)
	if err != nil {
		return err
	}
	m[inv.ID.String()] = inv
	return writeSealedJSON(s.path(), passphrase, invitationsPurpose, m)
}

// ListInvitations returns the pending invitations, oldest first.
func (s *InvitationFileStore) ListInvitations(passphrase string) ([]domain.PendingInvitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(passphrase)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PendingInvitation, 0, len(m))
	for _, inv := range m {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedUTC != out[j].CreatedUTC {
			return out[i].CreatedUTC < out[j].CreatedUTC
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// DeleteInvitation removes the invitation with id and reports whether it existed.
func (s *InvitationFileStore) DeleteInvitation(passphrase string, id domain.InvitationID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(passphrase)
	if err != nil {
		return false, err
	}
	if _, ok := m[id.String()]; !ok {
		return false, nil
	}
	delete(m, id.String())
	return true, writeSealedJSON(s.path(), passphrase, invitationsPurpose, m)
}

func (s *InvitationFileStore) load(passphrase string) (map[string]domain.PendingInvitation, error) {
	m := make(map[string]domain.PendingInvitation)
	if _, err := readSealedJSON(s.path(), passphrase, invitationsPurpose, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *InvitationFileStore) path() string {
	return filepath.Join(s.dir, invitationsFilename)
}

// Compile-time assertion that InvitationFileStore implements domain.InvitationStore.
var _ domain.InvitationStore = (*InvitationFileStore)(nil)
