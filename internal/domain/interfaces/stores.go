package interfaces

import (
	"context"
	"time"

	domaintypes "blindrelay/internal/domain/types"
)

// RecordStore is the relay's key-value store. Put and GetAndDelete must each
// be atomic with respect to concurrent calls for the same id.
type RecordStore interface {
	// Put inserts rec unless a live record or an unexpired tombstone exists for id.
	Put(ctx context.Context, id domaintypes.InvitationID, rec domaintypes.StoredRecord) error
	// GetAndDelete returns the live record for id and replaces it with a
	// tombstone that lasts until the record's ExpiresAt.
	GetAndDelete(ctx context.Context, id domaintypes.InvitationID) (domaintypes.StoredRecord, error)
	// DeleteExpired drops every record and tombstone expired at now and reports
	// how many unfetched records it dropped.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Close() error
}

// SessionKeyring resolves the relay's session key for a client.
type SessionKeyring interface {
	SessionKey(ctx context.Context, client domaintypes.ClientID) (domaintypes.SessionKey, error)
}

// SessionStore persists the client's relay session on disk.
type SessionStore interface {
	SaveSession(passphrase string, session domaintypes.ClientSession) error
	LoadSession(passphrase string) (domaintypes.ClientSession, error)
}

// InvitationStore keeps the inviter's pending invitations.
type InvitationStore interface {
	SaveInvitation(passphrase string, inv domaintypes.PendingInvitation) error
	ListInvitations(passphrase string) ([]domaintypes.PendingInvitation, error)
	DeleteInvitation(passphrase string, id domaintypes.InvitationID) (bool, error)
}
