package inviter

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/op/go-logging.v1"

	"blindrelay/internal/crypto"
	"blindrelay/internal/domain"
	"blindrelay/internal/protocol/wire"
	"blindrelay/internal/util/memzero"
)

// Service creates invitations and submits them to a relay.
type Service struct {
	relay       domain.RelayClient
	sessions    domain.SessionStore
	invitations domain.InvitationStore
	log         *logging.Logger

	rand io.Reader
	now  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRand overrides the key and nonce source.
func WithRand(r io.Reader) Option {
	return func(s *Service) { s.rand = r }
}

// WithClock overrides the time source used for pending invitations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithInvitationStore records every sent invitation so it can be listed later.
func WithInvitationStore(st domain.InvitationStore) Option {
	return func(s *Service) { s.invitations = st }
}

// New constructs an inviter Service.
func New(
	relay domain.RelayClient,
	sessions domain.SessionStore,
	log *logging.Logger,
	opts ...Option,
) *Service {
	s := &Service{relay: relay, sessions: sessions, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInvitation draws a fresh unlock key and derives its invitation id.
func (s *Service) CreateInvitation() (domain.UnlockKey, domain.InvitationID, error) {
	k, err := crypto.GenerateUnlockKey(s.rand)
	if err != nil {
		return domain.UnlockKey{}, domain.InvitationID{}, fmt.Errorf("inviter: unlock key: %w", err)
	}
	return k, crypto.DeriveInvitationID(k), nil
}

// Submit seals secret under unlockKey, prefixes the invitation id, and seals
// the resulting record under sessionKey for the relay.
func (s *Service) Submit(
	unlockKey domain.UnlockKey,
	secret []byte,
	sessionKey domain.SessionKey,
) (domain.Envelope, error) {
	innerNonce, err := crypto.NewNonce(s.rand)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("inviter: inner nonce: %w", err)
	}
	outerNonce, err := crypto.NewNonce(s.rand)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("inviter: outer nonce: %w", err)
	}

	rec := domain.Record{
		ID:              crypto.DeriveInvitationID(unlockKey),
		InnerNonce:      innerNonce,
		InnerCiphertext: crypto.Seal(unlockKey, innerNonce, secret),
	}
	return domain.Envelope{
		Nonce:      outerNonce,
		Ciphertext: crypto.Seal(sessionKey, outerNonce, wire.MarshalRecord(rec)),
	}, nil
}

// Send runs the whole inviter flow with the stored session: create, seal,
// submit. The returned unlock key is what the invitee needs.
func (s *Service) Send(
	ctx context.Context,
	passphrase string,
	secret []byte,
) (domain.UnlockKey, domain.InvitationID, error) {
	session, err := s.sessions.LoadSession(passphrase)
	if err != nil {
		return domain.UnlockKey{}, domain.InvitationID{}, err
	}
	defer memzero.Key((*[32]byte)(&session.Key))

	k, id, err := s.CreateInvitation()
	if err != nil {
		return domain.UnlockKey{}, domain.InvitationID{}, err
	}
	env, err := s.Submit(k, secret, session.Key)
	if err != nil {
		return domain.UnlockKey{}, domain.InvitationID{}, err
	}
	if err := s.relay.SubmitInvitation(ctx, env); err != nil {
		return domain.UnlockKey{}, domain.InvitationID{}, fmt.Errorf("inviter: submit %s: %w", id.Short(), err)
	}
	s.log.Infof("submitted invitation %s", id.Short())

	if s.invitations != nil {
		pending := domain.PendingInvitation{ID: id, UnlockKey: k, CreatedUTC: s.now().UTC().Unix()}
		if err := s.invitations.SaveInvitation(passphrase, pending); err != nil {
			// The relay already holds the record; the key is still returned.
			s.log.Warningf("record invitation %s: %v", id.Short(), err)
		}
	}
	return k, id, nil
}

// Pending lists invitations sent from this client that were recorded locally.
func (s *Service) Pending(passphrase string) ([]domain.PendingInvitation, error) {
	if s.invitations == nil {
		return nil, nil
	}
	return s.invitations.ListInvitations(passphrase)
}

// Forget removes a recorded invitation.
func (s *Service) Forget(passphrase string, id domain.InvitationID) (bool, error) {
	if s.invitations == nil {
		return false, nil
	}
	return s.invitations.DeleteInvitation(passphrase, id)
}

// Compile-time assertion that Service implements domain.InviterService.
var _ domain.InviterService = (*Service)(nil)
