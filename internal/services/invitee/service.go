package invitee

import (
	"context"
	"fmt"

	"gopkg.in/op/go-logging.v1"

	"blindrelay/internal/crypto"
	"blindrelay/internal/domain"
	"blindrelay/internal/protocol/wire"
	"blindrelay/internal/util/memzero"
)

// Service retrieves and unlocks invitations.
type Service struct {
	relay    domain.RelayClient
	sessions domain.SessionStore
	log      *logging.Logger
}

// New constructs an invitee Service.
func New(relay domain.RelayClient, sessions domain.SessionStore, log *logging.Logger) *Service {
	return &Service{relay: relay, sessions: sessions, log: log}
}

// Retrieve opens the relay's return envelope under sessionKey.
//
// Errors: domain.ErrRelayAuthFailure when the envelope does not open,
// domain.ErrMalformedRecord when its plaintext is too short.
func (s *Service) Retrieve(sessionKey domain.SessionKey, envelope domain.Envelope) (domain.ReturnRecord, error) {
	pt, err := crypto.Open(sessionKey, envelope.Nonce, envelope.Ciphertext)
	if err != nil {
		return domain.ReturnRecord{}, domain.ErrRelayAuthFailure
	}
	defer memzero.Zero(pt)
	return wire.ParseReturnRecord(pt)
}

// Unlock opens the inner envelope with the out-of-band unlock key. A wrong
// key and a tampered record both yield domain.ErrAuthenticationFailure.
func (s *Service) Unlock(
	unlockKey domain.UnlockKey,
	innerNonce domain.Nonce,
	innerCiphertext []byte,
) ([]byte, error) {
	return crypto.Open(unlockKey, innerNonce, innerCiphertext)
}

// Accept runs the whole invitee flow with the stored session: derive the id,
// fetch, retrieve, unlock. A successful Accept consumes the invitation at the
// relay; a second Accept for the same key reports domain.ErrNotFound.
func (s *Service) Accept(
	ctx context.Context,
	passphrase string,
	unlockKey domain.UnlockKey,
) ([]byte, error) {
	session, err := s.sessions.LoadSession(passphrase)
	if err != nil {
		return nil, err
	}
	defer memzero.Key((*[32]byte)(&session.Key))

	id := crypto.DeriveInvitationID(unlockKey)
	env, err := s.relay.FetchInvitation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("invitee: fetch %s: %w", id.Short(), err)
	}
	rec, err := s.Retrieve(session.Key, env)
	if err != nil {
		return nil, fmt.Errorf("invitee: %s: %w", id.Short(), err)
	}
	secret, err := s.Unlock(unlockKey, rec.InnerNonce, rec.InnerCiphertext)
	if err != nil {
		return nil, fmt.Errorf("invitee: unlock %s: %w", id.Short(), err)
	}
	s.log.Infof("accepted invitation %s", id.Short())
	return secret, nil
}

// Compile-time assertion that Service implements domain.InviteeService.
var _ domain.InviteeService = (*Service)(nil)
