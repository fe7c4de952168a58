package relaystore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/op/go-logging.v1"

	"blindrelay/internal/crypto"
	"blindrelay/internal/domain"
	"blindrelay/internal/instrument"
	"blindrelay/internal/protocol/wire"
	"blindrelay/internal/util/memzero"
)

// DefaultTTL is how long an unfetched invitation is kept.
const DefaultTTL = 336 * time.Hour

// Service receives, stores and hands out sealed invitations.
type Service struct {
	store domain.RecordStore
	log   *logging.Logger

	ttl  time.Duration
	now  func() time.Time
	rand io.Reader
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the record lifetime. Zero keeps records until fetched.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand overrides the nonce source.
func WithRand(r io.Reader) Option {
	return func(s *Service) { s.rand = r }
}

// New constructs a relay Service on top of store.
func New(store domain.RecordStore, log *logging.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Receive opens an inviter's outer envelope and stores the inner envelope
// under its invitation id.
//
// Errors: domain.ErrRelayAuthFailure when the envelope does not open under
// sessionKey (nothing is stored), domain.ErrMalformedRecord when the plaintext
// is too short, domain.ErrConflict when the id is already pending or was
// fetched and has not yet reached its original expiry.
func (s *Service) Receive(
	ctx context.Context,
	sessionKey domain.SessionKey,
	envelope domain.Envelope,
) (domain.InvitationID, error) {
	pt, err := crypto.Open(sessionKey, envelope.Nonce, envelope.Ciphertext)
	if err != nil {
		instrument.Received("auth_failure")
		s.log.Debugf("receive: outer envelope rejected")
		return domain.InvitationID{}, domain.ErrRelayAuthFailure
	}
	defer memzero.Zero(pt)

	rec, err := wire.ParseRecord(pt)
	if err != nil {
		instrument.Received("malformed")
		s.log.Debugf("receive: %d byte record is malformed", len(pt))
		return domain.InvitationID{}, err
	}

	now := s.now()
	stored := domain.StoredRecord{
		InnerNonce:      rec.InnerNonce,
		InnerCiphertext: rec.InnerCiphertext,
		CreatedAt:       now,
	}
	if s.ttl > 0 {
		stored.ExpiresAt = now.Add(s.ttl)
	}

	switch err := s.store.Put(ctx, rec.ID, stored); {
	case errors.Is(err, domain.ErrConflict):
		instrument.Received("conflict")
		s.log.Noticef("receive: %s already pending", rec.ID.Short())
		return domain.InvitationID{}, err
	case err != nil:
		instrument.Received("error")
		s.log.Errorf("receive: store %s: %v", rec.ID.Short(), err)
		return domain.InvitationID{}, fmt.Errorf("relay: store: %w", err)
	}

	instrument.Received("ok")
	s.log.Infof("receive: stored %s (%d bytes)", rec.ID.Short(), len(rec.InnerCiphertext))
	return rec.ID, nil
}

// Fetch takes the record for id, leaving only a tombstone until its expiry,
// and reseals the inner envelope under the fetcher's session key. Of any number of concurrent fetches for one
// id, exactly one succeeds; the rest see domain.ErrNotFound.
func (s *Service) Fetch(
	ctx context.Context,
	id domain.InvitationID,
	sessionKey domain.SessionKey,
) (domain.Envelope, error) {
	// Draw the nonce first so a failing random source cannot consume the record.
	nonce, err := crypto.NewNonce(s.rand)
	if err != nil {
		instrument.Fetched("error")
		return domain.Envelope{}, fmt.Errorf("relay: nonce: %w", err)
	}

	rec, err := s.store.GetAndDelete(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		instrument.Fetched("not_found")
		s.log.Debugf("fetch: %s not found", id.Short())
		return domain.Envelope{}, err
	case err != nil:
		instrument.Fetched("error")
		s.log.Errorf("fetch: take %s: %v", id.Short(), err)
		return domain.Envelope{}, fmt.Errorf("relay: take: %w", err)
	}

	plain := wire.MarshalReturnRecord(domain.ReturnRecord{
		InnerNonce:      rec.InnerNonce,
		InnerCiphertext: rec.InnerCiphertext,
	})
	env := domain.Envelope{
		Nonce:      nonce,
		Ciphertext: crypto.Seal(sessionKey, nonce, plain),
	}

	instrument.Fetched("ok")
	s.log.Infof("fetch: delivered %s", id.Short())
	return env, nil
}

// Sweep deletes every record that has outlived its TTL.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return n, fmt.Errorf("relay: sweep: %w", err)
	}
	if n > 0 {
		instrument.Expired(n)
		s.log.Infof("sweep: dropped %d expired invitations", n)
	}
	return n, nil
}

// Run sweeps every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if _, err := s.Sweep(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warningf("%v", err)
		}
	}
}

// Compile-time assertion that Service implements domain.RelayService.
var _ domain.RelayService = (*Service)(nil)
