package relay

import (
	"context"

	"blindrelay/internal/domain"
)

// Loopback is an in-process domain.RelayClient bound to one relay service and
// one client session key.
type Loopback struct {
	svc domain.RelayService
	key domain.SessionKey
}

// NewLoopback returns a client that calls svc directly as the holder of key.
func NewLoopback(svc domain.RelayService, key domain.SessionKey) *Loopback {
	return &Loopback{svc: svc, key: key}
}

// SubmitInvitation hands env to the relay service.
func (l *Loopback) SubmitInvitation(ctx context.Context, env domain.Envelope) error {
	_, err := l.svc.Receive(ctx, l.key, env)
	return err
}

// FetchInvitation takes the envelope for id from the relay service.
func (l *Loopback) FetchInvitation(ctx context.Context, id domain.InvitationID) (domain.Envelope, error) {
	return l.svc.Fetch(ctx, id, l.key)
}

var _ domain.RelayClient = (*Loopback)(nil)
