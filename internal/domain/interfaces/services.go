package interfaces

import (
	"context"

	domaintypes "blindrelay/internal/domain/types"
)

// RelayService is the relay's server role.
type RelayService interface {
	Receive(
		ctx context.Context,
		sessionKey domaintypes.SessionKey,
		envelope domaintypes.Envelope,
	) (domaintypes.InvitationID, error)
	Fetch(
		ctx context.Context,
		id domaintypes.InvitationID,
		sessionKey domaintypes.SessionKey,
	) (domaintypes.Envelope, error)
}

// InviterService creates and sends invitations.
type InviterService interface {
	Send(
		ctx context.Context,
		passphrase string,
		secret []byte,
	) (domaintypes.UnlockKey, domaintypes.InvitationID, error)
}

// InviteeService retrieves and unlocks invitations.
type InviteeService interface {
	Accept(
		ctx context.Context,
		passphrase string,
		unlockKey domaintypes.UnlockKey,
	) ([]byte, error)
}
