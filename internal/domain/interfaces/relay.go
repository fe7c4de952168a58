package interfaces

import (
	"context"

	domaintypes "blindrelay/internal/domain/types"
)

// RelayClient is how agents talk to the relay server.
type RelayClient interface {
	SubmitInvitation(ctx context.Context, envelope domaintypes.Envelope) error
	FetchInvitation(
		ctx context.Context,
		id domaintypes.InvitationID,
	) (domaintypes.Envelope, error)
}
