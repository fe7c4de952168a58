package crypto

import (
	"crypto/hmac"
	"crypto/sha256"

	"blindrelay/internal/domain"
)

// InvitationIDLabel separates invitation id derivation from any other keyed
// hash over an unlock key.
const InvitationIDLabel = "invitationId"

// DeriveInvitationID returns HMAC-SHA256(unlockKey, InvitationIDLabel).
func DeriveInvitationID(unlockKey domain.UnlockKey) domain.InvitationID {
	mac := hmac.New(sha256.New, unlockKey[:])
	mac.Write([]byte(InvitationIDLabel))

	var id domain.InvitationID
	copy(id[:], mac.Sum(nil))
	return id
}
