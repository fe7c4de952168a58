package types

import (
	"encoding/hex"
	"fmt"
)

const (
	// KeySize is the size of every symmetric key in the protocol.
	KeySize = 32
	// NonceSize is the XChaCha20-Poly1305 nonce size.
	NonceSize = 24
	// TagSize is the Poly1305 authentication tag appended to every ciphertext.
	TagSize = 16
	// InvitationIDSize is the size of a derived invitation id.
	InvitationIDSize = 32
)

// UnlockKey protects the inner envelope. It is shared with the invitee out of band.
type UnlockKey [KeySize]byte

// Slice returns the key as a []byte.
func (k UnlockKey) Slice() []byte { return k[:] }

// Hex returns the lowercase hex form used for out-of-band sharing.
func (k UnlockKey) Hex() string { return hex.EncodeToString(k[:]) }

// SessionKey is the pre-established key between one client and the relay.
type SessionKey [KeySize]byte

// Slice returns the key as a []byte.
func (k SessionKey) Slice() []byte { return k[:] }

// Hex returns the hex form of the key.
func (k SessionKey) Hex() string { return hex.EncodeToString(k[:]) }

// InvitationID is the public lookup tag derived from an UnlockKey.
type InvitationID [InvitationIDSize]byte

// Slice returns the id as a []byte.
func (id InvitationID) Slice() []byte { return id[:] }

// String returns the hex form of the id.
func (id InvitationID) String() string { return hex.EncodeToString(id[:]) }

// Short returns a truncated hex form suitable for logs.
func (id InvitationID) Short() string { return hex.EncodeToString(id[:8]) }

// Nonce is a 24-byte XChaCha20-Poly1305 nonce.
type Nonce [NonceSize]byte

// Slice returns the nonce as a []byte.
func (n Nonce) Slice() []byte { return n[:] }

// ParseUnlockKey decodes a 64 character hex string.
func ParseUnlockKey(s string) (UnlockKey, error) {
	var k UnlockKey
	if err := decodeHex32(s, k[:]); err != nil {
		return UnlockKey{}, fmt.Errorf("unlock key: %w", err)
	}
	return k, nil
}

// ParseSessionKey decodes a 64 character hex string.
func ParseSessionKey(s string) (SessionKey, error) {
	var k SessionKey
	if err := decodeHex32(s, k[:]); err != nil {
		return SessionKey{}, fmt.Errorf("session key: %w", err)
	}
	return k, nil
}

// ParseInvitationID decodes a 64 character hex string.
func ParseInvitationID(s string) (InvitationID, error) {
	var id InvitationID
	if err := decodeHex32(s, id[:]); err != nil {
		return InvitationID{}, fmt.Errorf("invitation id: %w", err)
	}
	return id, nil
}

func decodeHex32(s string, out []byte) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != len(out) {
		return fmt.Errorf("want %d bytes, got %d", len(out), len(b))
	}
	copy(out, b)
	return nil
}
