package types

import "time"

// Envelope is one sealed (nonce, ciphertext) pair. The ciphertext carries the
// Poly1305 tag as its suffix.
type Envelope struct {
	Nonce      Nonce
	Ciphertext []byte
}

// Record is the plaintext of the inviter→relay envelope.
type Record struct {
	ID              InvitationID
	InnerNonce      Nonce
	InnerCiphertext []byte
}

// ReturnRecord is the plaintext of the relay→invitee envelope.
type ReturnRecord struct {
	InnerNonce      Nonce
	InnerCiphertext []byte
}

// StoredRecord is what the relay holds for one invitation id. Once fetched it
// is kept as a tombstone (Fetched set, envelope fields cleared) until
// ExpiresAt, so a replayed submission for the id is still refused.
type StoredRecord struct {
	InnerNonce      Nonce     `cbor:"1,keyasint"`
	InnerCiphertext []byte    `cbor:"2,keyasint"`
	CreatedAt       time.Time `cbor:"3,keyasint"`
	ExpiresAt       time.Time `cbor:"4,keyasint"`
	Fetched         bool      `cbor:"5,keyasint,omitempty"`
}

// Tombstone returns the marker left behind when r is fetched.
func (r StoredRecord) Tombstone() StoredRecord {
	return StoredRecord{CreatedAt: r.CreatedAt, ExpiresAt: r.ExpiresAt, Fetched: true}
}

// Expired reports whether the record is past its expiry at now. A zero
// ExpiresAt never expires.
func (r StoredRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}
